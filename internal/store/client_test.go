package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

type brokenBackend struct {
	fetchErr error
	putErr   error
}

func (b *brokenBackend) Fetch(ctx context.Context) ([]byte, error) {
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return []byte(`{"servers":{}}`), nil
}

func (b *brokenBackend) Put(ctx context.Context, raw []byte) error {
	return b.putErr
}

func TestLoadDegradesToEmptyOnFetchFailure(t *testing.T) {
	client := NewClient(zap.NewNop(), &brokenBackend{fetchErr: errors.New("unreachable")})

	store := client.Load(context.Background())
	if store == nil {
		t.Fatal("expected a store, got nil")
	}
	if len(store.Servers) != 0 {
		t.Errorf("expected empty servers, got %v", store.Servers)
	}
}

func TestLoadDegradesToEmptyOnMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "verified.json")
	backend := NewFileBackend(path)
	if err := backend.Put(context.Background(), []byte("not json at all")); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	client := NewClient(zap.NewNop(), backend)
	store := client.Load(context.Background())
	if len(store.Servers) != 0 {
		t.Errorf("expected empty servers, got %v", store.Servers)
	}
}

func TestSaveReportsBackendFailure(t *testing.T) {
	client := NewClient(zap.NewNop(), &brokenBackend{putErr: errors.New("write refused")})

	if err := client.Save(context.Background(), NewStore()); err == nil {
		t.Fatal("expected save error")
	}
}

func TestUpdateRoundTripsThroughFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "verified.json")
	client := NewClient(zap.NewNop(), NewFileBackend(path))

	err := client.Update(ctx, func(store *Store) error {
		store.AddVerified("999", "42", "xyz")
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	reloaded := client.Load(ctx)
	community := reloaded.Servers["999"]
	if community == nil {
		t.Fatal("community not persisted")
	}
	if community.Tokens["42"] != "xyz" {
		t.Errorf("token not persisted, got %q", community.Tokens["42"])
	}
}

func TestUpdateAbandonsSaveOnModifyError(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "verified.json")
	client := NewClient(zap.NewNop(), NewFileBackend(path))

	sentinel := errors.New("nope")
	err := client.Update(ctx, func(store *Store) error {
		store.AddVerified("999", "42", "xyz")
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	if len(client.Load(ctx).Servers) != 0 {
		t.Error("modify error should not persist changes")
	}
}

func TestFileBackendMissingFileReadsEmpty(t *testing.T) {
	client := NewClient(zap.NewNop(), NewFileBackend(filepath.Join(t.TempDir(), "absent.json")))

	store := client.Load(context.Background())
	if len(store.Servers) != 0 {
		t.Errorf("expected empty servers, got %v", store.Servers)
	}
}
