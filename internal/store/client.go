package store

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Backend is the durable medium behind the store: a whole-document fetch
// and a whole-document overwrite, nothing finer grained.
type Backend interface {
	Fetch(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, raw []byte) error
}

// Client reads and writes the verified-member document through a Backend.
// In-process writers are serialized by a single lock; concurrent processes
// still race with last-writer-wins, which is accepted at this scale.
type Client struct {
	mutex   sync.Mutex
	log     *zap.Logger
	backend Backend
}

func NewClient(log *zap.Logger, backend Backend) *Client {
	return &Client{
		log:     log,
		backend: backend,
	}
}

// Load fetches the whole document. Any fetch error or malformed content
// degrades to an empty store: availability over consistency, the risk
// being that verifications recorded earlier are invisible until the
// backend recovers.
func (c *Client) Load(ctx context.Context) *Store {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.load(ctx)
}

// Save overwrites the whole document. Failures are reported, not retried.
func (c *Client) Save(ctx context.Context, store *Store) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.save(ctx, store)
}

// Update runs one load-modify-save window under the client lock. Returning
// an error from modify abandons the save.
func (c *Client) Update(ctx context.Context, modify func(*Store) error) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	store := c.load(ctx)
	if err := modify(store); err != nil {
		return err
	}
	return c.save(ctx, store)
}

func (c *Client) load(ctx context.Context) *Store {
	raw, err := c.backend.Fetch(ctx)
	if err != nil {
		c.log.Warn("store fetch failed, starting from empty document", zap.Error(err))
		return NewStore()
	}

	store, err := decode(raw)
	if err != nil {
		c.log.Warn("store document malformed, starting from empty document", zap.Error(err))
		return NewStore()
	}
	return store
}

func (c *Client) save(ctx context.Context, store *Store) error {
	store.Normalize()
	raw, err := json.Marshal(store)
	if err != nil {
		return err
	}
	if err := c.backend.Put(ctx, raw); err != nil {
		c.log.Error("store save failed", zap.Error(err))
		return err
	}
	return nil
}
