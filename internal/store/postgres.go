package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/guildgate-org/backend/internal/orm"
)

// PostgresBackend projects the document onto verification rows. Fetch
// rebuilds the document from the rows; Put replaces them wholesale, which
// keeps the whole-document overwrite semantics of the other backends.
type PostgresBackend struct {
	db *orm.PostgresClient
}

func NewPostgresBackend(db *orm.PostgresClient) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Fetch(ctx context.Context) ([]byte, error) {
	verifications, err := b.db.SelectVerifications()
	if err != nil {
		return nil, err
	}

	store := NewStore()
	for _, verification := range verifications {
		store.AddVerified(verification.GuildID, verification.UserID, verification.AccessToken)
	}
	return json.Marshal(store)
}

func (b *PostgresBackend) Put(ctx context.Context, raw []byte) error {
	store, err := decode(raw)
	if err != nil {
		return err
	}

	// Deterministic row order across guilds; position keeps the
	// verification order within a guild.
	guildIDs := make([]string, 0, len(store.Servers))
	for guildID := range store.Servers {
		guildIDs = append(guildIDs, guildID)
	}
	sort.Strings(guildIDs)

	var verifications []orm.Verification
	for _, guildID := range guildIDs {
		community := store.Servers[guildID]
		for position, userID := range community.VerifiedUsers {
			verifications = append(verifications, orm.Verification{
				GuildID:     guildID,
				UserID:      userID,
				AccessToken: community.Tokens[userID],
				Position:    position,
			})
		}
	}

	return b.db.ReplaceVerifications(verifications)
}
