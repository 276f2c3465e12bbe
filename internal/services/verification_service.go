package services

import "context"

// VerificationService records and reads completed verifications.
type VerificationService interface {
	// Commit stores a completed verification: membership and latest token
	// together, never one without the other.
	Commit(ctx context.Context, guildID, userID, accessToken string) error
	// List returns a guild's verified member IDs in verification order.
	List(ctx context.Context, guildID string) ([]string, error)
}
