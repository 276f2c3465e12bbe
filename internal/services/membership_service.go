package services

import (
	"context"
	"fmt"
)

// SyncResultKind classifies the outcome for one member of a sync.
type SyncResultKind int

const (
	SyncAdded SyncResultKind = iota
	SyncAlreadyMember
	SyncMissingToken
	SyncFailed
)

// SyncResult is the per-member outcome of a membership sync.
type SyncResult struct {
	Kind   SyncResultKind
	UserID string
	Detail string
}

// Summary renders the result as one user-facing report line.
func (r SyncResult) Summary() string {
	switch r.Kind {
	case SyncAdded:
		return fmt.Sprintf("✅ Successfully added <@%s> to the server!", r.UserID)
	case SyncAlreadyMember:
		return fmt.Sprintf("⚠️ <@%s> was already in the server.", r.UserID)
	case SyncMissingToken:
		return fmt.Sprintf("⚠️ No token for <@%s>. They need to verify again.", r.UserID)
	default:
		return fmt.Sprintf("❌ Failed to add <@%s>: %s", r.UserID, r.Detail)
	}
}

// MembershipService replays stored tokens to move verified members between
// guilds.
type MembershipService interface {
	// Sync adds every verified member of sourceGuildID to targetGuildID,
	// one result per member in verification order. Only the source guild's
	// owner may request it.
	Sync(ctx context.Context, sourceGuildID, targetGuildID, requesterID string) ([]SyncResult, error)
}
