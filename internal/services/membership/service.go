package membership

import (
	"context"

	"go.uber.org/zap"

	clientpkg "github.com/guildgate-org/backend/internal/client"
	"github.com/guildgate-org/backend/internal/lib"
	"github.com/guildgate-org/backend/internal/services"
	storepkg "github.com/guildgate-org/backend/internal/store"
)

type MembershipServiceImpl struct {
	store   *storepkg.Client
	discord *clientpkg.DiscordClient
	log     *zap.Logger
}

func NewMembershipService(store *storepkg.Client, discord *clientpkg.DiscordClient, log *zap.Logger) services.MembershipService {
	return &MembershipServiceImpl{
		store:   store,
		discord: discord,
		log:     log,
	}
}

func (s *MembershipServiceImpl) Sync(ctx context.Context, sourceGuildID, targetGuildID, requesterID string) ([]services.SyncResult, error) {
	ownerID, err := s.discord.GuildOwner(ctx, sourceGuildID)
	if err != nil {
		s.log.Error("could not resolve guild owner",
			zap.String("guild_id", sourceGuildID),
			zap.Error(err),
		)
		return nil, err
	}
	if requesterID != ownerID {
		return nil, lib.ErrUnauthorized
	}

	store := s.store.Load(ctx)
	community, ok := store.Servers[sourceGuildID]
	if !ok || len(community.VerifiedUsers) == 0 {
		return nil, lib.ErrNoVerifiedMembers
	}

	// Fully independent best-effort loop: one member's failure never
	// blocks the rest, and the report preserves verification order.
	results := make([]services.SyncResult, 0, len(community.VerifiedUsers))
	for _, userID := range community.VerifiedUsers {
		accessToken, ok := community.Tokens[userID]
		if !ok || accessToken == "" {
			results = append(results, services.SyncResult{
				Kind:   services.SyncMissingToken,
				UserID: userID,
			})
			continue
		}

		result, err := s.discord.AddGuildMember(ctx, targetGuildID, userID, accessToken)
		if err != nil {
			results = append(results, services.SyncResult{
				Kind:   services.SyncFailed,
				UserID: userID,
				Detail: err.Error(),
			})
			continue
		}

		switch result.Status {
		case clientpkg.AddMemberAdded:
			results = append(results, services.SyncResult{
				Kind:   services.SyncAdded,
				UserID: userID,
			})
		case clientpkg.AddMemberAlreadyPresent:
			results = append(results, services.SyncResult{
				Kind:   services.SyncAlreadyMember,
				UserID: userID,
			})
		default:
			results = append(results, services.SyncResult{
				Kind:   services.SyncFailed,
				UserID: userID,
				Detail: result.Detail,
			})
		}
	}

	s.log.Info("membership sync finished",
		zap.String("source_guild_id", sourceGuildID),
		zap.String("target_guild_id", targetGuildID),
		zap.Int("members", len(results)),
	)
	return results, nil
}
