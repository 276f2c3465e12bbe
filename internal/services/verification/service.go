package verification

import (
	"context"

	"go.uber.org/zap"

	"github.com/guildgate-org/backend/internal/services"
	storepkg "github.com/guildgate-org/backend/internal/store"
)

type VerificationServiceImpl struct {
	store *storepkg.Client
	log   *zap.Logger
}

func NewVerificationService(store *storepkg.Client, log *zap.Logger) services.VerificationService {
	return &VerificationServiceImpl{
		store: store,
		log:   log,
	}
}

func (s *VerificationServiceImpl) Commit(ctx context.Context, guildID, userID, accessToken string) error {
	err := s.store.Update(ctx, func(store *storepkg.Store) error {
		store.AddVerified(guildID, userID, accessToken)
		return nil
	})
	if err != nil {
		s.log.Error("could not persist verification",
			zap.String("guild_id", guildID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	s.log.Info("verified member",
		zap.String("guild_id", guildID),
		zap.String("user_id", userID),
	)
	return nil
}

func (s *VerificationServiceImpl) List(ctx context.Context, guildID string) ([]string, error) {
	store := s.store.Load(ctx)
	community, ok := store.Servers[guildID]
	if !ok {
		return []string{}, nil
	}
	return community.VerifiedUsers, nil
}
