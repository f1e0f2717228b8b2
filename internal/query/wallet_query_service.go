package query

import (
	"context"
	"fmt"

	"github.com/eaglebank/wallet-service/internal/cqrs"
	"github.com/eaglebank/wallet-service/internal/events"
	"github.com/eaglebank/wallet-service/internal/models"
	"go.uber.org/zap"
)

// ProfileReader is the read model behind get-user-info.
type ProfileReader interface {
	GetByOwner(ctx context.Context, ownerID string) (*models.ProfileView, error)
	InvalidateProfile(ctx context.Context, ownerID string)
}

// WalletQueryService reads profile views through the cached read repository.
type WalletQueryService struct {
	profiles ProfileReader
	logger   *zap.Logger
}

func NewWalletQueryService(profiles ProfileReader, logger *zap.Logger) *WalletQueryService {
	return &WalletQueryService{profiles: profiles, logger: logger}
}

func (s *WalletQueryService) GetUserInfo(ctx context.Context, q cqrs.GetUserInfoQuery) (*models.ProfileView, error) {
	if q.OwnerID == "" {
		return nil, fmt.Errorf("missing owner id")
	}
	return s.profiles.GetByOwner(ctx, q.OwnerID)
}

// HandleIdentityEvent is the Redis stream subscriber handler for the auth
// service's identity stream. Profiles embed the owner's email and name, so
// any identity change drops the cached view.
func (s *WalletQueryService) HandleIdentityEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.IdentityUpdated, events.IdentityDeleted:
		data, err := events.DecodeData[events.IdentityChangedEvent](event)
		if err != nil {
			return err
		}
		if data.IdentityID == "" {
			return fmt.Errorf("%s event without identity id", event.Type)
		}
		s.logger.Debug("invalidating profile view", zap.String("event", event.Type), zap.String("ownerId", data.IdentityID))
		s.profiles.InvalidateProfile(ctx, data.IdentityID)
	}
	return nil
}

// HandleAccountEvent drops the cached snapshot of an account changed by
// another service, such as a new transaction reference being appended.
func (s *WalletQueryService) HandleAccountEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.AccountUpdated, events.AccountDeleted:
		data, err := events.DecodeData[events.AccountChangedEvent](event)
		if err != nil {
			return err
		}
		if data.OwnerID == "" {
			return fmt.Errorf("%s event without owner id", event.Type)
		}
		s.logger.Debug("invalidating profile view", zap.String("event", event.Type), zap.String("ownerId", data.OwnerID))
		s.profiles.InvalidateProfile(ctx, data.OwnerID)
	}
	return nil
}
