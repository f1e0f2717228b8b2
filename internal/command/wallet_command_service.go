package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eaglebank/wallet-service/internal/apperrors"
	"github.com/eaglebank/wallet-service/internal/cqrs"
	"github.com/eaglebank/wallet-service/internal/events"
	"github.com/eaglebank/wallet-service/internal/models"
	"github.com/eaglebank/wallet-service/internal/utils"
	"go.uber.org/zap"
)

type IdentityStore interface {
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	Save(ctx context.Context, identity *models.Identity) error
}

type AccountStore interface {
	GetByOwner(ctx context.Context, ownerID string) (*models.Account, error)
	UpdateBalance(ctx context.Context, accountID string, balance float64) error
}

type TransactionStore interface {
	GetByOwnerAndTransactionID(ctx context.Context, ownerID, transactionID string) (*models.Transaction, error)
	UpdateStatus(ctx context.Context, id, status, deliveredOn string) error
}

// ProfileInvalidator drops cached profile views after a write.
type ProfileInvalidator interface {
	InvalidateProfile(ctx context.Context, ownerID string)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

type VerificationMailer interface {
	SendEmailVerification(ctx context.Context, ownerID, emailAddress string) error
}

// WalletCommandService performs the state-changing wallet operations against
// PostgreSQL, then invalidates the affected profile view and publishes an
// event. Read-then-write sequences are not wrapped in a database transaction.
type WalletCommandService struct {
	identities   IdentityStore
	accounts     AccountStore
	transactions TransactionStore
	profiles     ProfileInvalidator
	publisher    EventPublisher
	mailer       VerificationMailer
	ownerEmail   string
	now          func() time.Time
	logger       *zap.Logger
}

func NewWalletCommandService(
	identities IdentityStore,
	accounts AccountStore,
	transactions TransactionStore,
	profiles ProfileInvalidator,
	publisher EventPublisher,
	mailer VerificationMailer,
	ownerEmail string,
	logger *zap.Logger,
) *WalletCommandService {
	return &WalletCommandService{
		identities:   identities,
		accounts:     accounts,
		transactions: transactions,
		profiles:     profiles,
		publisher:    publisher,
		mailer:       mailer,
		ownerEmail:   ownerEmail,
		now:          time.Now,
		logger:       logger,
	}
}

func (s *WalletCommandService) ChangePassword(ctx context.Context, cmd cqrs.ChangePasswordCommand) error {
	if utils.PasswordLength(cmd.NewPassword) < utils.MinPasswordLength {
		return fmt.Errorf("password shorter than %d characters: %w", utils.MinPasswordLength, apperrors.ErrValidation)
	}
	identity, err := s.identities.GetByID(ctx, cmd.OwnerID)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(cmd.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	identity.PasswordHash = hash
	identity.UpdatedAt = s.now().UTC()
	if err := s.identities.Save(ctx, identity); err != nil {
		return err
	}
	s.publish(ctx, events.PasswordChanged, events.PasswordChangedEvent{OwnerID: identity.ID})
	return nil
}

// ChangeEmail replaces the caller's address. Submitting the current address
// (exact match) is reported as unchanged and writes nothing.
func (s *WalletCommandService) ChangeEmail(ctx context.Context, cmd cqrs.ChangeEmailCommand) (*cqrs.ChangeEmailResult, error) {
	if cmd.NewEmailAddress == "" {
		return nil, fmt.Errorf("empty email address: %w", apperrors.ErrValidation)
	}
	identity, err := s.identities.GetByID(ctx, cmd.OwnerID)
	if err != nil {
		return nil, err
	}
	if identity.Email == cmd.NewEmailAddress {
		return &cqrs.ChangeEmailResult{EmailAddress: identity.Email, Changed: false}, nil
	}

	previous := identity.Email
	identity.Email = cmd.NewEmailAddress
	identity.UpdatedAt = s.now().UTC()
	if err := s.identities.Save(ctx, identity); err != nil {
		return nil, err
	}
	s.profiles.InvalidateProfile(ctx, identity.ID)
	s.publish(ctx, events.EmailChanged, events.EmailChangedEvent{
		OwnerID:       identity.ID,
		PreviousEmail: previous,
		NewEmail:      identity.Email,
	})
	if err := s.mailer.SendEmailVerification(ctx, identity.ID, identity.Email); err != nil {
		s.logger.Warn("failed to send email verification", zap.String("ownerId", identity.ID), zap.Error(err))
	}
	return &cqrs.ChangeEmailResult{EmailAddress: identity.Email, Changed: true}, nil
}

// UpdateBalance sets the target account's balance to the requested amount,
// discarding the previous value. Only the owner identity may call it; the
// owner check ignores case.
func (s *WalletCommandService) UpdateBalance(ctx context.Context, cmd cqrs.UpdateBalanceCommand) error {
	caller, err := s.identities.GetByID(ctx, cmd.RequestingOwnerID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(caller.Email, s.ownerEmail) {
		return apperrors.ErrUnauthorized
	}

	target, err := s.lookupTarget(ctx, cmd.EmailAddress)
	if err != nil {
		return err
	}
	account, err := s.accounts.GetByOwner(ctx, target.ID)
	if err != nil {
		return err
	}
	amount, err := utils.ParseAmount(cmd.Amount)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdateBalance(ctx, account.ID, amount); err != nil {
		return err
	}

	s.profiles.InvalidateProfile(ctx, target.ID)
	s.publish(ctx, events.BalanceUpdated, events.BalanceUpdatedEvent{
		AccountID:       account.ID,
		OwnerID:         target.ID,
		UpdatedBy:       caller.ID,
		PreviousBalance: account.Balance,
		NewBalance:      amount,
	})
	return nil
}

// UpdateTransactionStatus overwrites the status of one of the target's
// transactions and stamps its delivery date. Any status string is accepted.
// The owner check here is case-sensitive.
func (s *WalletCommandService) UpdateTransactionStatus(ctx context.Context, cmd cqrs.UpdateTransactionStatusCommand) error {
	caller, err := s.identities.GetByID(ctx, cmd.RequestingOwnerID)
	if err != nil {
		return err
	}
	if caller.Email != s.ownerEmail {
		return apperrors.ErrUnauthorized
	}

	target, err := s.lookupTarget(ctx, cmd.EmailAddress)
	if err != nil {
		return err
	}
	tx, err := s.transactions.GetByOwnerAndTransactionID(ctx, target.ID, cmd.TransactionID)
	if err != nil {
		return err
	}

	previous := tx.Status
	tx.Status = cmd.Status
	tx.DeliveredOn = utils.FormatDeliveredOn(s.now())
	if err := s.transactions.UpdateStatus(ctx, tx.ID, tx.Status, tx.DeliveredOn); err != nil {
		return err
	}

	s.profiles.InvalidateProfile(ctx, target.ID)
	s.publish(ctx, events.TransactionStatusUpdate, events.TransactionStatusUpdatedEvent{
		TransactionID:  tx.TransactionID,
		OwnerID:        target.ID,
		UpdatedBy:      caller.ID,
		PreviousStatus: previous,
		Status:         tx.Status,
		DeliveredOn:    tx.DeliveredOn,
	})
	return nil
}

func (s *WalletCommandService) lookupTarget(ctx context.Context, email string) (*models.Identity, error) {
	target, err := s.identities.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrTargetNotFound
	}
	return target, err
}

// publish never fails the request; the write has already been committed.
func (s *WalletCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.WalletEventsStream, eventType, data); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
