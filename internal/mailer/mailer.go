// Package mailer holds the outbound-mail seam used after an email change.
package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer records verification requests without delivering anything.
// TODO: replace with SMTP delivery once the notification service exposes a
// verification template.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendEmailVerification(_ context.Context, ownerID, emailAddress string) error {
	m.logger.Info("email verification requested",
		zap.String("ownerId", ownerID), zap.String("email", emailAddress))
	return nil
}
