package events

import "time"

// Event types published by the wallet service.
const (
	PasswordChanged         = "identity.password_changed"
	EmailChanged            = "identity.email_changed"
	BalanceUpdated          = "account.balance_updated"
	TransactionStatusUpdate = "transaction.status_updated"
)

// Event types consumed from the auth service.
const (
	IdentityUpdated = "identity.updated"
	IdentityDeleted = "identity.deleted"
)

// Event types consumed from the account stream. Writers that append
// transaction references or otherwise change an account row emit these.
const (
	AccountUpdated = "account.updated"
	AccountDeleted = "account.deleted"
)

// Stream names
const (
	WalletEventsStream   = "wallet.events"
	IdentityEventsStream = "identity.events"
	AccountEventsStream  = "account.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type PasswordChangedEvent struct {
	OwnerID string `json:"ownerId"`
}

type EmailChangedEvent struct {
	OwnerID       string `json:"ownerId"`
	PreviousEmail string `json:"previousEmail"`
	NewEmail      string `json:"newEmail"`
}

type BalanceUpdatedEvent struct {
	AccountID       string  `json:"accountId"`
	OwnerID         string  `json:"ownerId"`
	UpdatedBy       string  `json:"updatedBy"`
	PreviousBalance float64 `json:"previousBalance"`
	NewBalance      float64 `json:"newBalance"`
}

type TransactionStatusUpdatedEvent struct {
	TransactionID  string `json:"transactionId"`
	OwnerID        string `json:"ownerId"`
	UpdatedBy      string `json:"updatedBy"`
	PreviousStatus string `json:"previousStatus"`
	Status         string `json:"status"`
	DeliveredOn    string `json:"deliveredOn"`
}

// IdentityChangedEvent is the payload of identity.updated and identity.deleted
// as emitted by the auth service.
type IdentityChangedEvent struct {
	IdentityID string `json:"identityId"`
}

type AccountChangedEvent struct {
	AccountID string `json:"accountId"`
	OwnerID   string `json:"ownerId"`
}
