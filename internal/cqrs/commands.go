package cqrs

type ChangePasswordCommand struct {
	OwnerID     string
	NewPassword string
}

type ChangeEmailCommand struct {
	OwnerID         string
	NewEmailAddress string
}

// UpdateBalanceCommand replaces the balance of the account owned by the
// identity registered under EmailAddress. Amount is kept in its textual form
// and parsed only after the caller has been authorised.
type UpdateBalanceCommand struct {
	RequestingOwnerID string
	EmailAddress      string
	Amount            string
}

type UpdateTransactionStatusCommand struct {
	RequestingOwnerID string
	EmailAddress      string
	TransactionID     string
	Status            string
}
