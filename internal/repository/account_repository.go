package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eaglebank/wallet-service/internal/apperrors"
	"github.com/eaglebank/wallet-service/internal/models"
	"github.com/lib/pq"
)

// AccountRepository handles the wallet records. owner_id carries a unique
// constraint, so there is at most one account per identity.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Account, error) {
	query := `
		SELECT id, owner_id, balance, pending, transaction_num, earnings, transactions
		FROM accounts
		WHERE owner_id = $1
	`
	var account models.Account
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&account.ID, &account.OwnerID, &account.Balance, &account.Pending,
		&account.TransactionNum, &account.Earnings, pq.Array(&account.TransactionIDs),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account.TransactionIDs == nil {
		account.TransactionIDs = []string{}
	}
	return &account, nil
}

// UpdateBalance overwrites the stored balance; it does not add to it.
func (r *AccountRepository) UpdateBalance(ctx context.Context, accountID string, balance float64) error {
	query := `UPDATE accounts SET balance = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, accountID, balance)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
