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

// TransactionRepository handles transaction documents. Transactions are created
// elsewhere; only their delivery status is mutated here.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) GetByOwnerAndTransactionID(ctx context.Context, ownerID, transactionID string) (*models.Transaction, error) {
	query := `
		SELECT id, owner_id, transaction_id, amount, status, delivered_on, created_at
		FROM transactions
		WHERE owner_id = $1 AND transaction_id = $2
	`
	var (
		tx          models.Transaction
		deliveredOn sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, ownerID, transactionID).Scan(
		&tx.ID, &tx.OwnerID, &tx.TransactionID, &tx.Amount, &tx.Status, &deliveredOn, &tx.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	tx.DeliveredOn = deliveredOn.String
	return &tx, nil
}

// ListByIDs loads the transactions referenced by ids, preserving the order of
// ids. References to missing documents are skipped.
func (r *TransactionRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Transaction, error) {
	if len(ids) == 0 {
		return []models.Transaction{}, nil
	}
	query := `
		SELECT id, owner_id, transaction_id, amount, status, delivered_on, created_at
		FROM transactions
		WHERE id = ANY($1)
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]models.Transaction, len(ids))
	for rows.Next() {
		var (
			tx          models.Transaction
			deliveredOn sql.NullString
		)
		if err := rows.Scan(
			&tx.ID, &tx.OwnerID, &tx.TransactionID, &tx.Amount, &tx.Status, &deliveredOn, &tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.DeliveredOn = deliveredOn.String
		byID[tx.ID] = tx
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	transactions := make([]models.Transaction, 0, len(ids))
	for _, id := range ids {
		if tx, ok := byID[id]; ok {
			transactions = append(transactions, tx)
		}
	}
	return transactions, nil
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, id, status, deliveredOn string) error {
	query := `UPDATE transactions SET status = $2, delivered_on = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, deliveredOn)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}
