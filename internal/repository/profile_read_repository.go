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

const profileViewKeyPrefix = "wallet:profile:"

// ProfileCache is the subset of redis.ViewCache used for profile snapshots.
type ProfileCache interface {
	Get(ctx context.Context, key string) (*models.ProfileSnapshot, bool)
	Set(ctx context.Context, key string, value *models.ProfileSnapshot)
	Generation(ctx context.Context, key string) (int64, error)
	Invalidate(ctx context.Context, key string)
}

// ProfileReadRepository composes profile views. The account and owner part is
// served from Redis when a current snapshot exists; transactions are always
// loaded from PostgreSQL.
type ProfileReadRepository struct {
	db           *sql.DB
	cache        ProfileCache
	transactions *TransactionRepository
}

func NewProfileReadRepository(db *sql.DB, cache ProfileCache) *ProfileReadRepository {
	return &ProfileReadRepository{
		db:           db,
		cache:        cache,
		transactions: NewTransactionRepository(db),
	}
}

// GetByOwner returns the account owned by ownerID with its owner reduced to
// email and full name and every transaction reference expanded.
func (r *ProfileReadRepository) GetByOwner(ctx context.Context, ownerID string) (*models.ProfileView, error) {
	snapshot, err := r.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	transactions, err := r.transactions.ListByIDs(ctx, snapshot.TransactionRefs)
	if err != nil {
		return nil, err
	}
	return &models.ProfileView{
		ID:             snapshot.ID,
		Owner:          snapshot.Owner,
		Balance:        snapshot.Balance,
		Pending:        snapshot.Pending,
		TransactionNum: snapshot.TransactionNum,
		Earnings:       snapshot.Earnings,
		Transactions:   transactions,
	}, nil
}

// snapshot reads the generation before the database so that a fill which
// races an invalidation is stored under the old generation and ignored.
func (r *ProfileReadRepository) snapshot(ctx context.Context, ownerID string) (*models.ProfileSnapshot, error) {
	cacheKey := profileViewKeyPrefix + ownerID

	generation, genErr := r.cache.Generation(ctx, cacheKey)
	if genErr == nil {
		if cached, ok := r.cache.Get(ctx, cacheKey); ok && cached.Generation == generation {
			return cached, nil
		}
	}

	snapshot, err := r.loadSnapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	// Without a known generation the fill could not be checked later.
	if genErr == nil {
		snapshot.Generation = generation
		r.cache.Set(ctx, cacheKey, snapshot)
	}
	return snapshot, nil
}

func (r *ProfileReadRepository) loadSnapshot(ctx context.Context, ownerID string) (*models.ProfileSnapshot, error) {
	query := `
		SELECT a.id, a.balance, a.pending, a.transaction_num, a.earnings, a.transactions,
			   i.id, i.email, i.fullname
		FROM accounts a
		JOIN identities i ON i.id = a.owner_id
		WHERE a.owner_id = $1
	`
	var s models.ProfileSnapshot
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&s.ID, &s.Balance, &s.Pending, &s.TransactionNum, &s.Earnings, pq.Array(&s.TransactionRefs),
		&s.Owner.ID, &s.Owner.Email, &s.Owner.Fullname,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &s, nil
}

// InvalidateProfile drops the cached snapshot of ownerID's account and
// advances its generation. Called after every mutation of the account row
// or its owner.
func (r *ProfileReadRepository) InvalidateProfile(ctx context.Context, ownerID string) {
	r.cache.Invalidate(ctx, profileViewKeyPrefix+ownerID)
}
