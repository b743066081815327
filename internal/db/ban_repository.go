package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tickrealm/core/internal/model"
)

// BanRepository backs the connection handler's authentication gate.
type BanRepository struct {
	pool *pgxpool.Pool
}

func NewBanRepository(pool *pgxpool.Pool) *BanRepository {
	return &BanRepository{pool: pool}
}

// Active returns the active ban for a user, or nil if unbanned. Expired
// bans (expires_at in the past) are treated as inactive.
func (r *BanRepository) Active(ctx context.Context, userID int64) (*model.Ban, error) {
	var b model.Ban
	err := r.pool.QueryRow(ctx,
		`SELECT id, banned_user_id, banned_by_user_id, reason, expires_at, created_at, active
		 FROM user_bans
		 WHERE banned_user_id = $1 AND active
		   AND (expires_at IS NULL OR expires_at > now())
		 ORDER BY created_at DESC LIMIT 1`, userID,
	).Scan(&b.ID, &b.BannedUserID, &b.BannedByUserID, &b.Reason, &b.ExpiresAt, &b.CreatedAt, &b.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying ban for user %d: %w", userID, err)
	}
	return &b, nil
}
