package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBanRepository_Active_NoBan(t *testing.T) {
	pool := setupTestDB(t)
	userRepo := NewUserRepository(pool)
	banRepo := NewBanRepository(pool)
	ctx := context.Background()

	u, err := userRepo.Create(ctx, "clean", "x", "Clean")
	require.NoError(t, err)

	ban, err := banRepo.Active(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, ban)
}

func TestBanRepository_Active_PermanentBan(t *testing.T) {
	pool := setupTestDB(t)
	userRepo := NewUserRepository(pool)
	banRepo := NewBanRepository(pool)
	ctx := context.Background()

	u, err := userRepo.Create(ctx, "banned", "x", "Banned")
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO user_bans (banned_user_id, banned_by_user_id, reason, active) VALUES ($1, $1, 'cheating', true)`,
		u.ID)
	require.NoError(t, err)

	ban, err := banRepo.Active(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, ban)
	require.Equal(t, "cheating", ban.Reason)
}

func TestBanRepository_Active_ExpiredBanIgnored(t *testing.T) {
	pool := setupTestDB(t)
	userRepo := NewUserRepository(pool)
	banRepo := NewBanRepository(pool)
	ctx := context.Background()

	u, err := userRepo.Create(ctx, "expired", "x", "Expired")
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	_, err = pool.Exec(ctx,
		`INSERT INTO user_bans (banned_user_id, banned_by_user_id, reason, expires_at, active) VALUES ($1, $1, 'temp', $2, true)`,
		u.ID, past)
	require.NoError(t, err)

	ban, err := banRepo.Active(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, ban)
}
