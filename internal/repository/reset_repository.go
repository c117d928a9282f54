package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ResetRepo persists password reset codes in the 'password_reset_tokens'
// table and redeems them. Redemption couples "rewrite password hash" and
// "mark code used" in one transaction with a row lock, so two concurrent
// submits of the same code cannot both succeed.
type ResetRepo struct{ DB *sql.DB }

func NewResetRepo(db *sql.DB) *ResetRepo { return &ResetRepo{DB: db} }

// CreateReset inserts a fresh unused code row for the user.
func (r *ResetRepo) CreateReset(ctx context.Context, userID uint64, code string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (user_id, code, expires_at, used) VALUES (?,?,?,0)",
		userID, code, expiresAt)
	return err
}

// Redeem atomically consumes an active code: the matching row is locked
// FOR UPDATE, the owner's password hash is rewritten and the row is marked
// used before the transaction commits. Any rollback leaves the code
// redeemable; a committed redemption makes replays fail the used=0 match.
func (r *ResetRepo) Redeem(ctx context.Context, code, newPasswordHash string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		tokenID uint64
		userID  uint64
	)
	err = tx.QueryRowContext(ctx,
		"SELECT id, user_id FROM password_reset_tokens WHERE code=? AND used=0 AND expires_at > UTC_TIMESTAMP() ORDER BY id DESC LIMIT 1 FOR UPDATE",
		code).Scan(&tokenID, &userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrResetInvalid
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", newPasswordHash, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used=1 WHERE id=?", tokenID); err != nil {
		return err
	}
	return tx.Commit()
}
