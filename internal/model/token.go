package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to a user and carries metadata for expiry and revocation.
// The plain token is never stored; only its SHA-256 hash, so a leaked table
// cannot be replayed against the refresh endpoint.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// PasswordResetToken models a row in the `password_reset_tokens` table.
// A row is created when a user requests a password reset and carries the
// six-digit code mailed to them. Redemption marks the row used inside the
// same transaction that rewrites the password hash, so a code can be
// redeemed at most once. Expiry is purely time based; expired rows are
// simply never matched again.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user the code was issued for.
//  Code      – six-digit numeric code, kept as a string to match the column.
//  ExpiresAt – expiration timestamp, fifteen minutes after issuance.
//  Used      – whether the code has been redeemed.
//  CreatedAt – timestamp of creation.
type PasswordResetToken struct {
	ID        uint64    // password_reset_tokens.id
	UserID    uint64    // password_reset_tokens.user_id
	Code      string    // password_reset_tokens.code
	ExpiresAt time.Time // password_reset_tokens.expires_at
	Used      bool      // password_reset_tokens.used
	CreatedAt time.Time // password_reset_tokens.created_at
}
