package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for the refresh token registry
	"encoding/hex"  // hex encoding of digests
	"errors"        // sentinel error for verification failures
	"strconv"       // string subject claims hold numeric user ids
	"time"          // expiration arithmetic

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned by VerifyToken for every failure mode: bad
// signature, wrong algorithm, expired token, malformed claims or a missing
// subject. Callers must not learn which check failed.
var ErrInvalidToken = errors.New("invalid token")

// SignedToken is a serialized HS256 JWT together with its expiry. Access
// tokens are short-lived and travel in the Authorization header; refresh
// tokens are long-lived and travel in an httpOnly cookie. The two kinds are
// signed with independent secrets so one can never stand in for the other.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT authorizing API calls for a
// user. The JWT carries standard claims: subject (sub), expiration (exp)
// and issued at (iat).
func NewAccessToken(secret string, userID uint64, ttlMin int) (SignedToken, error) {
	return newSigned(secret, userID, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken builds and signs an HS256 JWT used solely to mint new
// access tokens. It carries the same claim set as an access token but is
// signed with the refresh secret and lives for ttlDays days.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (SignedToken, error) {
	return newSigned(secret, userID, time.Duration(ttlDays)*24*time.Hour)
}

func newSigned(secret string, userID uint64, ttl time.Duration) (SignedToken, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyToken parses raw against secret and returns the subject user id.
// The signing method must be HMAC; exp is enforced by the parser. Numeric
// and string subject claims are both accepted since JSON round-trips the
// numeric id as a float64.
func VerifyToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	switch sub := claims["sub"].(type) {
	case float64:
		if sub <= 0 {
			return 0, ErrInvalidToken
		}
		return uint64(sub), nil
	case string:
		id, err := strconv.ParseUint(sub, 10, 64)
		if err != nil || id == 0 {
			return 0, ErrInvalidToken
		}
		return id, nil
	default:
		return 0, ErrInvalidToken
	}
}

// HashToken returns the SHA-256 hash of a serialized token as a hex string.
// Only the hash is persisted in the refresh token registry, so database
// entries cannot be used to refresh sessions.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
