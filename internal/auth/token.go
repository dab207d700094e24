package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RefreshTokenStore is the slice of the refresh-token ledger the issuer
// needs: durably recording a freshly issued token.
type RefreshTokenStore interface {
	Store(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error
}

// TokenIssuer creates and verifies access tokens and mints refresh tokens.
// The signing secret is fixed for the process lifetime.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	tokens     RefreshTokenStore
}

func NewTokenIssuer(secret []byte, accessTTL, refreshTTL time.Duration, tokens RefreshTokenStore) *TokenIssuer {
	return &TokenIssuer{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		tokens:     tokens,
	}
}

// IssueAccessToken signs a short-lived HS256 token carrying the username as
// subject and an absolute expiry.
func (i *TokenIssuer) IssueAccessToken(username string) (string, time.Time, error) {
	expiresAt := time.Now().Add(i.accessTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"exp": jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, apperror.Wrap(apperror.KindInternal, "failed to sign access token", err)
	}
	return signed, expiresAt, nil
}

// VerifyAccessToken checks signature and expiry and returns the encoded
// subject. Every failure mode is Unauthenticated.
func (i *TokenIssuer) VerifyAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperror.New(apperror.KindUnauthenticated, "invalid or expired access token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperror.New(apperror.KindUnauthenticated, "invalid token claims")
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", apperror.New(apperror.KindUnauthenticated, "token has no subject")
	}
	return subject, nil
}

// IssueRefreshToken mints a 256-bit random opaque token, records it in the
// ledger and returns the plaintext together with its expiry.
func (i *TokenIssuer) IssueRefreshToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", time.Time{}, apperror.Wrap(apperror.KindInternal, "failed to generate refresh token", err)
	}
	token := hex.EncodeToString(raw)
	expiresAt := time.Now().Add(i.refreshTTL)

	if err := i.tokens.Store(ctx, token, userID, expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}
