package repository

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshTokenRepository is the durable ledger of issued refresh tokens.
// Validity is a single rule: found, not revoked, not expired.
type RefreshTokenRepository interface {
	Store(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	IsValid(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type refreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Store(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	record := model.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	return GetDB(ctx, r.db).Create(&record).Error
}

func (r *refreshTokenRepository) GetByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var record model.RefreshToken
	if err := GetDB(ctx, r.db).First(&record, "token = ?", token).Error; err != nil {
		return nil, notFoundOr(err, "refresh token not found")
	}
	return &record, nil
}

func (r *refreshTokenRepository) IsValid(ctx context.Context, token string) (bool, error) {
	record, err := r.GetByToken(ctx, token)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	if record.Revoked || record.ExpiresAt.Before(time.Now()) {
		return false, nil
	}
	return true, nil
}

// Revoke marks the token unusable. Revocation is terminal: nothing ever sets
// the flag back. An unknown token is a NotFound, surfaced to the caller.
func (r *refreshTokenRepository) Revoke(ctx context.Context, token string) error {
	res := GetDB(ctx, r.db).Model(&model.RefreshToken{}).Where("token = ?", token).Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.New(apperror.KindNotFound, "refresh token not found")
	}
	return nil
}

// RevokeAllForUser revokes every token the user holds. Idempotent: a second
// call affects zero rows and still succeeds.
func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.RefreshToken{}).Where("user_id = ?", userID).Update("revoked", true).Error
}

// PurgeExpired deletes rows past their expiry. Expired tokens are already
// invalid, so this is garbage collection and never runs on the request path.
func (r *refreshTokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res := GetDB(ctx, r.db).Where("expires_at < ?", time.Now()).Delete(&model.RefreshToken{})
	return res.RowsAffected, res.Error
}
