package repository

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromptRepository stores per-organization extraction prompts. The unique
// index on organization_id carries the one-prompt-per-organization rule.
type PromptRepository interface {
	Create(ctx context.Context, prompt *model.OrganizationPrompt) error
	GetByOrganization(ctx context.Context, organizationID uuid.UUID) (*model.OrganizationPrompt, error)
	List(ctx context.Context, organizationID *uuid.UUID, page, limit int) ([]model.OrganizationPrompt, int64, error)
	Update(ctx context.Context, prompt *model.OrganizationPrompt) error
	DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) error
}

type promptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &promptRepository{db: db}
}

func (r *promptRepository) Create(ctx context.Context, prompt *model.OrganizationPrompt) error {
	if err := GetDB(ctx, r.db).Create(prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.New(apperror.KindConflict, "a prompt already exists for this organization")
		}
		return err
	}
	return nil
}

func (r *promptRepository) GetByOrganization(ctx context.Context, organizationID uuid.UUID) (*model.OrganizationPrompt, error) {
	var prompt model.OrganizationPrompt
	if err := GetDB(ctx, r.db).First(&prompt, "organization_id = ?", organizationID).Error; err != nil {
		return nil, notFoundOr(err, "no prompt found for this organization")
	}
	return &prompt, nil
}

func (r *promptRepository) List(ctx context.Context, organizationID *uuid.UUID, page, limit int) ([]model.OrganizationPrompt, int64, error) {
	var prompts []model.OrganizationPrompt
	var total int64

	db := GetDB(ctx, r.db).Model(&model.OrganizationPrompt{})
	if organizationID != nil {
		db = db.Where("organization_id = ?", *organizationID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at").Offset(offset).Limit(limit).Find(&prompts).Error; err != nil {
		return nil, 0, err
	}

	return prompts, total, nil
}

func (r *promptRepository) Update(ctx context.Context, prompt *model.OrganizationPrompt) error {
	return GetDB(ctx, r.db).Save(prompt).Error
}

func (r *promptRepository) DeleteByOrganization(ctx context.Context, organizationID uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("organization_id = ?", organizationID).Delete(&model.OrganizationPrompt{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.New(apperror.KindNotFound, "no prompt found for this organization")
	}
	return nil
}
