package service

import (
	"context"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

type CategoryRequest struct {
	Name           string     `json:"name" binding:"required"`
	Description    string     `json:"description"`
	OrganizationID *uuid.UUID `json:"organization_id"`
}

type CategoryService interface {
	Create(ctx context.Context, identity auth.Identity, req CategoryRequest) (*model.Category, error)
	Get(ctx context.Context, identity auth.Identity, id uuid.UUID) (*model.Category, error)
	List(ctx context.Context, identity auth.Identity, page, limit int) ([]model.Category, int64, error)
	Update(ctx context.Context, identity auth.Identity, id uuid.UUID, req CategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, identity auth.Identity, id uuid.UUID) error
}

type categoryService struct {
	categories repository.CategoryRepository
	orgs       repository.OrganizationRepository
}

func NewCategoryService(categories repository.CategoryRepository, orgs repository.OrganizationRepository) CategoryService {
	return &categoryService{categories: categories, orgs: orgs}
}

func (s *categoryService) resolveTargetOrg(ctx context.Context, identity auth.Identity, requested *uuid.UUID) (uuid.UUID, error) {
	orgID, err := auth.ResolveCreateOrg(identity, requested)
	if err != nil {
		return uuid.Nil, err
	}
	if identity.IsAdmin {
		if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return uuid.Nil, apperror.Newf(apperror.KindValidation, "organization %s does not exist", orgID)
			}
			return uuid.Nil, err
		}
	}
	return orgID, nil
}

func (s *categoryService) Create(ctx context.Context, identity auth.Identity, req CategoryRequest) (*model.Category, error) {
	orgID, err := s.resolveTargetOrg(ctx, identity, req.OrganizationID)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:           req.Name,
		Description:    req.Description,
		OrganizationID: orgID,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Get(ctx context.Context, identity auth.Identity, id uuid.UUID) (*model.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanAccess(identity, category.OrganizationID); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context, identity auth.Identity, page, limit int) ([]model.Category, int64, error) {
	scope := auth.ListScope(identity)
	if scope.Empty() {
		return []model.Category{}, 0, nil
	}
	return s.categories.List(ctx, scope.OrganizationID, page, limit)
}

func (s *categoryService) Update(ctx context.Context, identity auth.Identity, id uuid.UUID, req CategoryRequest) (*model.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanAccess(identity, category.OrganizationID); err != nil {
		return nil, err
	}

	orgID, err := s.resolveTargetOrg(ctx, identity, req.OrganizationID)
	if err != nil {
		return nil, err
	}

	category.Name = req.Name
	category.Description = req.Description
	category.OrganizationID = orgID

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, identity auth.Identity, id uuid.UUID) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.CanAccess(identity, category.OrganizationID); err != nil {
		return err
	}
	return s.categories.Delete(ctx, id)
}
