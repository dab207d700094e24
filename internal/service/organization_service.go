package service

import (
	"context"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

type OrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// OrganizationService manages tenants. Every operation is admin-only;
// ordinary users never see organizations other than through their own
// scoped resources.
type OrganizationService interface {
	Create(ctx context.Context, identity auth.Identity, req OrganizationRequest) (*model.Organization, error)
	Get(ctx context.Context, identity auth.Identity, id uuid.UUID) (*model.Organization, error)
	List(ctx context.Context, identity auth.Identity, page, limit int) ([]model.Organization, int64, error)
	Update(ctx context.Context, identity auth.Identity, id uuid.UUID, req OrganizationRequest) (*model.Organization, error)
	Delete(ctx context.Context, identity auth.Identity, id uuid.UUID) error
}

type organizationService struct {
	orgs repository.OrganizationRepository
}

func NewOrganizationService(orgs repository.OrganizationRepository) OrganizationService {
	return &organizationService{orgs: orgs}
}

func requireAdmin(identity auth.Identity) error {
	if !identity.IsAdmin {
		return apperror.New(apperror.KindForbidden, "only admin users can manage organizations")
	}
	return nil
}

func (s *organizationService) Create(ctx context.Context, identity auth.Identity, req OrganizationRequest) (*model.Organization, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	org := &model.Organization{Name: req.Name, Description: req.Description}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *organizationService) Get(ctx context.Context, identity auth.Identity, id uuid.UUID) (*model.Organization, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	return s.orgs.GetByID(ctx, id)
}

func (s *organizationService) List(ctx context.Context, identity auth.Identity, page, limit int) ([]model.Organization, int64, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, 0, err
	}
	return s.orgs.List(ctx, page, limit)
}

func (s *organizationService) Update(ctx context.Context, identity auth.Identity, id uuid.UUID, req OrganizationRequest) (*model.Organization, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	org.Name = req.Name
	org.Description = req.Description
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *organizationService) Delete(ctx context.Context, identity auth.Identity, id uuid.UUID) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}
	return s.orgs.Delete(ctx, id)
}
