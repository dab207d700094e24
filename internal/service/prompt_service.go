package service

import (
	"context"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

type PromptRequest struct {
	PromptText     string     `json:"prompt_text" binding:"required"`
	OrganizationID *uuid.UUID `json:"organization_id"`
}

type PromptUpdateRequest struct {
	PromptText string `json:"prompt_text" binding:"required"`
}

// PromptService manages the per-organization extraction prompt. Prompts are
// addressed by organization id since each organization has at most one.
type PromptService interface {
	Create(ctx context.Context, identity auth.Identity, req PromptRequest) (*model.OrganizationPrompt, error)
	GetForOrganization(ctx context.Context, identity auth.Identity, organizationID uuid.UUID) (*model.OrganizationPrompt, error)
	List(ctx context.Context, identity auth.Identity, page, limit int) ([]model.OrganizationPrompt, int64, error)
	Update(ctx context.Context, identity auth.Identity, organizationID uuid.UUID, req PromptUpdateRequest) (*model.OrganizationPrompt, error)
	Delete(ctx context.Context, identity auth.Identity, organizationID uuid.UUID) error
}

type promptService struct {
	prompts repository.PromptRepository
	orgs    repository.OrganizationRepository
}

func NewPromptService(prompts repository.PromptRepository, orgs repository.OrganizationRepository) PromptService {
	return &promptService{prompts: prompts, orgs: orgs}
}

func (s *promptService) Create(ctx context.Context, identity auth.Identity, req PromptRequest) (*model.OrganizationPrompt, error) {
	orgID, err := auth.ResolveCreateOrg(identity, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	if identity.IsAdmin {
		if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return nil, apperror.Newf(apperror.KindValidation, "organization %s does not exist", orgID)
			}
			return nil, err
		}
	}

	prompt := &model.OrganizationPrompt{
		OrganizationID: orgID,
		PromptText:     req.PromptText,
	}
	if err := s.prompts.Create(ctx, prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

func (s *promptService) GetForOrganization(ctx context.Context, identity auth.Identity, organizationID uuid.UUID) (*model.OrganizationPrompt, error) {
	if err := auth.CanAccess(identity, organizationID); err != nil {
		return nil, err
	}
	return s.prompts.GetByOrganization(ctx, organizationID)
}

func (s *promptService) List(ctx context.Context, identity auth.Identity, page, limit int) ([]model.OrganizationPrompt, int64, error) {
	scope := auth.ListScope(identity)
	if scope.Empty() {
		return []model.OrganizationPrompt{}, 0, nil
	}
	return s.prompts.List(ctx, scope.OrganizationID, page, limit)
}

func (s *promptService) Update(ctx context.Context, identity auth.Identity, organizationID uuid.UUID, req PromptUpdateRequest) (*model.OrganizationPrompt, error) {
	if err := auth.CanAccess(identity, organizationID); err != nil {
		return nil, err
	}

	prompt, err := s.prompts.GetByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	prompt.PromptText = req.PromptText
	if err := s.prompts.Update(ctx, prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

func (s *promptService) Delete(ctx context.Context, identity auth.Identity, organizationID uuid.UUID) error {
	if err := auth.CanAccess(identity, organizationID); err != nil {
		return err
	}
	return s.prompts.DeleteByOrganization(ctx, organizationID)
}
