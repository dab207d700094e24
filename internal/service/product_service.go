package service

import (
	"context"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Name       string          `json:"name" binding:"required"`
	LabelForAI string          `json:"label_for_ai"`
	Price      decimal.Decimal `json:"price"`
	CategoryID *uuid.UUID      `json:"category_id"`
	// OrganizationID is only honored for admins; everyone else is pinned to
	// their own organization by the policy.
	OrganizationID *uuid.UUID `json:"organization_id"`
}

type ProductService interface {
	Create(ctx context.Context, identity auth.Identity, req ProductRequest) (*model.Product, error)
	Get(ctx context.Context, identity auth.Identity, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, identity auth.Identity, page, limit int) ([]model.Product, int64, error)
	Update(ctx context.Context, identity auth.Identity, id uuid.UUID, req ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, identity auth.Identity, id uuid.UUID) error
}

type productService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	orgs       repository.OrganizationRepository
}

func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	orgs repository.OrganizationRepository,
) ProductService {
	return &productService{products: products, categories: categories, orgs: orgs}
}

// resolveTargetOrg applies the create policy and, for admins, checks the
// named organization actually exists. A bad org id is a Validation failure,
// not a Forbidden.
func (s *productService) resolveTargetOrg(ctx context.Context, identity auth.Identity, requested *uuid.UUID) (uuid.UUID, error) {
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

func (s *productService) validate(ctx context.Context, req ProductRequest, orgID uuid.UUID) error {
	if req.Price.IsNegative() {
		return apperror.New(apperror.KindValidation, "price must not be negative")
	}
	if req.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *req.CategoryID)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return apperror.Newf(apperror.KindValidation, "category %s does not exist", req.CategoryID)
			}
			return err
		}
		if category.OrganizationID != orgID {
			return apperror.New(apperror.KindValidation, "category belongs to a different organization")
		}
	}
	return nil
}

func (s *productService) Create(ctx context.Context, identity auth.Identity, req ProductRequest) (*model.Product, error) {
	orgID, err := s.resolveTargetOrg(ctx, identity, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, req, orgID); err != nil {
		return nil, err
	}

	label := req.LabelForAI
	if label == "" {
		label = req.Name
	}

	product := &model.Product{
		Name:           req.Name,
		LabelForAI:     label,
		Price:          req.Price,
		CategoryID:     req.CategoryID,
		OrganizationID: orgID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Get(ctx context.Context, identity auth.Identity, id uuid.UUID) (*model.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanAccess(identity, product.OrganizationID); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, identity auth.Identity, page, limit int) ([]model.Product, int64, error) {
	scope := auth.ListScope(identity)
	if scope.Empty() {
		return []model.Product{}, 0, nil
	}
	return s.products.List(ctx, scope.OrganizationID, page, limit)
}

func (s *productService) Update(ctx context.Context, identity auth.Identity, id uuid.UUID, req ProductRequest) (*model.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanAccess(identity, product.OrganizationID); err != nil {
		return nil, err
	}

	orgID, err := s.resolveTargetOrg(ctx, identity, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, req, orgID); err != nil {
		return nil, err
	}

	product.Name = req.Name
	if req.LabelForAI != "" {
		product.LabelForAI = req.LabelForAI
	}
	product.Price = req.Price
	product.CategoryID = req.CategoryID
	product.OrganizationID = orgID

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, identity auth.Identity, id uuid.UUID) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.CanAccess(identity, product.OrganizationID); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}
