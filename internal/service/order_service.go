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

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
	Size      string    `json:"size"`
}

type OrderRequest struct {
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	OrganizationID *uuid.UUID         `json:"organization_id"`
}

type OrderService interface {
	Create(ctx context.Context, identity auth.Identity, req OrderRequest) (*model.Order, error)
	Get(ctx context.Context, identity auth.Identity, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, identity auth.Identity, page, limit int) ([]model.Order, int64, error)
	Update(ctx context.Context, identity auth.Identity, id uuid.UUID, req OrderRequest) (*model.Order, error)
	Delete(ctx context.Context, identity auth.Identity, id uuid.UUID) error
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	orgs     repository.OrganizationRepository
	tx       repository.TransactionManager
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	orgs repository.OrganizationRepository,
	tx repository.TransactionManager,
) OrderService {
	return &orderService{orders: orders, products: products, orgs: orgs, tx: tx}
}

// writeItems validates every line item against the order's organization,
// persists the item rows with the server-side product price, and returns the
// computed total. It must run inside a transaction: the first bad item
// aborts the whole order.
func (s *orderService) writeItems(ctx context.Context, identity auth.Identity, orderID, orgID uuid.UUID, items []OrderItemRequest) (decimal.Decimal, []model.OrderItem, error) {
	total := decimal.Zero
	written := make([]model.OrderItem, 0, len(items))

	for _, itemReq := range items {
		product, err := s.products.GetByID(ctx, itemReq.ProductID)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return decimal.Zero, nil, apperror.Newf(apperror.KindNotFound, "product with ID %s not found", itemReq.ProductID)
			}
			return decimal.Zero, nil, err
		}

		if !identity.IsAdmin && product.OrganizationID != orgID {
			return decimal.Zero, nil, apperror.Newf(apperror.KindForbidden, "access denied for product with ID %s", itemReq.ProductID)
		}

		item := model.OrderItem{
			OrderID:   orderID,
			ProductID: product.ID,
			Quantity:  itemReq.Quantity,
			Size:      itemReq.Size,
			UnitPrice: product.Price,
		}
		if err := s.orders.CreateItem(ctx, &item); err != nil {
			return decimal.Zero, nil, err
		}

		written = append(written, item)
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(itemReq.Quantity))))
	}

	return total, written, nil
}

func (s *orderService) Create(ctx context.Context, identity auth.Identity, req OrderRequest) (*model.Order, error) {
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

	order := &model.Order{OrganizationID: orgID, TotalPrice: decimal.Zero}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orders.Create(txCtx, order); err != nil {
			return err
		}

		total, items, err := s.writeItems(txCtx, identity, order.ID, orgID, req.Items)
		if err != nil {
			return err
		}

		order.TotalPrice = total
		order.Items = items
		return s.orders.UpdateTotal(txCtx, order.ID, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderService) Get(ctx context.Context, identity auth.Identity, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.GetByIDWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanAccess(identity, order.OrganizationID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, identity auth.Identity, page, limit int) ([]model.Order, int64, error) {
	scope := auth.ListScope(identity)
	if scope.Empty() {
		return []model.Order{}, 0, nil
	}
	return s.orders.List(ctx, scope.OrganizationID, page, limit)
}

// Update replaces the order's line items wholesale and recomputes the total,
// all inside one transaction.
func (s *orderService) Update(ctx context.Context, identity auth.Identity, id uuid.UUID, req OrderRequest) (*model.Order, error) {
	order, err := s.orders.GetByIDWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanAccess(identity, order.OrganizationID); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orders.DeleteItems(txCtx, order.ID); err != nil {
			return err
		}

		total, items, err := s.writeItems(txCtx, identity, order.ID, order.OrganizationID, req.Items)
		if err != nil {
			return err
		}

		order.TotalPrice = total
		order.Items = items
		return s.orders.UpdateTotal(txCtx, order.ID, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderService) Delete(ctx context.Context, identity auth.Identity, id uuid.UUID) error {
	order, err := s.orders.GetByIDWithItems(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.CanAccess(identity, order.OrganizationID); err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orders.DeleteItems(txCtx, order.ID); err != nil {
			return err
		}
		return s.orders.Delete(txCtx, order.ID)
	})
}
