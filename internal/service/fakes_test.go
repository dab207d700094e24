package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// In-memory stands-ins for the repositories, faithful to the real contracts:
// same error kinds, same idempotency, same filter semantics. The fake
// transaction manager snapshots every participating store and restores it
// when the wrapped function fails, mirroring a database rollback.

type snapshotter interface {
	snapshot() (restore func())
}

type fakeTxManager struct {
	stores []snapshotter
}

func (t *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	restores := make([]func(), 0, len(t.stores))
	for _, s := range t.stores {
		restores = append(restores, s.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type fakeUserRepo struct {
	users []model.User
}

func (r *fakeUserRepo) snapshot() func() {
	saved := append([]model.User(nil), r.users...)
	return func() { r.users = saved }
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.New(apperror.KindConflict, "username or email already registered")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "user not found")
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for i := range r.users {
		if r.users[i].Username == username {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "user not found")
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for i := range r.users {
		if r.users[i].Email == email {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "user not found")
}

func (r *fakeUserRepo) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	return pageOf(r.users, page, limit), int64(len(r.users)), nil
}

func (r *fakeUserRepo) UpdateOrganization(_ context.Context, id uuid.UUID, organizationID *uuid.UUID) error {
	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i].OrganizationID = organizationID
			return nil
		}
	}
	return apperror.New(apperror.KindNotFound, "user not found")
}

func (r *fakeUserRepo) SetAdmin(_ context.Context, id uuid.UUID, isAdmin bool) error {
	for i := range r.users {
		if r.users[i].ID == id {
			r.users[i].IsAdmin = isAdmin
			return nil
		}
	}
	return apperror.New(apperror.KindNotFound, "user not found")
}

func (r *fakeUserRepo) Count(context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

type fakeTokenRepo struct {
	tokens map[string]*model.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*model.RefreshToken)}
}

func (r *fakeTokenRepo) Store(_ context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	r.tokens[token] = &model.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (r *fakeTokenRepo) GetByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	record, ok := r.tokens[token]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "refresh token not found")
	}
	copied := *record
	return &copied, nil
}

func (r *fakeTokenRepo) IsValid(_ context.Context, token string) (bool, error) {
	record, ok := r.tokens[token]
	if !ok {
		return false, nil
	}
	return !record.Revoked && record.ExpiresAt.After(time.Now()), nil
}

func (r *fakeTokenRepo) Revoke(_ context.Context, token string) error {
	record, ok := r.tokens[token]
	if !ok {
		return apperror.New(apperror.KindNotFound, "refresh token not found")
	}
	record.Revoked = true
	return nil
}

func (r *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	for _, record := range r.tokens {
		if record.UserID == userID {
			record.Revoked = true
		}
	}
	return nil
}

func (r *fakeTokenRepo) PurgeExpired(context.Context) (int64, error) {
	var purged int64
	for token, record := range r.tokens {
		if record.ExpiresAt.Before(time.Now()) {
			delete(r.tokens, token)
			purged++
		}
	}
	return purged, nil
}

type fakeOrgRepo struct {
	orgs []model.Organization
}

func (r *fakeOrgRepo) add(name string) uuid.UUID {
	org := model.Organization{ID: uuid.New(), Name: name}
	r.orgs = append(r.orgs, org)
	return org.ID
}

func (r *fakeOrgRepo) Create(_ context.Context, org *model.Organization) error {
	for _, o := range r.orgs {
		if o.Name == org.Name {
			return apperror.New(apperror.KindConflict, "organization name already exists")
		}
	}
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	r.orgs = append(r.orgs, *org)
	return nil
}

func (r *fakeOrgRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Organization, error) {
	for i := range r.orgs {
		if r.orgs[i].ID == id {
			o := r.orgs[i]
			return &o, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "organization not found")
}

func (r *fakeOrgRepo) List(_ context.Context, page, limit int) ([]model.Organization, int64, error) {
	return pageOf(r.orgs, page, limit), int64(len(r.orgs)), nil
}

func (r *fakeOrgRepo) Update(_ context.Context, org *model.Organization) error {
	for i := range r.orgs {
		if r.orgs[i].ID == org.ID {
			r.orgs[i] = *org
			return nil
		}
	}
	return apperror.New(apperror.KindNotFound, "organization not found")
}

func (r *fakeOrgRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.orgs {
		if r.orgs[i].ID == id {
			r.orgs = append(r.orgs[:i], r.orgs[i+1:]...)
			return nil
		}
	}
	return apperror.New(apperror.KindNotFound, "organization not found")
}

type fakeProductRepo struct {
	products []model.Product
}

func (r *fakeProductRepo) Create(_ context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products = append(r.products, *product)
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	for i := range r.products {
		if r.products[i].ID == id {
			p := r.products[i]
			return &p, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "product not found")
}

func (r *fakeProductRepo) List(_ context.Context, organizationID *uuid.UUID, page, limit int) ([]model.Product, int64, error) {
	filtered := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if organizationID == nil || p.OrganizationID == *organizationID {
			filtered = append(filtered, p)
		}
	}
	return pageOf(filtered, page, limit), int64(len(filtered)), nil
}

func (r *fakeProductRepo) ListByOrganization(_ context.Context, organizationID uuid.UUID) ([]model.Product, error) {
	filtered := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.OrganizationID == organizationID {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *model.Product) error {
	for i := range r.products {
		if r.products[i].ID == product.ID {
			r.products[i] = *product
			return nil
		}
	}
	return apperror.New(apperror.KindNotFound, "product not found")
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.products {
		if r.products[i].ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return apperror.New(apperror.KindNotFound, "product not found")
}

type fakeCategoryRepo struct {
	categories []model.Category
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *model.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	r.categories = append(r.categories, *category)
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	for i := range r.categories {
		if r.categories[i].ID == id {
			c := r.categories[i]
			return &c, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "category not found")
}

func (r *fakeCategoryRepo) List(_ context.Context, organizationID *uuid.UUID, page, limit int) ([]model.Category, int64, error) {
	filtered := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		if organizationID == nil || c.OrganizationID == *organizationID {
			filtered = append(filtered, c)
		}
	}
	return pageOf(filtered, page, limit), int64(len(filtered)), nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *model.Category) error {
	for i := range r.categories {
		if r.categories[i].ID == category.ID {
			r.categories[i] = *category
			return nil
		}
	}
	return apperror.New(apperror.KindNotFound, "category not found")
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.categories {
		if r.categories[i].ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return apperror.New(apperror.KindNotFound, "category not found")
}

type fakePromptRepo struct {
	prompts []model.OrganizationPrompt
}

func (r *fakePromptRepo) Create(_ context.Context, prompt *model.OrganizationPrompt) error {
	for _, p := range r.prompts {
		if p.OrganizationID == prompt.OrganizationID {
			return apperror.New(apperror.KindConflict, "a prompt already exists for this organization")
		}
	}
	if prompt.ID == uuid.Nil {
		prompt.ID = uuid.New()
	}
	r.prompts = append(r.prompts, *prompt)
	return nil
}

func (r *fakePromptRepo) GetByOrganization(_ context.Context, organizationID uuid.UUID) (*model.OrganizationPrompt, error) {
	for i := range r.prompts {
		if r.prompts[i].OrganizationID == organizationID {
			p := r.prompts[i]
			return &p, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "prompt not found")
}

func (r *fakePromptRepo) List(_ context.Context, organizationID *uuid.UUID, page, limit int) ([]model.OrganizationPrompt, int64, error) {
	filtered := make([]model.OrganizationPrompt, 0, len(r.prompts))
	for _, p := range r.prompts {
		if organizationID == nil || p.OrganizationID == *organizationID {
			filtered = append(filtered, p)
		}
	}
	return pageOf(filtered, page, limit), int64(len(filtered)), nil
}

func (r *fakePromptRepo) Update(_ context.Context, prompt *model.OrganizationPrompt) error {
	for i := range r.prompts {
		if r.prompts[i].ID == prompt.ID {
			r.prompts[i] = *prompt
			return nil
		}
	}
	return apperror.New(apperror.KindNotFound, "prompt not found")
}

func (r *fakePromptRepo) DeleteByOrganization(_ context.Context, organizationID uuid.UUID) error {
	for i := range r.prompts {
		if r.prompts[i].OrganizationID == organizationID {
			r.prompts = append(r.prompts[:i], r.prompts[i+1:]...)
			return nil
		}
	}
	return apperror.New(apperror.KindNotFound, "prompt not found")
}

type fakeOrderRepo struct {
	orders []model.Order
	items  []model.OrderItem
}

func (r *fakeOrderRepo) snapshot() func() {
	savedOrders := append([]model.Order(nil), r.orders...)
	savedItems := append([]model.OrderItem(nil), r.items...)
	return func() {
		r.orders = savedOrders
		r.items = savedItems
	}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *model.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	r.orders = append(r.orders, *order)
	return nil
}

func (r *fakeOrderRepo) CreateItem(_ context.Context, item *model.OrderItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items = append(r.items, *item)
	return nil
}

func (r *fakeOrderRepo) itemsOf(orderID uuid.UUID) []model.OrderItem {
	items := make([]model.OrderItem, 0)
	for _, item := range r.items {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	return items
}

func (r *fakeOrderRepo) GetByIDWithItems(_ context.Context, id uuid.UUID) (*model.Order, error) {
	for i := range r.orders {
		if r.orders[i].ID == id {
			order := r.orders[i]
			order.Items = r.itemsOf(id)
			return &order, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "order not found")
}

func (r *fakeOrderRepo) List(_ context.Context, organizationID *uuid.UUID, page, limit int) ([]model.Order, int64, error) {
	filtered := make([]model.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if organizationID == nil || o.OrganizationID == *organizationID {
			o.Items = r.itemsOf(o.ID)
			filtered = append(filtered, o)
		}
	}
	return pageOf(filtered, page, limit), int64(len(filtered)), nil
}

func (r *fakeOrderRepo) UpdateTotal(_ context.Context, id uuid.UUID, order *model.Order) error {
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].TotalPrice = order.TotalPrice
			return nil
		}
	}
	return apperror.New(apperror.KindNotFound, "order not found")
}

func (r *fakeOrderRepo) DeleteItems(_ context.Context, orderID uuid.UUID) error {
	kept := r.items[:0]
	for _, item := range r.items {
		if item.OrderID != orderID {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			return nil
		}
	}
	return apperror.New(apperror.KindNotFound, "order not found")
}

func pageOf[T any](all []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(all) {
		return []T{}
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return append([]T(nil), all[start:end]...)
}
