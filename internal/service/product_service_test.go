package service

import (
	"context"
	"testing"

	"backend/internal/auth"
	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type productFixture struct {
	svc        ProductService
	products   *fakeProductRepo
	categories *fakeCategoryRepo
	orgs       *fakeOrgRepo
	orgA, orgB uuid.UUID
}

func newProductFixture() *productFixture {
	products := &fakeProductRepo{}
	categories := &fakeCategoryRepo{}
	orgs := &fakeOrgRepo{}
	return &productFixture{
		svc:        NewProductService(products, categories, orgs),
		products:   products,
		categories: categories,
		orgs:       orgs,
		orgA:       orgs.add("cafe-a"),
		orgB:       orgs.add("cafe-b"),
	}
}

func TestCreateProductDefaultsLabel(t *testing.T) {
	f := newProductFixture()
	member := auth.Identity{OrganizationID: &f.orgA}

	product, err := f.svc.Create(context.Background(), member, ProductRequest{
		Name:  "Espresso",
		Price: decimal.RequireFromString("2.50"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if product.LabelForAI != "Espresso" {
		t.Errorf("label = %q, want the product name as default", product.LabelForAI)
	}
	if product.OrganizationID != f.orgA {
		t.Errorf("org = %s, want the member's own %s", product.OrganizationID, f.orgA)
	}

	labeled, err := f.svc.Create(context.Background(), member, ProductRequest{
		Name:       "Flat White",
		LabelForAI: "flat white coffee",
		Price:      decimal.RequireFromString("3.00"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if labeled.LabelForAI != "flat white coffee" {
		t.Errorf("label = %q, want the explicit one kept", labeled.LabelForAI)
	}
}

func TestCreateProductValidation(t *testing.T) {
	f := newProductFixture()
	member := auth.Identity{OrganizationID: &f.orgA}

	_, err := f.svc.Create(context.Background(), member, ProductRequest{
		Name:  "broken",
		Price: decimal.RequireFromString("-1"),
	})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Errorf("negative price: err = %v, want Validation", err)
	}

	foreignCat := model.Category{Name: "drinks", OrganizationID: f.orgB}
	if err := f.categories.Create(context.Background(), &foreignCat); err != nil {
		t.Fatalf("seeding category: %v", err)
	}
	_, err = f.svc.Create(context.Background(), member, ProductRequest{
		Name:       "latte",
		Price:      decimal.RequireFromString("3.50"),
		CategoryID: &foreignCat.ID,
	})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Errorf("foreign category: err = %v, want Validation", err)
	}

	unknown := uuid.New()
	_, err = f.svc.Create(context.Background(), member, ProductRequest{
		Name:       "latte",
		Price:      decimal.RequireFromString("3.50"),
		CategoryID: &unknown,
	})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Errorf("unknown category: err = %v, want Validation", err)
	}
}

func TestProductTenancy(t *testing.T) {
	f := newProductFixture()
	memberA := auth.Identity{OrganizationID: &f.orgA}
	memberB := auth.Identity{OrganizationID: &f.orgB}

	product, err := f.svc.Create(context.Background(), memberA, ProductRequest{
		Name:  "Espresso",
		Price: decimal.RequireFromString("2.50"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := f.svc.Get(context.Background(), memberB, product.ID); !apperror.Is(err, apperror.KindForbidden) {
		t.Errorf("cross-org get: err = %v, want Forbidden", err)
	}
	if _, err := f.svc.Update(context.Background(), memberB, product.ID, ProductRequest{
		Name:  "Hijacked",
		Price: decimal.RequireFromString("0.01"),
	}); !apperror.Is(err, apperror.KindForbidden) {
		t.Errorf("cross-org update: err = %v, want Forbidden", err)
	}
	if err := f.svc.Delete(context.Background(), memberB, product.ID); !apperror.Is(err, apperror.KindForbidden) {
		t.Errorf("cross-org delete: err = %v, want Forbidden", err)
	}

	listA, total, err := f.svc.List(context.Background(), memberA, 1, 20)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 1 || len(listA) != 1 {
		t.Errorf("member list = %d products (total %d), want 1", len(listA), total)
	}

	listB, total, err := f.svc.List(context.Background(), memberB, 1, 20)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 0 || len(listB) != 0 {
		t.Errorf("other-org list = %d products (total %d), want none", len(listB), total)
	}

	none, total, err := f.svc.List(context.Background(), auth.Identity{}, 1, 20)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 0 || len(none) != 0 {
		t.Errorf("orgless list = %d products (total %d), want none", len(none), total)
	}
}

func TestAdminCreatesProductInNamedOrg(t *testing.T) {
	f := newProductFixture()
	admin := auth.Identity{IsAdmin: true}

	if _, err := f.svc.Create(context.Background(), admin, ProductRequest{
		Name:  "Espresso",
		Price: decimal.RequireFromString("2.50"),
	}); !apperror.Is(err, apperror.KindValidation) {
		t.Errorf("nil org: err = %v, want Validation", err)
	}

	product, err := f.svc.Create(context.Background(), admin, ProductRequest{
		Name:           "Espresso",
		Price:          decimal.RequireFromString("2.50"),
		OrganizationID: &f.orgB,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if product.OrganizationID != f.orgB {
		t.Errorf("org = %s, want %s", product.OrganizationID, f.orgB)
	}
}
