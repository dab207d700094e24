package service

import (
	"context"
	"testing"

	"backend/internal/auth"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

func newPromptFixture() (PromptService, *fakePromptRepo, *fakeOrgRepo) {
	prompts := &fakePromptRepo{}
	orgs := &fakeOrgRepo{}
	return NewPromptService(prompts, orgs), prompts, orgs
}

func TestPromptOnePerOrganization(t *testing.T) {
	svc, _, orgs := newPromptFixture()
	orgID := orgs.add("cafe-a")
	member := auth.Identity{OrganizationID: &orgID}

	prompt, err := svc.Create(context.Background(), member, PromptRequest{PromptText: "match drinks only"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if prompt.OrganizationID != orgID {
		t.Errorf("prompt org = %s, want %s", prompt.OrganizationID, orgID)
	}

	if _, err := svc.Create(context.Background(), member, PromptRequest{PromptText: "another"}); !apperror.Is(err, apperror.KindConflict) {
		t.Errorf("second prompt: err = %v, want Conflict", err)
	}

	updated, err := svc.Update(context.Background(), member, orgID, PromptUpdateRequest{PromptText: "revised"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.PromptText != "revised" {
		t.Errorf("prompt text = %q, want revised", updated.PromptText)
	}

	if err := svc.Delete(context.Background(), member, orgID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Create(context.Background(), member, PromptRequest{PromptText: "fresh"}); err != nil {
		t.Errorf("create after delete returned error: %v", err)
	}
}

func TestPromptTenancy(t *testing.T) {
	svc, _, orgs := newPromptFixture()
	orgA := orgs.add("cafe-a")
	orgB := orgs.add("cafe-b")
	memberA := auth.Identity{OrganizationID: &orgA}
	memberB := auth.Identity{OrganizationID: &orgB}

	if _, err := svc.Create(context.Background(), memberA, PromptRequest{PromptText: "a's prompt"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.GetForOrganization(context.Background(), memberB, orgA); !apperror.Is(err, apperror.KindForbidden) {
		t.Errorf("cross-org get: err = %v, want Forbidden", err)
	}
	if _, err := svc.Update(context.Background(), memberB, orgA, PromptUpdateRequest{PromptText: "x"}); !apperror.Is(err, apperror.KindForbidden) {
		t.Errorf("cross-org update: err = %v, want Forbidden", err)
	}

	got, err := svc.GetForOrganization(context.Background(), auth.Identity{IsAdmin: true}, orgA)
	if err != nil {
		t.Fatalf("admin get returned error: %v", err)
	}
	if got.PromptText != "a's prompt" {
		t.Errorf("prompt text = %q", got.PromptText)
	}

	// A member-supplied organization id on create is ignored.
	hijack, err := svc.Create(context.Background(), memberB, PromptRequest{PromptText: "b's prompt", OrganizationID: &orgA})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if hijack.OrganizationID != orgB {
		t.Errorf("prompt org = %s, want the member's own %s", hijack.OrganizationID, orgB)
	}
}

func TestPromptAdminCreateValidatesOrg(t *testing.T) {
	svc, _, orgs := newPromptFixture()
	orgID := orgs.add("cafe-a")
	admin := auth.Identity{IsAdmin: true}

	unknown := uuid.New()
	if _, err := svc.Create(context.Background(), admin, PromptRequest{PromptText: "p", OrganizationID: &unknown}); !apperror.Is(err, apperror.KindValidation) {
		t.Errorf("unknown org: err = %v, want Validation", err)
	}

	prompt, err := svc.Create(context.Background(), admin, PromptRequest{PromptText: "p", OrganizationID: &orgID})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if prompt.OrganizationID != orgID {
		t.Errorf("prompt org = %s, want %s", prompt.OrganizationID, orgID)
	}
}
