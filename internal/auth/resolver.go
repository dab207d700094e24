package auth

import (
	"context"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
)

// Identity is the resolved caller: who they are, which tenant they act
// within (nil for unassigned users) and whether they bypass tenancy checks.
type Identity struct {
	UserID         uuid.UUID
	Username       string
	OrganizationID *uuid.UUID
	IsAdmin        bool
}

// UserFinder is the slice of the credential store the resolver needs.
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// AccessTokenVerifier validates a presented access token and returns its
// subject.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (string, error)
}

// SessionResolver turns a presented access token into an Identity. It is the
// single gate every protected operation depends on and performs no mutation.
type SessionResolver struct {
	verifier AccessTokenVerifier
	users    UserFinder
}

func NewSessionResolver(verifier AccessTokenVerifier, users UserFinder) *SessionResolver {
	return &SessionResolver{verifier: verifier, users: users}
}

// Resolve verifies the token and loads the user named by its subject. A user
// deleted after token issuance resolves to Unauthenticated, not NotFound.
func (r *SessionResolver) Resolve(ctx context.Context, accessToken string) (Identity, error) {
	username, err := r.verifier.VerifyAccessToken(accessToken)
	if err != nil {
		return Identity{}, err
	}

	user, err := r.users.GetByUsername(ctx, username)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return Identity{}, apperror.New(apperror.KindUnauthenticated, "could not validate credentials")
		}
		return Identity{}, err
	}

	return Identity{
		UserID:         user.ID,
		Username:       user.Username,
		OrganizationID: user.OrganizationID,
		IsAdmin:        user.IsAdmin,
	}, nil
}
