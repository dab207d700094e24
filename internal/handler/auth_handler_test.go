package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backend/internal/auth"
	"backend/internal/service"
	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// stubAuthService returns canned results so the tests pin down the HTTP
// layer alone: request binding, status mapping and the response envelope.
type stubAuthService struct {
	registerErr error
	loginErr    error
	refreshErr  error
	logoutErr   error
}

func (s *stubAuthService) Register(_ context.Context, req service.RegisterRequest) (*service.UserResponse, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &service.UserResponse{ID: uuid.New(), Username: req.Username, Email: req.Email, IsAdmin: req.IsAdmin}, nil
}

func (s *stubAuthService) Login(context.Context, service.LoginRequest) (*service.TokenResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &service.TokenResponse{AccessToken: "access", RefreshToken: strings.Repeat("ab", 32), TokenType: "bearer"}, nil
}

func (s *stubAuthService) Refresh(context.Context, service.RefreshRequest) (*service.TokenResponse, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return &service.TokenResponse{AccessToken: "access-2", RefreshToken: strings.Repeat("ab", 32), TokenType: "bearer"}, nil
}

func (s *stubAuthService) Logout(context.Context, service.RefreshRequest) error {
	return s.logoutErr
}

func (s *stubAuthService) LogoutAll(context.Context, uuid.UUID) error { return nil }

func (s *stubAuthService) GetProfile(context.Context, uuid.UUID) (*service.UserResponse, error) {
	return &service.UserResponse{Username: "alice"}, nil
}

func (s *stubAuthService) ListUsers(context.Context, auth.Identity, int, int) ([]service.UserResponse, int64, error) {
	return nil, 0, nil
}

func (s *stubAuthService) AssignOrganization(context.Context, auth.Identity, uuid.UUID, service.AssignOrganizationRequest) (*service.UserResponse, error) {
	return nil, nil
}

func (s *stubAuthService) SetAdmin(context.Context, auth.Identity, uuid.UUID, service.SetAdminRequest) (*service.UserResponse, error) {
	return nil, nil
}

type allowAllResolver struct{}

func (allowAllResolver) Resolve(context.Context, string) (auth.Identity, error) {
	return auth.Identity{UserID: uuid.New(), Username: "alice"}, nil
}

func newAuthRouter(svc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewAuthHandler(svc, allowAllResolver{}).RegisterRoutes(router.Group(""))
	return router
}

func post(t *testing.T, router *gin.Engine, path, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not a valid envelope: %v", err)
	}
	return rec, envelope
}

func TestRegisterEndpoint(t *testing.T) {
	router := newAuthRouter(&stubAuthService{})

	rec, envelope := post(t, router, "/register", `{"username":"alice","email":"alice@example.com","password":"password123"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q", envelope.Status)
	}
}

func TestRegisterIgnoresAdminFlag(t *testing.T) {
	router := newAuthRouter(&stubAuthService{})

	// A caller cannot self-promote: is_admin in the payload is never bound.
	_, envelope := post(t, router, "/register", `{"username":"bob","email":"bob@example.com","password":"password123","is_admin":true}`)
	data, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %T", envelope.Data)
	}
	if isAdmin, _ := data["is_admin"].(bool); isAdmin {
		t.Error("is_admin from the request body must be ignored")
	}
}

func TestRegisterValidation(t *testing.T) {
	router := newAuthRouter(&stubAuthService{})

	cases := []struct {
		name string
		body string
	}{
		{"missing username", `{"email":"a@example.com","password":"password123"}`},
		{"bad email", `{"username":"alice","email":"nope","password":"password123"}`},
		{"short password", `{"username":"alice","email":"a@example.com","password":"123"}`},
		{"not json", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := post(t, router, "/register", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestErrorKindsMapToStatus(t *testing.T) {
	conflict := &stubAuthService{registerErr: apperror.New(apperror.KindConflict, "username already registered")}
	rec, envelope := post(t, newAuthRouter(conflict), "/register", `{"username":"alice","email":"a@example.com","password":"password123"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("conflict status = %d, want 409", rec.Code)
	}
	if envelope.Error != "username already registered" {
		t.Errorf("error = %q", envelope.Error)
	}

	denied := &stubAuthService{loginErr: apperror.New(apperror.KindUnauthenticated, "incorrect username or password")}
	rec, _ = post(t, newAuthRouter(denied), "/login", `{"username":"alice","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login status = %d, want 401", rec.Code)
	}

	stale := &stubAuthService{refreshErr: apperror.New(apperror.KindUnauthenticated, "invalid or expired refresh token")}
	rec, _ = post(t, newAuthRouter(stale), "/refresh", `{"refresh_token":"`+strings.Repeat("ab", 32)+`"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh status = %d, want 401", rec.Code)
	}

	unknown := &stubAuthService{logoutErr: apperror.New(apperror.KindValidation, "invalid refresh token")}
	rec, _ = post(t, newAuthRouter(unknown), "/logout", `{"refresh_token":"deadbeef"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("logout status = %d, want 400", rec.Code)
	}
}

func TestLoginReturnsTokenPair(t *testing.T) {
	rec, envelope := post(t, newAuthRouter(&stubAuthService{}), "/login", `{"username":"alice","password":"password123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %T", envelope.Data)
	}
	if data["token_type"] != "bearer" || data["access_token"] == "" || data["refresh_token"] == "" {
		t.Errorf("token pair = %v", data)
	}
}
