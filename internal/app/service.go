package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"ucsbexample/api/internal/auth"
	"ucsbexample/api/internal/config"
	"ucsbexample/api/internal/rbac"
	"ucsbexample/api/internal/session"
	"ucsbexample/api/internal/store"
)

// Session is an issued pair of tokens and the identity they carry.
type Session struct {
	Token        string
	RefreshToken string
	Email        string
	Name         string
	Roles        []rbac.Role
	ExpiresAt    time.Time
}

// Principal is the caller established from a verified access token.
type Principal struct {
	Email     string
	Name      string
	Roles     []rbac.Role
	TokenID   string
	ExpiresAt time.Time
}

// SessionStore keeps refresh sessions and revoked access token ids.
type SessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash string, data session.TokenData, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (session.TokenData, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
	RevokeAccessToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type Service struct {
	cfg      config.Config
	sessions SessionStore
	pinger   Pinger
	now      func() time.Time

	Organizations   *EntityService[string, store.UCSBOrganization]
	DiningCommons   *EntityService[string, store.UCSBDiningCommons]
	HelpRequests    *EntityService[int64, store.HelpRequest]
	MenuItemReviews *EntityService[int64, store.MenuItemReview]
	Dates           *EntityService[int64, store.UCSBDate]
}

// New wires one entity service per repository. pinger may be nil when the
// repositories have no external dependency.
func New(cfg config.Config, repos store.Repositories, sessions SessionStore, pinger Pinger) *Service {
	return &Service{
		cfg:      cfg,
		sessions: sessions,
		pinger:   pinger,
		now:      time.Now,

		Organizations:   NewEntityService(store.OrganizationSchema, repos.Organizations),
		DiningCommons:   NewEntityService(store.DiningCommonsSchema, repos.DiningCommons),
		HelpRequests:    NewEntityService(store.HelpRequestSchema, repos.HelpRequests),
		MenuItemReviews: NewEntityService(store.MenuItemReviewSchema, repos.MenuItemReviews),
		Dates:           NewEntityService(store.DateSchema, repos.Dates),
	}
}

func (s *Service) Ping(ctx context.Context) error {
	if s.pinger == nil {
		return nil
	}
	return s.pinger.Ping(ctx)
}

func (s *Service) DevLoginEnabled() bool {
	return s.cfg.DevLoginEnabled
}

// Login grants USER to any email, and ADMIN to configured admin emails.
func (s *Service) Login(ctx context.Context, email, name string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Session{}, validationError("email is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email
	}

	roles := []string{string(rbac.RoleUser)}
	if s.cfg.IsAdminEmail(email) {
		roles = append(roles, string(rbac.RoleAdmin))
	}
	return s.issueSession(ctx, session.TokenData{Email: email, Name: name, Roles: roles})
}

// Refresh exchanges a refresh token for a new session. The old refresh token
// is revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return Session{}, domainError(http.StatusUnauthorized, typeUnauthorized, "Refresh token invalid")
	}
	tokenHash := auth.HashToken(refreshToken)
	data, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Session{}, domainError(http.StatusUnauthorized, typeUnauthorized, "Refresh token invalid")
		}
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, session.TokenData{Email: data.Email, Name: data.Name, Roles: data.Roles})
}

func (s *Service) issueSession(ctx context.Context, data session.TokenData) (Session, error) {
	now := s.now()
	claims := auth.NewClaims(data.Email, data.Name, data.Roles, now, s.cfg.AccessTTL)
	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), claims)
	if err != nil {
		return Session{}, err
	}

	refresh := auth.NewRefreshToken()
	data.CreatedAt = now
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), data, now.Add(s.cfg.RefreshTTL)); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		Email:        data.Email,
		Name:         data.Name,
		Roles:        rbac.NormalizeAll(data.Roles),
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}

// PrincipalFromToken verifies an access token and rejects revoked ones.
func (s *Service) PrincipalFromToken(ctx context.Context, token string) (Principal, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Principal{}, err
	}
	revoked, err := s.sessions.IsAccessTokenRevoked(ctx, claims.ID)
	if err != nil {
		return Principal{}, err
	}
	if revoked {
		return Principal{}, auth.ErrInvalidToken
	}

	principal := Principal{
		Email:   claims.Subject,
		Name:    claims.Name,
		Roles:   rbac.NormalizeAll(claims.Roles),
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}

// Logout revokes whichever of the access token id and refresh token are known.
func (s *Service) Logout(ctx context.Context, principal Principal, refreshToken string) error {
	if principal.TokenID != "" {
		if err := s.sessions.RevokeAccessToken(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		if err := s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Can(principal Principal, action rbac.Action) bool {
	return rbac.Can(principal.Roles, action)
}
