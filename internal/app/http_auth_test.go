package app

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"ucsbexample/api/internal/logging"
	"ucsbexample/api/internal/session"
	"ucsbexample/api/internal/store"
)

func decodeJSON(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("parse response: %v body=%s", err, body)
	}
	return payload
}

func rolesOf(payload map[string]any) []string {
	raw, _ := payload["roles"].([]any)
	roles := make([]string, 0, len(raw))
	for _, role := range raw {
		if s, ok := role.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

func TestSessionLoginReturnsContract(t *testing.T) {
	server, _ := newTestServer(t, store.NewMemoryRepositories())

	rr := serve(server, http.MethodPost, "/api/session/login", "", `{"email":"  CGaucho@ucsb.edu ","name":"Chris Gaucho"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	payload := decodeJSON(t, rr.Body.Bytes())
	if token, _ := payload["token"].(string); token == "" {
		t.Fatalf("expected token")
	}
	if refresh, _ := payload["refreshToken"].(string); refresh == "" {
		t.Fatalf("expected refreshToken")
	}
	if payload["email"] != "cgaucho@ucsb.edu" {
		t.Fatalf("expected normalized email, got %v", payload["email"])
	}
	if roles := rolesOf(payload); len(roles) != 1 || roles[0] != "USER" {
		t.Fatalf("expected USER only, got %v", roles)
	}
}

func TestSessionLoginGrantsAdminToConfiguredEmail(t *testing.T) {
	server, _ := newTestServer(t, store.NewMemoryRepositories())

	rr := serve(server, http.MethodPost, "/api/session/login", "", `{"email":"admin@ucsb.edu"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := decodeJSON(t, rr.Body.Bytes())
	roles := rolesOf(payload)
	if len(roles) != 2 || roles[0] != "USER" || roles[1] != "ADMIN" {
		t.Fatalf("expected USER and ADMIN, got %v", roles)
	}
	if payload["name"] != "admin@ucsb.edu" {
		t.Fatalf("expected name to default to email, got %v", payload["name"])
	}

	token := payload["token"].(string)
	rr = serve(server, http.MethodPost,
		"/api/UCSBOrganization/post?orgCode=KCSB&orgTranslationShort=KCSB&orgTranslation=KCSB+Radio&inactive=false", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected admin token to write, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSessionLoginRejectsInvalidBody(t *testing.T) {
	server, _ := newTestServer(t, store.NewMemoryRepositories())

	rr := serve(server, http.MethodPost, "/api/session/login", "", `{"email":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if payload := decodeJSON(t, rr.Body.Bytes()); payload["type"] != "ValidationException" {
		t.Fatalf("expected ValidationException, got %v", payload["type"])
	}

	rr = serve(server, http.MethodPost, "/api/session/login", "", `{"name":"nobody"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for missing email, got %d", rr.Code)
	}
}

func TestSessionLoginDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.DevLoginEnabled = false
	logger := logging.NewWithWriter(io.Discard, "error", "json")
	svc := New(cfg, store.NewMemoryRepositories(), session.NewMemoryStore(), nil)
	server := NewHTTPServer(svc, logger, "*")

	rr := serve(server, http.MethodPost, "/api/session/login", "", `{"email":"admin@ucsb.edu"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestSessionRefreshRotatesToken(t *testing.T) {
	server, _ := newTestServer(t, store.NewMemoryRepositories())

	login := decodeJSON(t, serve(server, http.MethodPost, "/api/session/login", "", `{"email":"a@ucsb.edu","name":"A"}`).Body.Bytes())
	refresh := login["refreshToken"].(string)

	rr := serve(server, http.MethodPost, "/api/session/refresh", "", `{"refreshToken":"`+refresh+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rotated := decodeJSON(t, rr.Body.Bytes())
	if rotated["refreshToken"] == refresh {
		t.Fatalf("expected a new refresh token")
	}
	if rotated["name"] != "A" {
		t.Fatalf("expected name carried over, got %v", rotated["name"])
	}

	rr = serve(server, http.MethodPost, "/api/session/refresh", "", `{"refreshToken":"`+refresh+`"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected reused refresh token to be rejected, got %d", rr.Code)
	}
}

func TestCurrentUserAndLogout(t *testing.T) {
	server, _ := newTestServer(t, store.NewMemoryRepositories())

	login := decodeJSON(t, serve(server, http.MethodPost, "/api/session/login", "", `{"email":"a@ucsb.edu","name":"A"}`).Body.Bytes())
	token := login["token"].(string)
	refresh := login["refreshToken"].(string)

	rr := serve(server, http.MethodGet, "/api/currentUser", token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	me := decodeJSON(t, rr.Body.Bytes())
	if me["email"] != "a@ucsb.edu" || me["name"] != "A" {
		t.Fatalf("unexpected current user: %v", me)
	}

	rr = serve(server, http.MethodPost, "/api/session/logout", token, `{"refreshToken":"`+refresh+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected logout 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = serve(server, http.MethodGet, "/api/currentUser", token, "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected revoked token to be denied, got %d", rr.Code)
	}
	rr = serve(server, http.MethodPost, "/api/session/refresh", "", `{"refreshToken":"`+refresh+`"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked refresh token to be rejected, got %d", rr.Code)
	}
}

func TestCurrentUserRequiresToken(t *testing.T) {
	server, _ := newTestServer(t, store.NewMemoryRepositories())

	rr := serve(server, http.MethodGet, "/api/currentUser", "", "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rr.Code)
	}

	rr = serve(server, http.MethodGet, "/api/currentUser", tokenFor(t, "GUEST"), "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected unknown role to be denied, got %d", rr.Code)
	}
}
