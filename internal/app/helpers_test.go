package app

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ucsbexample/api/internal/auth"
	"ucsbexample/api/internal/config"
	"ucsbexample/api/internal/logging"
	"ucsbexample/api/internal/session"
	"ucsbexample/api/internal/store"
)

const testSecret = "test-secret"

func testConfig() config.Config {
	return config.Config{
		JWTSecret:       testSecret,
		AccessTTL:       time.Hour,
		RefreshTTL:      24 * time.Hour,
		AdminEmails:     []string{"admin@ucsb.edu"},
		DevLoginEnabled: true,
		CORSOrigin:      "*",
	}
}

func newTestServer(t *testing.T, repos store.Repositories) (*HTTPServer, *Service) {
	t.Helper()
	logger := logging.NewWithWriter(io.Discard, "error", "json")
	svc := New(testConfig(), repos, session.NewMemoryStore(), nil)
	return NewHTTPServer(svc, logger, "*"), svc
}

// tokenFor issues an access token for user@ucsb.edu with the given roles.
func tokenFor(t *testing.T, roles ...string) string {
	t.Helper()
	claims := auth.NewClaims("user@ucsb.edu", "Test User", roles, time.Now(), time.Hour)
	token, err := auth.IssueToken([]byte(testSecret), claims)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func serve(server *HTTPServer, method, target, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

type repoCounter struct {
	calls int
}

// countingRepository records every call that reaches the persistence layer.
type countingRepository[K comparable, E any] struct {
	inner   store.Repository[K, E]
	counter *repoCounter
}

func counted[K comparable, E any](inner store.Repository[K, E], counter *repoCounter) store.Repository[K, E] {
	return &countingRepository[K, E]{inner: inner, counter: counter}
}

func (r *countingRepository[K, E]) FindAll(ctx context.Context) ([]E, error) {
	r.counter.calls++
	return r.inner.FindAll(ctx)
}

func (r *countingRepository[K, E]) FindByID(ctx context.Context, key K) (E, bool, error) {
	r.counter.calls++
	return r.inner.FindByID(ctx, key)
}

func (r *countingRepository[K, E]) Save(ctx context.Context, entity E) (E, error) {
	r.counter.calls++
	return r.inner.Save(ctx, entity)
}

func (r *countingRepository[K, E]) Delete(ctx context.Context, entity E) error {
	r.counter.calls++
	return r.inner.Delete(ctx, entity)
}

func newCountingRepositories() (store.Repositories, *repoCounter) {
	counter := &repoCounter{}
	memory := store.NewMemoryRepositories()
	return store.Repositories{
		Organizations:   counted(memory.Organizations, counter),
		DiningCommons:   counted(memory.DiningCommons, counter),
		HelpRequests:    counted(memory.HelpRequests, counter),
		MenuItemReviews: counted(memory.MenuItemReviews, counter),
		Dates:           counted(memory.Dates, counter),
	}, counter
}

var errStoreDown = errors.New("connection refused")

type failingRepository[K comparable, E any] struct{}

func (failingRepository[K, E]) FindAll(context.Context) ([]E, error) { return nil, errStoreDown }

func (failingRepository[K, E]) FindByID(context.Context, K) (E, bool, error) {
	var zero E
	return zero, false, errStoreDown
}

func (failingRepository[K, E]) Save(context.Context, E) (E, error) {
	var zero E
	return zero, errStoreDown
}

func (failingRepository[K, E]) Delete(context.Context, E) error { return errStoreDown }
