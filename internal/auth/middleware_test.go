package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Benhap1/taskmanager/internal/models"
)

type stubLookup struct {
	users map[string]*models.User
	err   error
}

func (s *stubLookup) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[email], nil
}

func newTestRouter(t *testing.T, lookup UserLookup) (*gin.Engine, *Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	manager, err := NewManager(newTestTokenService(t), NewMemoryRevoker(), lookup, nil)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	router := gin.New()
	router.GET("/me", manager.RequireToken(), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	return router, manager
}

func doGet(router http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireTokenSuccess(t *testing.T) {
	lookup := &stubLookup{users: map[string]*models.User{"a@x.com": {ID: 1, Email: "a@x.com"}}}
	router, manager := newTestRouter(t, lookup)
	token, _ := manager.tokens.Issue("a@x.com")

	rec := doGet(router, "Bearer "+token.Value)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if payload["email"] != "a@x.com" {
		t.Fatalf("unexpected email: %s", payload["email"])
	}
}

func TestRequireTokenRejects(t *testing.T) {
	lookup := &stubLookup{users: map[string]*models.User{"a@x.com": {ID: 1, Email: "a@x.com"}}}
	router, manager := newTestRouter(t, lookup)
	ghost, _ := manager.tokens.Issue("ghost@x.com")

	cases := map[string]string{
		"missing":      "",
		"wrong scheme": "Basic abc",
		"empty bearer": "Bearer ",
		"garbage":      "Bearer not-a-jwt",
		"unknown user": "Bearer " + ghost.Value,
	}
	for name, header := range cases {
		rec := doGet(router, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: unexpected status %d", name, rec.Code)
		}
	}
}

func TestRequireTokenRevoked(t *testing.T) {
	lookup := &stubLookup{users: map[string]*models.User{"a@x.com": {ID: 1, Email: "a@x.com"}}}
	router, manager := newTestRouter(t, lookup)
	token, _ := manager.tokens.Issue("a@x.com")
	claims, err := manager.tokens.Verify(token.Value)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	if err := manager.Revoke(context.Background(), claims); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if rec := doGet(router, "Bearer "+token.Value); rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token accepted: %d", rec.Code)
	}
}

func TestRequireTokenLookupFailure(t *testing.T) {
	router, manager := newTestRouter(t, &stubLookup{err: errors.New("db down")})
	token, _ := manager.tokens.Issue("a@x.com")

	if rec := doGet(router, "bearer "+token.Value); rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	if tok, ok := bearerToken("  BEARER abc.def.ghi "); !ok || tok != "abc.def.ghi" {
		t.Fatalf("unexpected parse: %q %v", tok, ok)
	}
	if _, ok := bearerToken("Bearerabc"); ok {
		t.Fatal("expected failure without separator")
	}
}
