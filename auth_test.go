package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"lg/diet-funnel-go-api/internal/plans"
)

/* ─── Sessions ───────────────────────────────────────────────────────── */

func TestSessionIssuer_RoundTrip(t *testing.T) {
	s := newSessionIssuer("secret", time.Hour)

	id, token, err := s.issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := s.parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != id {
		t.Errorf("expected session %s, got %s", id, got)
	}
}

func TestSessionIssuer_Rejects(t *testing.T) {
	s := newSessionIssuer("secret", time.Hour)
	_, token, _ := s.issue()

	t.Run("wrong secret", func(t *testing.T) {
		if _, err := newSessionIssuer("other", time.Hour).parse(token); err == nil {
			t.Error("expected error for token signed with another secret")
		}
	})

	t.Run("expired", func(t *testing.T) {
		later := newSessionIssuer("secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := later.parse(token); err == nil {
			t.Error("expected error for expired token")
		}
	})

	t.Run("subject not a uuid", func(t *testing.T) {
		forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte("secret"))
		if _, err := s.parse(forged); err == nil {
			t.Error("expected error for non-uuid subject")
		}
	})

	t.Run("unsigned", func(t *testing.T) {
		none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "x"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		if _, err := s.parse(none); err == nil {
			t.Error("expected error for alg=none token")
		}
	})
}

// TestSessionMiddleware_SessionHeader verifies a token sent in the
// X-Funnel-Session header is honoured like a Bearer token.
func TestSessionMiddleware_SessionHeader(t *testing.T) {
	router, _, _, _ := setupFunnelTest(t)
	token := startSession(t, router)

	req := httptest.NewRequest("GET", "/api/funnel/calculator", nil)
	req.Header.Set(sessionHeader, token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

// TestSessionMiddleware_InvalidTokenStartsFresh verifies a bad token does not
// fail the request; the visitor just starts a new session with no state.
func TestSessionMiddleware_InvalidTokenStartsFresh(t *testing.T) {
	router, _, _, _ := setupFunnelTest(t)
	startSession(t, router)

	w := doRequest(router, "GET", "/api/funnel/calculator", "not-a-jwt", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(sessionHeader) == "" {
		t.Error("expected a fresh session token")
	}
}

/* ─── Admin ──────────────────────────────────────────────────────────── */

// setupAdminTest returns a router with admin routes enabled for
// admin / s3cret, plus one completed questionnaire.
func setupAdminTest(t *testing.T) *gin.Engine {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	gin.SetMode(gin.TestMode)
	h := newTestHandler("http://127.0.0.1:0", time.Second)
	h.adminUser = "admin"
	h.adminPasswordHash = string(hash)
	router := h.newRouter()

	completeQuestionnaire(t, router, plans.Premium)
	return router
}

func adminRequest(router *gin.Engine, path, user, password string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if user != "" {
		req.SetBasicAuth(user, password)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdmin_Auth(t *testing.T) {
	router := setupAdminTest(t)

	cases := []struct {
		name, user, password string
		want                 int
	}{
		{"no credentials", "", "", http.StatusUnauthorized},
		{"wrong user", "root", "s3cret", http.StatusUnauthorized},
		{"wrong password", "admin", "nope", http.StatusUnauthorized},
		{"valid", "admin", "s3cret", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := adminRequest(router, "/api/admin/leads", tc.user, tc.password)
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestAdmin_DisabledWithoutHash(t *testing.T) {
	router, _, _, _ := setupFunnelTest(t)

	w := adminRequest(router, "/api/admin/leads", "admin", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAdmin_ListLeads(t *testing.T) {
	router := setupAdminTest(t)

	w := adminRequest(router, "/api/admin/leads", "admin", "s3cret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var leads []lead
	if err := json.Unmarshal(w.Body.Bytes(), &leads); err != nil {
		t.Fatalf("failed to parse leads: %v", err)
	}
	if len(leads) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(leads))
	}
	if leads[0].Email != "joao@example.com" || leads[0].Plan != plans.Premium || leads[0].FinalCalories != 2542 {
		t.Errorf("unexpected lead: %+v", leads[0])
	}
	if !leads[0].SubmittedAt.Equal(fixedNow) {
		t.Errorf("expected submitted_at %v, got %v", fixedNow, leads[0].SubmittedAt)
	}
}

func TestAdmin_ExportLeads(t *testing.T) {
	router := setupAdminTest(t)

	w := adminRequest(router, "/api/admin/leads.xlsx", "admin", "s3cret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="leads-2026-10-19.xlsx"` {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(leadsSheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	if rows[0][3] != "Nome" || rows[1][3] != "João Silva" || rows[1][6] != "2542" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestRoundGrams(t *testing.T) {
	if got := roundGrams(355.5); got != 355.5 {
		t.Errorf("expected 355.5, got %v", got)
	}
	if got := roundGrams(42.666); got != 42.7 {
		t.Errorf("expected 42.7, got %v", got)
	}
}

/* ─── Config ─────────────────────────────────────────────────────────── */

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("FUNNEL_STORE", "")
	t.Setenv("CHECKOUT_TIMEOUT", "")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Port != "3000" || cfg.StoreKind != "memory" || cfg.CheckoutTimeout != 20*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.CheckoutBaseURL != defaultCheckoutBaseURL {
		t.Errorf("expected default checkout URL, got %s", cfg.CheckoutBaseURL)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"postgres without url", map[string]string{"JWT_SECRET": "s", "FUNNEL_STORE": "postgres", "DB_URL": ""}},
		{"unknown store", map[string]string{"JWT_SECRET": "s", "FUNNEL_STORE": "sqlite"}},
		{"bad timeout", map[string]string{"JWT_SECRET": "s", "CHECKOUT_TIMEOUT": "soon"}},
		{"bad redis db", map[string]string{"JWT_SECRET": "s", "REDIS_DB": "one"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := loadConfig(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
