package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"estatewatch/internal/access"
	"estatewatch/internal/config"
	"estatewatch/internal/storage"
	"estatewatch/internal/visitor"
)

func newTestServer(t *testing.T) (*gin.Engine, storage.Provider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.Cfg = &config.Config{
		Secret:     "test-secret",
		SessionTTL: 1,
	}

	provider := storage.NewMemoryProvider()
	engine := visitor.NewEngine(provider)
	policy := access.DefaultPolicy()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("BaseURL", "http://test")
		c.Set("Storage", provider)
		c.Set("Engine", engine)
		c.Set("Policy", policy)
		c.Next()
	})
	r.Use(ErrorHandler())

	AuthRoutes(r.Group("/auth"))
	api := r.Group("/api", SessionMiddleware())
	VisitorRoutes(api.Group("/visitors"))
	ProfileRoutes(api.Group("/profiles"))
	NavigationRoute(api)

	return r, provider
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, cookie string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// login returns the session cookie for the role.
func login(t *testing.T, r *gin.Engine, role string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"role": role}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login as %s: status %d: %s", role, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == AUTH_COOKIE_NAME {
			return fmt.Sprintf("%s=%s", c.Name, c.Value)
		}
	}
	t.Fatalf("login as %s: no session cookie set", role)
	return ""
}

func TestLoginUnknownRole(t *testing.T) {
	r, _ := newTestServer(t)
	w := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"role": "Janitor"}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestVisitorAPIUnauthenticated(t *testing.T) {
	r, _ := newTestServer(t)
	w := doJSON(t, r, http.MethodGet, "/api/visitors", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestVisitorLifecycleOverHTTP(t *testing.T) {
	r, _ := newTestServer(t)

	resident := login(t, r, "Resident")
	operative := login(t, r, "Security Operative")

	today := time.Now().Format("2006-01-02")

	// Resident pre-authorizes a visitor
	w := doJSON(t, r, http.MethodPost, "/api/visitors", gin.H{
		"name":      "Ada Obi",
		"purpose":   "Family visit",
		"visitDate": today,
	}, resident)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", w.Code, w.Body.String())
	}
	var created visitor.Visitor
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding created record: %v", err)
	}
	if !visitor.CodePattern.MatchString(created.AccessCode) {
		t.Fatalf("bad access code in response: %q", created.AccessCode)
	}

	// Operatives may not pre-authorize
	w = doJSON(t, r, http.MethodPost, "/api/visitors", gin.H{
		"name":      "Bola Eze",
		"purpose":   "Plumbing",
		"visitDate": today,
	}, operative)
	if w.Code != http.StatusForbidden {
		t.Fatalf("create as operative: status %d, want 403", w.Code)
	}

	// Residents may not verify at the gate
	w = doJSON(t, r, http.MethodPost, "/api/visitors/verify", gin.H{"accessCode": created.AccessCode}, resident)
	if w.Code != http.StatusForbidden {
		t.Fatalf("verify as resident: status %d, want 403", w.Code)
	}

	// The operative verifies, case-insensitively
	w = doJSON(t, r, http.MethodPost, "/api/visitors/verify", gin.H{"accessCode": "  " + created.AccessCode + " "}, operative)
	if w.Code != http.StatusOK {
		t.Fatalf("verify: status %d: %s", w.Code, w.Body.String())
	}

	// Check in, then out
	w = doJSON(t, r, http.MethodPost, "/api/visitors/"+created.ID+"/checkin", nil, operative)
	if w.Code != http.StatusOK {
		t.Fatalf("checkin: status %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/api/visitors/"+created.ID+"/checkout", nil, operative)
	if w.Code != http.StatusOK {
		t.Fatalf("checkout: status %d: %s", w.Code, w.Body.String())
	}

	// The code is spent now
	w = doJSON(t, r, http.MethodPost, "/api/visitors/verify", gin.H{"accessCode": created.AccessCode}, operative)
	if w.Code != http.StatusNotFound {
		t.Fatalf("verify after checkout: status %d, want 404", w.Code)
	}
}

func TestVerifyUnknownCodeOverHTTP(t *testing.T) {
	r, _ := newTestServer(t)
	operative := login(t, r, "Security Operative")

	w := doJSON(t, r, http.MethodPost, "/api/visitors/verify", gin.H{"accessCode": "EW-NOSUCH00"}, operative)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}

	var body errorStruct
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Succeed || body.Status != "error" {
		t.Errorf("unexpected error envelope: %+v", body)
	}
}

func TestVerifyWrongDateOverHTTP(t *testing.T) {
	r, _ := newTestServer(t)
	resident := login(t, r, "Resident")
	operative := login(t, r, "Security Operative")

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	w := doJSON(t, r, http.MethodPost, "/api/visitors", gin.H{
		"name":      "Ada Obi",
		"purpose":   "Family visit",
		"visitDate": tomorrow,
	}, resident)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", w.Code, w.Body.String())
	}
	var created visitor.Visitor
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding created record: %v", err)
	}

	w = doJSON(t, r, http.MethodPost, "/api/visitors/verify", gin.H{"accessCode": created.AccessCode}, operative)
	if w.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", w.Code)
	}
}

func TestAuthorizedByOverrideDenied(t *testing.T) {
	r, _ := newTestServer(t)
	resident := login(t, r, "Resident")

	today := time.Now().Format("2006-01-02")
	w := doJSON(t, r, http.MethodPost, "/api/visitors", gin.H{
		"name":         "Ada Obi",
		"purpose":      "Family visit",
		"visitDate":    today,
		"authorizedBy": "alice@estate.example",
	}, resident)
	if w.Code != http.StatusForbidden {
		t.Fatalf("create with foreign authorizer: status %d, want 403", w.Code)
	}
}

func TestRevokeOverHTTP(t *testing.T) {
	r, provider := newTestServer(t)
	resident := login(t, r, "Resident")
	manager := login(t, r, "Estate Manager")

	// A record attributed to a named resident, as an administrative
	// role would create it
	ctx := context.Background()
	record := visitor.Visitor{
		ID:           "rec-1",
		Name:         "Ada Obi",
		Purpose:      "Family visit",
		AccessCode:   "EW-AAAA1111",
		AuthorizedBy: "alice@estate.example",
		Status:       visitor.StatusPending,
		VisitDate:    time.Now(),
	}
	if err := provider.Insert(ctx, record); err != nil {
		t.Fatalf("seeding record: %v", err)
	}

	// A resident may not revoke it; naming the authorizer in the
	// request does not change who is asking
	w := doJSON(t, r, http.MethodDelete, "/api/visitors/rec-1?requestedBy=alice@estate.example", nil, resident)
	if w.Code != http.StatusForbidden {
		t.Fatalf("revoke as stranger: status %d, want 403", w.Code)
	}
	if got, err := provider.Get(ctx, "rec-1"); err != nil || got == nil {
		t.Fatalf("denied revoke removed the record: %v %v", got, err)
	}

	// An administrative role revokes anyone's record
	w = doJSON(t, r, http.MethodDelete, "/api/visitors/rec-1", nil, manager)
	if w.Code != http.StatusOK {
		t.Fatalf("revoke as manager: status %d: %s", w.Code, w.Body.String())
	}

	// Idempotent
	w = doJSON(t, r, http.MethodDelete, "/api/visitors/rec-1", nil, manager)
	if w.Code != http.StatusOK {
		t.Fatalf("repeat revoke: status %d", w.Code)
	}
}

func TestResidentRevokesOwnRecord(t *testing.T) {
	r, _ := newTestServer(t)
	resident := login(t, r, "Resident")

	today := time.Now().Format("2006-01-02")
	w := doJSON(t, r, http.MethodPost, "/api/visitors", gin.H{
		"name":      "Ada Obi",
		"purpose":   "Family visit",
		"visitDate": today,
	}, resident)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", w.Code, w.Body.String())
	}
	var created visitor.Visitor
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding created record: %v", err)
	}
	if created.AuthorizedBy != "Resident" {
		t.Fatalf("authorizedBy = %q, want the session role", created.AuthorizedBy)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/visitors/"+created.ID, nil, resident)
	if w.Code != http.StatusOK {
		t.Fatalf("revoke own record: status %d: %s", w.Code, w.Body.String())
	}
}

func TestNavigationFiltered(t *testing.T) {
	r, _ := newTestServer(t)
	resident := login(t, r, "Resident")

	w := doJSON(t, r, http.MethodGet, "/api/navigation", nil, resident)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Role   string   `json:"role"`
		Routes []string `json:"routes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding navigation: %v", err)
	}
	if body.Role != "Resident" {
		t.Errorf("role = %q", body.Role)
	}
	for _, route := range body.Routes {
		if route == access.RouteCheckInOut {
			t.Error("resident navigation includes the gate desk route")
		}
	}
}
