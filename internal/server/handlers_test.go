package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/finaflow/finaflow/internal/app"
	"github.com/finaflow/finaflow/internal/common"
	"github.com/finaflow/finaflow/internal/interfaces"
	"github.com/finaflow/finaflow/internal/models"
	"github.com/finaflow/finaflow/internal/services/dashboard"
	"github.com/finaflow/finaflow/internal/services/profile"
	"github.com/finaflow/finaflow/internal/storage"
)

// newTestServer builds a server over real storage in a temp dir, with no
// generator client so dashboards always resolve through the fallback.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	logger := common.NewSilentLogger()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Profile = common.AreaConfig{Path: filepath.Join(dir, "profile")}
	cfg.Storage.Ledger = common.AreaConfig{Path: filepath.Join(dir, "ledger")}

	mgr, err := storage.NewManager(logger, cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	a := &app.App{
		Config:           cfg,
		Logger:           logger,
		Storage:          mgr,
		DashboardService: dashboard.NewService(mgr.LedgerStore(), dashboard.WithLogger(logger)),
		ProfileService:   profile.NewService(mgr.ProfileStore(), mgr.LedgerStore(), profile.WithLogger(logger)),
	}
	return &Server{app: a, logger: logger}
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return bytes.NewBuffer(data)
}

// createTestProfile creates a profile via the handler and returns it.
func createTestProfile(t *testing.T, srv *Server, name string, persona models.Persona) *models.UserProfile {
	t.Helper()
	body := jsonBody(t, map[string]string{"name": name, "persona": string(persona)})
	req := httptest.NewRequest(http.MethodPost, "/api/profiles", body)
	rec := httptest.NewRecorder()
	srv.handleProfiles(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("createTestProfile: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var p models.UserProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	return &p
}

func TestHandleProfiles_CreateDerivesConfig(t *testing.T) {
	srv := newTestServer(t)

	p := createTestProfile(t, srv, "Ana", models.PersonaAuditor)
	if p.Persona != models.PersonaAuditor {
		t.Errorf("expected auditor, got %s", p.Persona)
	}
	if p.DashboardConfig.Layout != models.LayoutGrid3 {
		t.Errorf("expected grid-3 layout, got %s", p.DashboardConfig.Layout)
	}
	if len(p.DashboardConfig.ActiveWidgets) != 5 {
		t.Errorf("expected 5 active widgets, got %d", len(p.DashboardConfig.ActiveWidgets))
	}
}

func TestHandleProfiles_UnknownPersonaRejected(t *testing.T) {
	srv := newTestServer(t)

	body := jsonBody(t, map[string]string{"name": "X", "persona": "gambler"})
	req := httptest.NewRequest(http.MethodPost, "/api/profiles", body)
	rec := httptest.NewRecorder()
	srv.handleProfiles(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if errResp.Code != "config_error" {
		t.Errorf("expected config_error code, got %q", errResp.Code)
	}
}

func TestHandleProfilePersona_Switch(t *testing.T) {
	srv := newTestServer(t)
	p := createTestProfile(t, srv, "Ana", models.PersonaRelaxed)

	body := jsonBody(t, map[string]string{"persona": "spender"})
	req := httptest.NewRequest(http.MethodPut, "/api/profiles/"+p.ID+"/persona", body)
	rec := httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.UserProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if updated.Persona != models.PersonaSpender {
		t.Errorf("expected spender, got %s", updated.Persona)
	}
	if updated.DashboardConfig.Layout != models.LayoutList {
		t.Errorf("expected list layout, got %s", updated.DashboardConfig.Layout)
	}
}

func TestHandleProfilePersona_UnknownPersonaRejected(t *testing.T) {
	srv := newTestServer(t)
	p := createTestProfile(t, srv, "Ana", models.PersonaRelaxed)

	body := jsonBody(t, map[string]string{"persona": "gambler"})
	req := httptest.NewRequest(http.MethodPut, "/api/profiles/"+p.ID+"/persona", body)
	rec := httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if errResp.Code != "config_error" {
		t.Errorf("expected config_error code, got %q", errResp.Code)
	}

	// Profile is untouched.
	got, err := srv.app.ProfileService.GetProfile(req.Context(), p.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got.Persona != models.PersonaRelaxed {
		t.Errorf("persona must remain relaxed, got %s", got.Persona)
	}
}

func TestHandleProfiles_StoreFailureIsNotConfigError(t *testing.T) {
	srv := newTestServer(t)
	if err := srv.app.Storage.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	body := jsonBody(t, map[string]string{"name": "Ana", "persona": "auditor"})
	req := httptest.NewRequest(http.MethodPost, "/api/profiles", body)
	rec := httptest.NewRecorder()
	srv.handleProfiles(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if errResp.Code == "config_error" {
		t.Error("a storage failure must not be labeled config_error")
	}
}

func TestHandleProfilePersona_SwitchInvalidatesDashboard(t *testing.T) {
	srv := newTestServer(t)
	p := createTestProfile(t, srv, "Ana", models.PersonaRelaxed)

	req := httptest.NewRequest(http.MethodPost, "/api/profiles/"+p.ID+"/dashboard/refresh", nil)
	rec := httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := jsonBody(t, map[string]string{"persona": "auditor"})
	req = httptest.NewRequest(http.MethodPut, "/api/profiles/"+p.ID+"/persona", body)
	rec = httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("persona: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/profiles/"+p.ID+"/dashboard", nil)
	rec = httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	var resp struct {
		Snapshot interfaces.DashboardSnapshot `json:"snapshot"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Snapshot.Status != interfaces.SnapshotPending {
		t.Errorf("expected pending after persona switch, got %s", resp.Snapshot.Status)
	}
}

func TestHandleDashboard_PendingBeforeFirstRefresh(t *testing.T) {
	srv := newTestServer(t)
	p := createTestProfile(t, srv, "Ana", models.PersonaRelaxed)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/"+p.ID+"/dashboard", nil)
	rec := httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Snapshot interfaces.DashboardSnapshot `json:"snapshot"`
		Widgets  []interfaces.ProjectedWidget `json:"widgets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Snapshot.Status != interfaces.SnapshotPending {
		t.Errorf("expected pending snapshot, got %s", resp.Snapshot.Status)
	}
	if resp.Snapshot.Placeholder == "" {
		t.Error("expected a placeholder message")
	}
	if len(resp.Widgets) != 0 {
		t.Errorf("expected no widgets while pending, got %d", len(resp.Widgets))
	}
}

func TestHandleDashboard_RefreshThenCurrent(t *testing.T) {
	srv := newTestServer(t)
	p := createTestProfile(t, srv, "Ana", models.PersonaRelaxed)

	req := httptest.NewRequest(http.MethodPost, "/api/profiles/"+p.ID+"/dashboard/refresh", nil)
	rec := httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var refreshResp struct {
		Result  models.DashboardResult       `json:"result"`
		Layout  models.Layout                `json:"layout"`
		Widgets []interfaces.ProjectedWidget `json:"widgets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &refreshResp); err != nil {
		t.Fatalf("failed to decode refresh response: %v", err)
	}
	if refreshResp.Result.Source != models.SourceFallback {
		t.Errorf("expected fallback source without a generator, got %s", refreshResp.Result.Source)
	}
	if refreshResp.Layout != models.LayoutGrid2 {
		t.Errorf("expected grid-2 layout, got %s", refreshResp.Layout)
	}
	// Relaxed activates summary, chart, budget; demo ledger populates all.
	if len(refreshResp.Widgets) != 3 {
		t.Fatalf("expected 3 widgets, got %d", len(refreshResp.Widgets))
	}
	for _, widget := range refreshResp.Widgets {
		if widget.Type == models.WidgetTransactions || widget.Type == models.WidgetAlerts {
			t.Errorf("suppressed widget %s must not be projected", widget.Type)
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/api/profiles/"+p.ID+"/dashboard", nil)
	rec = httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("current: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var currentResp struct {
		Snapshot interfaces.DashboardSnapshot `json:"snapshot"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &currentResp); err != nil {
		t.Fatalf("failed to decode current response: %v", err)
	}
	if currentResp.Snapshot.Status != interfaces.SnapshotReady {
		t.Errorf("expected ready snapshot after refresh, got %s", currentResp.Snapshot.Status)
	}
}

func TestHandleDashboard_UnknownProfile(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/profiles/missing/dashboard/refresh", nil)
	rec := httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleLedger_PutAndGet(t *testing.T) {
	srv := newTestServer(t)
	p := createTestProfile(t, srv, "Ana", models.PersonaAuditor)

	budgets := []models.Budget{
		{Category: models.CategoryFood, Limit: 500, Spent: 100, Currency: "USD"},
	}
	body := jsonBody(t, map[string]interface{}{"budgets": budgets})
	req := httptest.NewRequest(http.MethodPut, "/api/profiles/"+p.ID+"/ledger/budgets", body)
	rec := httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/profiles/"+p.ID+"/ledger/budgets", nil)
	rec = httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Budgets []models.Budget `json:"budgets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode budgets: %v", err)
	}
	if len(resp.Budgets) != 1 || resp.Budgets[0].Category != models.CategoryFood {
		t.Errorf("unexpected budgets: %+v", resp.Budgets)
	}
}

func TestHandleLedger_InvalidBudgetRejected(t *testing.T) {
	srv := newTestServer(t)
	p := createTestProfile(t, srv, "Ana", models.PersonaAuditor)

	body := jsonBody(t, map[string]interface{}{"budgets": []models.Budget{
		{Category: "Gambling", Limit: 100, Spent: 0, Currency: "USD"},
	}})
	req := httptest.NewRequest(http.MethodPut, "/api/profiles/"+p.ID+"/ledger/budgets", body)
	rec := httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode health: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected ok status, got %v", resp["status"])
	}
	if resp["generator_enabled"] != false {
		t.Errorf("expected generator_enabled=false, got %v", resp["generator_enabled"])
	}
}

func TestRouteProfiles_UnknownSubRoute(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/p1/weather", nil)
	rec := httptest.NewRecorder()
	srv.routeProfiles(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
