package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finaflow/finaflow/internal/common"
	"github.com/finaflow/finaflow/internal/interfaces"
	"github.com/finaflow/finaflow/internal/models"
	"github.com/finaflow/finaflow/internal/policy"
)

// isConfigError reports whether the error stems from a persona outside the
// closed enum, as opposed to a storage or transport failure.
func isConfigError(err error) bool {
	var unknown *policy.ErrUnknownPersona
	return errors.As(err, &unknown)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"environment":       s.app.Config.Environment,
		"generator_enabled": s.app.GeneratorClient != nil,
		"uptime":            time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.Version,
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

// --- Profile handlers ---

// handleProfiles handles /api/profiles (GET list, POST create).
func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		profiles, err := s.app.ProfileService.ListProfiles(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing profiles: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"profiles": profiles})

	case http.MethodPost:
		var req struct {
			Name    string         `json:"name"`
			Persona models.Persona `json:"persona"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if req.Name == "" {
			WriteError(w, http.StatusBadRequest, "Profile name is required")
			return
		}

		profile, err := s.app.ProfileService.CreateProfile(r.Context(), req.Name, req.Persona)
		if err != nil {
			if isConfigError(err) {
				WriteErrorWithCode(w, http.StatusBadRequest, fmt.Sprintf("Error creating profile: %v", err), "config_error")
				return
			}
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error creating profile: %v", err))
			return
		}
		WriteJSON(w, http.StatusCreated, profile)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routeProfiles dispatches /api/profiles/{id}[/...] sub-routes.
func (s *Server) routeProfiles(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/profiles/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "Profile ID is required")
		return
	}
	profileID := parts[0]

	switch {
	case len(parts) == 1:
		s.handleProfileByID(w, r, profileID)
	case len(parts) == 2 && parts[1] == "persona":
		s.handleProfilePersona(w, r, profileID)
	case len(parts) == 2 && parts[1] == "dashboard":
		s.handleDashboardCurrent(w, r, profileID)
	case len(parts) == 3 && parts[1] == "dashboard" && parts[2] == "refresh":
		s.handleDashboardRefresh(w, r, profileID)
	case len(parts) == 3 && parts[1] == "ledger" && parts[2] == "transactions":
		s.handleLedgerTransactions(w, r, profileID)
	case len(parts) == 3 && parts[1] == "ledger" && parts[2] == "budgets":
		s.handleLedgerBudgets(w, r, profileID)
	case len(parts) == 3 && parts[1] == "ledger" && parts[2] == "seed":
		s.handleLedgerSeed(w, r, profileID)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleProfileByID(w http.ResponseWriter, r *http.Request, profileID string) {
	switch r.Method {
	case http.MethodGet:
		profile, err := s.app.ProfileService.GetProfile(r.Context(), profileID)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Profile not found: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, profile)

	case http.MethodDelete:
		if err := s.app.ProfileService.DeleteProfile(r.Context(), profileID); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting profile: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// handleProfilePersona handles PUT /api/profiles/{id}/persona.
func (s *Server) handleProfilePersona(w http.ResponseWriter, r *http.Request, profileID string) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	var req struct {
		Persona models.Persona `json:"persona"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	profile, err := s.app.ProfileService.SetPersona(r.Context(), profileID, req.Persona)
	if err != nil {
		if isConfigError(err) {
			WriteErrorWithCode(w, http.StatusBadRequest, fmt.Sprintf("Error updating persona: %v", err), "config_error")
			return
		}
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Error updating persona: %v", err))
		return
	}

	// The cached dashboard was produced for the old persona.
	s.app.DashboardService.Invalidate(profileID)

	WriteJSON(w, http.StatusOK, profile)
}

// --- Dashboard handlers ---

// handleDashboardCurrent handles GET /api/profiles/{id}/dashboard. It
// returns the latest snapshot; a ready snapshot includes the projected
// widget list in the profile's display order.
func (s *Server) handleDashboardCurrent(w http.ResponseWriter, r *http.Request, profileID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	profile, err := s.app.ProfileService.GetProfile(r.Context(), profileID)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Profile not found: %v", err))
		return
	}

	snapshot := s.app.DashboardService.Current(profileID)

	var widgets []interfaces.ProjectedWidget
	if snapshot.Status == interfaces.SnapshotReady {
		widgets = s.app.DashboardService.Project(snapshot.Result.Output, profile.DashboardConfig.ActiveWidgets)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot": snapshot,
		"layout":   profile.DashboardConfig.Layout,
		"widgets":  widgets,
	})
}

// handleDashboardRefresh handles POST /api/profiles/{id}/dashboard/refresh.
func (s *Server) handleDashboardRefresh(w http.ResponseWriter, r *http.Request, profileID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	profile, err := s.app.ProfileService.GetProfile(r.Context(), profileID)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Profile not found: %v", err))
		return
	}

	result, err := s.app.DashboardService.Generate(r.Context(), profile)
	if err != nil {
		WriteErrorWithCode(w, http.StatusInternalServerError, fmt.Sprintf("Generation error: %v", err), "config_error")
		return
	}

	widgets := s.app.DashboardService.Project(result.Output, profile.DashboardConfig.ActiveWidgets)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"result":  result,
		"layout":  profile.DashboardConfig.Layout,
		"widgets": widgets,
	})
}

// --- Ledger handlers ---

func (s *Server) handleLedgerTransactions(w http.ResponseWriter, r *http.Request, profileID string) {
	ledger := s.app.Storage.LedgerStore()

	switch r.Method {
	case http.MethodGet:
		transactions, err := ledger.GetTransactions(r.Context(), profileID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error reading transactions: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": transactions})

	case http.MethodPut:
		var req struct {
			Transactions []models.Transaction `json:"transactions"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if err := ledger.PutTransactions(r.Context(), profileID, req.Transactions); err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Error saving transactions: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"count": len(req.Transactions)})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) handleLedgerBudgets(w http.ResponseWriter, r *http.Request, profileID string) {
	ledger := s.app.Storage.LedgerStore()

	switch r.Method {
	case http.MethodGet:
		budgets, err := ledger.GetBudgets(r.Context(), profileID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error reading budgets: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"budgets": budgets})

	case http.MethodPut:
		var req struct {
			Budgets []models.Budget `json:"budgets"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if err := ledger.PutBudgets(r.Context(), profileID, req.Budgets); err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Error saving budgets: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"count": len(req.Budgets)})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// handleLedgerSeed handles POST /api/profiles/{id}/ledger/seed.
func (s *Server) handleLedgerSeed(w http.ResponseWriter, r *http.Request, profileID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.app.Storage.LedgerStore().SeedDemo(r.Context(), profileID); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error seeding demo ledger: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}
