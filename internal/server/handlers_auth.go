package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/finaflow/finaflow/internal/common"
	"github.com/finaflow/finaflow/internal/models"
)

// signJWT creates a signed HMAC-SHA256 JWT for the given user.
func signJWT(user *models.User, config *common.AuthConfig) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     user.Username,
		"email":   user.Email,
		"profile": user.ProfileID,
		"iss":     "finaflow-server",
		"iat":     now.Unix(),
		"exp":     now.Add(config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// handleAuthRegister handles POST /api/auth/register.
func (s *Server) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Username string         `json:"username"`
		Email    string         `json:"email"`
		Password string         `json:"password"`
		Name     string         `json:"name"`
		Persona  models.Persona `json:"persona"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	if req.Username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if len(req.Password) < 8 {
		WriteError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	store := s.app.Storage.ProfileStore()
	if _, err := store.GetUser(r.Context(), req.Username); err == nil {
		WriteError(w, http.StatusConflict, "Username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	name := req.Name
	if name == "" {
		name = req.Username
	}
	persona := req.Persona
	if persona == "" {
		persona = models.PersonaRelaxed
	}

	profile, err := s.app.ProfileService.CreateProfile(r.Context(), name, persona)
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, fmt.Sprintf("Error creating profile: %v", err), "config_error")
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         "user",
		ProfileID:    profile.ID,
	}
	if err := store.SaveUser(r.Context(), user); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving user: %v", err))
		return
	}

	token, err := signJWT(user, &s.app.Config.Auth)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to sign token")
		return
	}

	s.logger.Info().Str("username", user.Username).Msg("User registered")

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"token":   token,
		"profile": profile,
	})
}

// handleAuthLogin handles POST /api/auth/login.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(strings.ToLower(req.Username))

	user, err := s.app.Storage.ProfileStore().GetUser(r.Context(), req.Username)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		WriteError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := signJWT(user, &s.app.Config.Auth)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to sign token")
		return
	}

	s.logger.Info().Str("username", user.Username).Msg("User logged in")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"profile_id": user.ProfileID,
	})
}

// handleAuthValidate handles GET /api/auth/validate.
func (s *Server) handleAuthValidate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	username := UsernameFromContext(r.Context())
	if username == "" {
		WriteErrorWithCode(w, http.StatusUnauthorized, "Missing or invalid token", "invalid_token")
		return
	}

	user, err := s.app.Storage.ProfileStore().GetUser(r.Context(), username)
	if err != nil {
		WriteErrorWithCode(w, http.StatusUnauthorized, "User not found", "invalid_token")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"username":   user.Username,
		"email":      user.Email,
		"profile_id": user.ProfileID,
	})
}
