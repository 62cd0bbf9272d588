package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wasteline/fleet_backendl/internal/pkg/response"
	"github.com/wasteline/fleet_backendl/internal/repositories"
	authService "github.com/wasteline/fleet_backendl/internal/services/auth"
)

type Handler struct {
	drivers    *repositories.DriverRepository
	admins     *repositories.AdminRepository
	jwtService *authService.JWTService
}

func NewHandler(drivers *repositories.DriverRepository, admins *repositories.AdminRepository, jwtService *authService.JWTService) *Handler {
	return &Handler{
		drivers:    drivers,
		admins:     admins,
		jwtService: jwtService,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DriverLoginHandler issues tokens for a driver account.
func (h *Handler) DriverLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	driver, err := h.drivers.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		} else {
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !authService.CheckPasswordHash(req.Password, driver.PasswordHash) {
		response.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, refreshToken, err := h.jwtService.GenerateToken(driver.ID, driver.Name, "driver")
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, map[string]string{
		"token":         token,
		"refresh_token": refreshToken,
		"role":          "driver",
		"driverId":      driver.ID,
		"name":          driver.Name,
	})
}

// AdminLoginHandler issues tokens for an admin account.
func (h *Handler) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	admin, err := h.admins.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		} else {
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !authService.CheckPasswordHash(req.Password, admin.PasswordHash) {
		response.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, refreshToken, err := h.jwtService.GenerateToken(admin.ID, admin.Name, "admin")
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, map[string]string{
		"token":         token,
		"refresh_token": refreshToken,
		"role":          "admin",
		"name":          admin.Name,
	})
}

// RefreshTokenHandler exchanges a refresh token for a fresh pair.
func (h *Handler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if req.RefreshToken == "" {
		response.RespondWithError(w, http.StatusUnauthorized, "Refresh token required")
		return
	}

	id, role, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		response.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	var name string
	switch role {
	case "driver":
		driver, err := h.drivers.GetByID(r.Context(), id)
		if err != nil {
			response.RespondWithError(w, http.StatusUnauthorized, "Account no longer exists")
			return
		}
		name = driver.Name
	case "admin":
		admin, err := h.admins.GetByID(r.Context(), id)
		if err != nil {
			response.RespondWithError(w, http.StatusUnauthorized, "Account no longer exists")
			return
		}
		name = admin.Name
	default:
		response.RespondWithError(w, http.StatusUnauthorized, "Unknown role")
		return
	}

	token, refreshToken, err := h.jwtService.GenerateToken(id, name, role)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Could not generate token")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, map[string]string{
		"token":         token,
		"refresh_token": refreshToken,
	})
}
