package location

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wasteline/fleet_backendl/internal/middleware"
	"github.com/wasteline/fleet_backendl/internal/models"
	"github.com/wasteline/fleet_backendl/internal/pkg/response"
	locationService "github.com/wasteline/fleet_backendl/internal/services/location"
)

type Handler struct {
	service *locationService.Service
}

func NewHandler(service *locationService.Service) *Handler {
	return &Handler{service: service}
}

// ShareLocation handles POST /api/location/share. The target driver id is
// always the authenticated caller's own; ids in the payload are ignored.
func (h *Handler) ShareLocation(w http.ResponseWriter, r *http.Request) {
	driverID, ok := middleware.DriverIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusBadRequest, "Driver identity missing")
		return
	}

	var req models.ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Absent fields are invalid the same way NaN or a string would be.
	if req.Latitude == nil || req.Longitude == nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid coordinates")
		return
	}

	sharing := true
	if req.Sharing != nil {
		sharing = *req.Sharing
	}

	pos, err := h.service.Share(r.Context(), driverID, *req.Latitude, *req.Longitude, sharing)
	if err != nil {
		switch {
		case errors.Is(err, locationService.ErrInvalidCoordinates):
			response.RespondWithError(w, http.StatusBadRequest, "Invalid coordinates")
		case errors.Is(err, locationService.ErrDriverNotFound):
			response.RespondWithError(w, http.StatusNotFound, "Driver not found")
		default:
			response.RespondWithError(w, http.StatusInternalServerError, "Failed to share location")
		}
		return
	}

	response.RespondWithJSON(w, http.StatusOK, models.ShareResponse{
		Success:   true,
		Sharing:   pos.SharingActive,
		DriverID:  pos.DriverID,
		Location:  models.LatLng{Latitude: pos.Latitude(), Longitude: pos.Longitude()},
		UpdatedAt: pos.LastUpdatedAt,
	})
}

// GetDriverLocation handles GET /api/location/{driverID}.
func (h *Handler) GetDriverLocation(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "driverID")
	if driverID == "" {
		response.RespondWithError(w, http.StatusBadRequest, "Driver ID is required")
		return
	}

	resp, err := h.service.GetDriver(r.Context(), driverID)
	if err != nil {
		if errors.Is(err, locationService.ErrDriverNotFound) {
			response.RespondWithError(w, http.StatusNotFound, "Driver not found")
			return
		}
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch driver location")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, resp)
}

// GetLatest handles GET /api/location/latest: the cheapest "is anything live
// right now" probe.
func (h *Handler) GetLatest(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetLatestShared(r.Context())
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch location")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, resp)
}

// GetAllShared handles GET /api/location/shared: the fleet view polled by
// map viewers.
func (h *Handler) GetAllShared(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetAllShared(r.Context())
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch locations")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, resp)
}
