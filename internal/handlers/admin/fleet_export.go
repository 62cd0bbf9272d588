package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wasteline/fleet_backendl/internal/models"
	"github.com/wasteline/fleet_backendl/internal/pkg/response"
	locationService "github.com/wasteline/fleet_backendl/internal/services/location"
)

// DriverLister is the slice of the profile store the export needs.
// *repositories.DriverRepository satisfies it.
type DriverLister interface {
	List(ctx context.Context) ([]models.Driver, error)
}

type Handler struct {
	drivers   DriverLister
	positions locationService.PositionStore
}

func NewHandler(drivers DriverLister, positions locationService.PositionStore) *Handler {
	return &Handler{drivers: drivers, positions: positions}
}

// ExportFleetHandler handles GET /api/admin/fleet/export: an xlsx snapshot of
// every driver profile joined with its live position record. Unlike the map
// view this is an ops report, so it includes drivers who are not sharing and
// their raw last-known state.
func (h *Handler) ExportFleetHandler(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.drivers.List(r.Context())
	if err != nil {
		log.Printf("Fleet export: driver list failed: %v", err)
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Fleet"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Driver ID", "Name", "Vehicle Number", "Vehicle Model", "Phone", "Sharing", "Latitude", "Longitude", "Last Update"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for row, d := range drivers {
		values := []interface{}{d.ID, d.Name, d.VehicleNumber, d.VehicleModel, d.PhoneNumber, "no", "", "", ""}

		pos, err := h.positions.GetPosition(r.Context(), d.ID)
		if err != nil && !errors.Is(err, locationService.ErrPositionNotFound) {
			log.Printf("Fleet export: position read for %s failed: %v", d.ID, err)
			response.RespondWithError(w, http.StatusInternalServerError, "Failed to read positions")
			return
		}
		if pos != nil {
			if pos.SharingActive {
				values[5] = "yes"
			}
			values[6] = pos.Latitude()
			values[7] = pos.Longitude()
			values[8] = pos.LastUpdatedAt.Format(time.RFC3339)
		}

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("fleet_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		log.Printf("Fleet export: write failed: %v", err)
	}
}
