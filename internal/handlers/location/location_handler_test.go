package location_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	locationHandlers "github.com/wasteline/fleet_backendl/internal/handlers/location"
	"github.com/wasteline/fleet_backendl/internal/metrics"
	"github.com/wasteline/fleet_backendl/internal/middleware"
	"github.com/wasteline/fleet_backendl/internal/models"
	locationService "github.com/wasteline/fleet_backendl/internal/services/location"
)

type fakeStore struct {
	mu      sync.Mutex
	records map[string]*models.DriverPosition
	fail    bool
}

func (f *fakeStore) SavePosition(_ context.Context, pos *models.DriverPosition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("connection refused")
	}
	clone := *pos
	f.records[pos.DriverID] = &clone
	return nil
}

func (f *fakeStore) GetPosition(_ context.Context, driverID string) (*models.DriverPosition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("connection refused")
	}
	pos, ok := f.records[driverID]
	if !ok {
		return nil, locationService.ErrPositionNotFound
	}
	clone := *pos
	return &clone, nil
}

func (f *fakeStore) GetAllPositions(_ context.Context) ([]*models.DriverPosition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("connection refused")
	}
	out := make([]*models.DriverPosition, 0, len(f.records))
	for _, pos := range f.records {
		clone := *pos
		out = append(out, &clone)
	}
	return out, nil
}

type fakeProfiles map[string]*models.Driver

func (f fakeProfiles) GetByID(_ context.Context, id string) (*models.Driver, error) {
	d, ok := f[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return d, nil
}

type testEnv struct {
	router *chi.Mux
	auth   *jwtauth.JWTAuth
	store  *fakeStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := &fakeStore{records: make(map[string]*models.DriverPosition)}
	profiles := fakeProfiles{
		"drv-a": {ID: "drv-a", Name: "Ram Thapa", VehicleNumber: "BA 2 KHA 1234"},
		"drv-b": {ID: "drv-b", Name: "Sita Rai", VehicleNumber: "BA 2 KHA 5678"},
	}
	svc := locationService.NewService(store, profiles, 0, metrics.New(prometheus.NewRegistry()))
	handler := locationHandlers.NewHandler(svc)

	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)

	router := chi.NewRouter()
	router.Use(jwtauth.Verifier(tokenAuth))
	router.Use(middleware.AddIdentityToContext())

	router.Get("/api/location/latest", handler.GetLatest)
	router.Get("/api/location/shared", handler.GetAllShared)
	router.Get("/api/location/{driverID}", handler.GetDriverLocation)
	router.Group(func(r chi.Router) {
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(middleware.DriverOnly())
		r.Post("/api/location/share", handler.ShareLocation)
	})

	return &testEnv{router: router, auth: tokenAuth, store: store}
}

func (e *testEnv) token(t *testing.T, driverID, role string) string {
	t.Helper()
	_, tokenString, err := e.auth.Encode(map[string]interface{}{
		"driver_id": driverID,
		"role":      role,
	})
	require.NoError(t, err)
	return tokenString
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body=%s", rr.Body.String())
	return out
}

func TestShareThenRead(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "drv-a", "driver")

	rr := env.do(t, http.MethodPost, "/api/location/share", token, `{"latitude":27.7,"longitude":85.3}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	share := decodeJSON[models.ShareResponse](t, rr)
	assert.True(t, share.Success)
	assert.True(t, share.Sharing, "sharing defaults to true")
	assert.Equal(t, "drv-a", share.DriverID)
	assert.Equal(t, 27.7, share.Location.Latitude)
	assert.Equal(t, 85.3, share.Location.Longitude)
	assert.False(t, share.UpdatedAt.IsZero())

	rr = env.do(t, http.MethodGet, "/api/location/drv-a", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	read := decodeJSON[models.DriverLocationResponse](t, rr)
	assert.True(t, read.Sharing)
	require.NotNil(t, read.Location)
	assert.Equal(t, 27.7, read.Location.Latitude)
}

func TestShareRequiresDriverToken(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/location/share", "", `{"latitude":27.7,"longitude":85.3}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/location/share", env.token(t, "adm-1", "admin"), `{"latitude":27.7,"longitude":85.3}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestShareIgnoresPayloadDriverID(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "drv-b", "driver")

	// A caller authenticated as drv-b cannot write drv-a's record, whatever
	// the payload claims.
	rr := env.do(t, http.MethodPost, "/api/location/share", token,
		`{"driverId":"drv-a","driver_id":"drv-a","latitude":27.7,"longitude":85.3}`)
	require.Equal(t, http.StatusOK, rr.Code)

	env.store.mu.Lock()
	defer env.store.mu.Unlock()
	assert.Contains(t, env.store.records, "drv-b")
	assert.NotContains(t, env.store.records, "drv-a")
}

func TestShareValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "drv-a", "driver")

	tests := []struct {
		name string
		body string
	}{
		{"missing latitude", `{"longitude":85.3}`},
		{"missing longitude", `{"latitude":27.7}`},
		{"empty body", `{}`},
		{"null latitude", `{"latitude":null,"longitude":85.3}`},
		{"string latitude", `{"latitude":"27.7","longitude":85.3}`},
		{"latitude out of range", `{"latitude":91,"longitude":85.3}`},
		{"longitude out of range", `{"latitude":45,"longitude":200}`},
		{"malformed json", `{bad`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/location/share", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestShareUnknownDriverProfile(t *testing.T) {
	env := newTestEnv(t)
	// Valid driver token, but the profile row is gone.
	token := env.token(t, "drv-deleted", "driver")

	rr := env.do(t, http.MethodPost, "/api/location/share", token, `{"latitude":27.7,"longitude":85.3}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	envlp := decodeJSON[map[string]string](t, rr)
	assert.Equal(t, "Driver not found", envlp["message"])
}

func TestGetDriverNotSharingOmitsLocation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "drv-a", "driver")

	env.do(t, http.MethodPost, "/api/location/share", token, `{"latitude":27.7,"longitude":85.3,"sharing":true}`)
	env.do(t, http.MethodPost, "/api/location/share", token, `{"latitude":27.7,"longitude":85.3,"sharing":false}`)

	rr := env.do(t, http.MethodGet, "/api/location/drv-a", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	raw := decodeJSON[map[string]interface{}](t, rr)
	assert.Equal(t, false, raw["sharing"])
	assert.NotContains(t, raw, "location")
	assert.NotContains(t, raw, "updatedAt")
}

func TestGetDriverNotFound(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/location/drv-x", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	envlp := decodeJSON[map[string]string](t, rr)
	assert.Equal(t, "Driver not found", envlp["message"])
}

func TestFleetAndLatest(t *testing.T) {
	env := newTestEnv(t)

	now := time.Now().UTC()
	env.store.records["drv-a"] = &models.DriverPosition{
		DriverID: "drv-a", Name: "Ram Thapa", VehicleNumber: "BA 2 KHA 1234",
		Coordinates: [2]float64{85.3, 27.7}, SharingActive: true,
		LastUpdatedAt: now.Add(-time.Minute),
	}
	env.store.records["drv-b"] = &models.DriverPosition{
		DriverID: "drv-b", Name: "Sita Rai", VehicleNumber: "BA 2 KHA 5678",
		Coordinates: [2]float64{85.4, 27.8}, SharingActive: true,
		LastUpdatedAt: now,
	}
	// Sharing but never positioned: never shown on the map.
	env.store.records["drv-c"] = &models.DriverPosition{
		DriverID: "drv-c", SharingActive: true,
		Coordinates: [2]float64{0, 0}, LastUpdatedAt: now,
	}

	rr := env.do(t, http.MethodGet, "/api/location/shared", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	fleet := decodeJSON[models.FleetResponse](t, rr)
	assert.True(t, fleet.Sharing)
	require.Len(t, fleet.Drivers, 2)
	assert.Equal(t, "drv-b", fleet.Drivers[0].DriverID)
	assert.Equal(t, "drv-a", fleet.Drivers[1].DriverID)

	rr = env.do(t, http.MethodGet, "/api/location/latest", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	latest := decodeJSON[models.LatestSharedResponse](t, rr)
	assert.True(t, latest.Sharing)
	assert.Equal(t, "drv-b", latest.DriverID)
}

func TestFleetEmpty(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/location/shared", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	fleet := decodeJSON[models.FleetResponse](t, rr)
	assert.False(t, fleet.Sharing)
	assert.Empty(t, fleet.Drivers)

	rr = env.do(t, http.MethodGet, "/api/location/latest", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	latest := decodeJSON[models.LatestSharedResponse](t, rr)
	assert.False(t, latest.Sharing)
}

func TestStorageFailureMapsTo500(t *testing.T) {
	env := newTestEnv(t)
	env.store.fail = true

	rr := env.do(t, http.MethodGet, "/api/location/shared", "", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	envlp := decodeJSON[map[string]string](t, rr)
	assert.Equal(t, "Failed to fetch locations", envlp["message"])

	rr = env.do(t, http.MethodPost, "/api/location/share", env.token(t, "drv-a", "driver"), `{"latitude":27.7,"longitude":85.3}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
