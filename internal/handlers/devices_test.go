package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"building_monitor/internal/models"
	"building_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// fullMockService wires every sub-service mock into one Service.
func fullMockService() (*service.Service, *mockThresholds, *mockAlerts, *mockNotifier, *mockLedger, *mockDevices, *mockMonitor) {
	thresholds := &mockThresholds{}
	alerts := &mockAlerts{}
	notifier := &mockNotifier{enabled: true}
	ledger := &mockLedger{}
	devices := &mockDevices{}
	monitor := &mockMonitor{}
	s := &service.Service{
		Thresholds:    thresholds,
		Alerts:        alerts,
		Notifier:      notifier,
		Ledger:        ledger,
		Devices:       devices,
		Monitor:       monitor,
		Authorization: &mockAuth{parseID: 1},
	}
	return s, thresholds, alerts, notifier, ledger, devices, monitor
}

// doJSON performs an authenticated request against the full router.
func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s, _, _, _, _, _, _ := fullMockService()
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var out struct {
		Status string `json:"status"`
	}
	decodeBody(t, w, &out)
	if out.Status != statusOK {
		t.Fatalf("body: %s", w.Body.String())
	}
}

func TestIngestReading_Accepted(t *testing.T) {
	s, _, _, _, _, _, monitor := fullMockService()
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/devices/reading", gin.H{
		"id":    "sensor-1",
		"kind":  "temperature",
		"value": 45.0,
	})

	if w.Code != http.StatusAccepted {
		t.Fatalf("status: %d body: %s", w.Code, w.Body.String())
	}
	if len(monitor.processed) != 1 {
		t.Fatalf("want 1 processed snapshot, got %d", len(monitor.processed))
	}
	snap := monitor.processed[0]
	if snap.ID != "sensor-1" || snap.Kind != models.KindTemperature || snap.Value != 45 {
		t.Fatalf("snapshot: %+v", snap)
	}
	// omitted status defaults to online
	if snap.Status != models.StatusOnline {
		t.Fatalf("status default: %s", snap.Status)
	}
	if snap.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt must be stamped")
	}
}

func TestIngestReading_MissingFields(t *testing.T) {
	s, _, _, _, _, _, monitor := fullMockService()
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/devices/reading", gin.H{"value": 45.0})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", w.Code)
	}
	if len(monitor.processed) != 0 {
		t.Fatalf("invalid body must not reach the monitor")
	}
}

func TestIngestReading_ProcessFailure(t *testing.T) {
	s, _, _, _, _, _, monitor := fullMockService()
	monitor.processErr = errors.New("reconcile failed")
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/devices/reading", gin.H{
		"id":    "sensor-1",
		"kind":  "temperature",
		"value": 45.0,
	})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: %d", w.Code)
	}
	var out struct {
		Error string `json:"error"`
	}
	decodeBody(t, w, &out)
	if out.Error != errProcessReading {
		t.Fatalf("error message: %q", out.Error)
	}
}

func TestListDevices(t *testing.T) {
	s, _, _, _, _, devices, _ := fullMockService()
	devices.Upsert(models.DeviceSnapshot{ID: "sensor-1", Value: 21})
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/v1/devices", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var out struct {
		Count   int                     `json:"count"`
		Devices []models.DeviceSnapshot `json:"devices"`
	}
	decodeBody(t, w, &out)
	if out.Count != 1 || len(out.Devices) != 1 || out.Devices[0].ID != "sensor-1" {
		t.Fatalf("body: %s", w.Body.String())
	}
}

func TestGetDevice_NotFound(t *testing.T) {
	s, _, _, _, _, _, _ := fullMockService()
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/v1/devices/unknown", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestGetHistory_LimitQuery(t *testing.T) {
	s, _, _, _, _, devices, _ := fullMockService()
	devices.history = []models.ReadingPoint{{Value: 1}, {Value: 2}}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/v1/devices/sensor-1/history?limit=2", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var out struct {
		Count  int                   `json:"count"`
		Points []models.ReadingPoint `json:"points"`
	}
	decodeBody(t, w, &out)
	if out.Count != 2 || len(out.Points) != 2 {
		t.Fatalf("body: %s", w.Body.String())
	}
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	s, _, _, _, _, _, _ := fullMockService()
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated request: %d", w.Code)
	}
}
