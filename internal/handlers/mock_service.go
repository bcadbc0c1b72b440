package handlers

import (
	"context"
	"net/http"
	"time"

	"building_monitor/internal/models"
	"building_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockThresholds struct {
	getValue float64
	getErr   error
	setErr   error

	lastGetDevice string
	lastSetDevice string
	lastSetValue  float64
	setCalls      int
}

func (m *mockThresholds) Get(ctx context.Context, deviceID string) (float64, error) {
	m.lastGetDevice = deviceID
	return m.getValue, m.getErr
}
func (m *mockThresholds) Set(ctx context.Context, deviceID string, value float64) error {
	m.setCalls++
	m.lastSetDevice = deviceID
	m.lastSetValue = value
	return m.setErr
}
func (m *mockThresholds) Reconcile(ctx context.Context, deviceID string) (float64, error) {
	return m.getValue, m.getErr
}

type mockAlerts struct {
	addResp  models.Alert
	addErr   error
	queryRes []models.Alert
	unread   int
	critical int

	lastAddParams service.AlertParams
	lastFilter    service.AlertFilter
	readIDs       []string
	resolvedIDs   []string
	deletedIDs    []string
}

func (m *mockAlerts) Add(ctx context.Context, p service.AlertParams) (models.Alert, error) {
	m.lastAddParams = p
	return m.addResp, m.addErr
}
func (m *mockAlerts) MarkAsRead(ctx context.Context, id string) error {
	m.readIDs = append(m.readIDs, id)
	return nil
}
func (m *mockAlerts) MarkAsResolved(ctx context.Context, id string) error {
	m.resolvedIDs = append(m.resolvedIDs, id)
	return nil
}
func (m *mockAlerts) Delete(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}
func (m *mockAlerts) Query(f service.AlertFilter) []models.Alert {
	m.lastFilter = f
	return m.queryRes
}
func (m *mockAlerts) UnreadCount() int   { return m.unread }
func (m *mockAlerts) CriticalCount() int { return m.critical }

type mockNotifier struct {
	enabled  bool
	notified []string
}

func (m *mockNotifier) NotifyIfDue(ctx context.Context, deviceID string, level service.Classification, reading, limit float64, location string) bool {
	m.notified = append(m.notified, deviceID)
	return m.enabled
}
func (m *mockNotifier) Enabled() bool      { return m.enabled }
func (m *mockNotifier) SetEnabled(on bool) { m.enabled = on }

type mockLedger struct {
	appendID   string
	appendErr  error
	refreshErr error
	docs       []models.AuditDocument
	latest     *models.AuditDocument
	lastErr    string

	appendCalls  int
	refreshCalls int
}

func (m *mockLedger) Append(ctx context.Context, doc models.AuditDocument) (string, error) {
	m.appendCalls++
	return m.appendID, m.appendErr
}
func (m *mockLedger) Refresh(ctx context.Context) error {
	m.refreshCalls++
	return m.refreshErr
}
func (m *mockLedger) LatestDocument() (models.AuditDocument, bool) {
	if m.latest == nil {
		return models.AuditDocument{}, false
	}
	return *m.latest, true
}
func (m *mockLedger) Documents() []models.AuditDocument { return m.docs }
func (m *mockLedger) LastError() string                 { return m.lastErr }
func (m *mockLedger) State() string                     { return "idle" }

type mockDevices struct {
	snaps   map[string]models.DeviceSnapshot
	history []models.ReadingPoint
}

func (m *mockDevices) Upsert(snap models.DeviceSnapshot) {
	if m.snaps == nil {
		m.snaps = make(map[string]models.DeviceSnapshot)
	}
	m.snaps[snap.ID] = snap
}
func (m *mockDevices) Get(deviceID string) (models.DeviceSnapshot, bool) {
	snap, ok := m.snaps[deviceID]
	return snap, ok
}
func (m *mockDevices) List() []models.DeviceSnapshot {
	out := make([]models.DeviceSnapshot, 0, len(m.snaps))
	for _, snap := range m.snaps {
		out = append(out, snap)
	}
	return out
}
func (m *mockDevices) History(deviceID string, n int) []models.ReadingPoint { return m.history }

type mockMonitor struct {
	active     bool
	processErr error
	status     string

	processed    []models.DeviceSnapshot
	subscribed   []string
	unsubscribed []string
}

func (m *mockMonitor) Run(ctx context.Context, tick time.Duration) {}
func (m *mockMonitor) Start()                                      { m.active = true }
func (m *mockMonitor) Stop()                                       { m.active = false }
func (m *mockMonitor) Active() bool                                { return m.active }
func (m *mockMonitor) Subscribe(deviceID string)                   { m.subscribed = append(m.subscribed, deviceID) }
func (m *mockMonitor) Unsubscribe(deviceID string) {
	m.unsubscribed = append(m.unsubscribed, deviceID)
}
func (m *mockMonitor) ProcessReading(ctx context.Context, snap models.DeviceSnapshot) error {
	m.processed = append(m.processed, snap)
	return m.processErr
}
func (m *mockMonitor) Status() string { return m.status }

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
