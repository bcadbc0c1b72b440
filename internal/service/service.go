package service

import (
	"context"
	"time"

	"building_monitor/internal/logger"
	"building_monitor/internal/models"
	"building_monitor/internal/notify"
	"building_monitor/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Thresholds exposes the per-device alerting limit with dual-store
// reconciliation. All mutation goes through Set/Reconcile, never direct writes.
type Thresholds interface {
	Get(ctx context.Context, deviceID string) (float64, error)
	Set(ctx context.Context, deviceID string, value float64) error
	Reconcile(ctx context.Context, deviceID string) (float64, error)
}

// Alerts is the in-memory, persisted alert collection.
type Alerts interface {
	Add(ctx context.Context, p AlertParams) (models.Alert, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAsResolved(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Query(f AlertFilter) []models.Alert
	UnreadCount() int
	CriticalCount() int
}

// Notifier schedules user notifications with a per-device cooldown.
type Notifier interface {
	NotifyIfDue(ctx context.Context, deviceID string, level Classification, reading, limit float64, location string) bool
	Enabled() bool
	SetEnabled(on bool)
}

// Ledger is the append/read client for the external audit document store.
type Ledger interface {
	Append(ctx context.Context, doc models.AuditDocument) (string, error)
	Refresh(ctx context.Context) error
	LatestDocument() (models.AuditDocument, bool)
	Documents() []models.AuditDocument
	LastError() string
	State() string
}

// Devices is the in-memory registry of last known device snapshots.
type Devices interface {
	Upsert(snap models.DeviceSnapshot)
	Get(deviceID string) (models.DeviceSnapshot, bool)
	List() []models.DeviceSnapshot
	History(deviceID string, n int) []models.ReadingPoint
}

// Monitor is the background coordinator driving the evaluation pipeline.
// Start/Stop control the lifecycle; Run blocks until ctx is canceled.
type Monitor interface {
	Run(ctx context.Context, tick time.Duration)
	Start()
	Stop()
	Active() bool
	Subscribe(deviceID string)
	Unsubscribe(deviceID string)
	ProcessReading(ctx context.Context, snap models.DeviceSnapshot) error
	Status() string
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Thresholds
	Alerts
	Notifier
	Ledger
	Devices
	Monitor
	Authorization
}

// NewService wires the repository layer, the ledger client and the
// notification channel into concrete services.
func NewService(repos *repository.Repository, ledger Ledger, channel notify.Channel, log *logger.Logger) *Service {
	thresholds := NewThresholdService(repos.LimitRepo, log)
	alerts := NewAlertService(repos.AlertRepo, log)
	notifier := NewNotifierService(channel, log)
	devices := NewDeviceService()

	return &Service{
		Thresholds:    thresholds,
		Alerts:        alerts,
		Notifier:      notifier,
		Ledger:        ledger,
		Devices:       devices,
		Monitor:       NewMonitorService(thresholds, alerts, notifier, ledger, devices, log),
		Authorization: NewAuthService(repos.Auth),
	}
}
