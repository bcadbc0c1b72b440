package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"building_monitor/internal/logger"
	"building_monitor/internal/models"
)

const (
	// RefreshDebounce caps ledger refreshes triggered by the poll loop so a
	// burst of triggers does not become a refresh storm.
	RefreshDebounce = 2 * time.Second

	// appendTimeout bounds a detached audit append after monitoring stops.
	appendTimeout = 30 * time.Second

	auditClearance = 1
)

// MonitorService drives the evaluation pipeline: it polls subscribed devices
// on a fixed period while active and pushes every incoming reading through
// reconcile -> classify -> alert -> notify -> audit append. Constructed once
// at process start; nothing here is reachable through ambient singletons.
type MonitorService struct {
	thresholds Thresholds
	alerts     Alerts
	notifier   Notifier
	ledger     Ledger
	devices    Devices
	log        *logger.Logger

	mu          sync.Mutex
	active      bool
	subs        map[string]bool
	lastRefresh time.Time
	locks       map[string]*sync.Mutex

	appends sync.WaitGroup
}

func NewMonitorService(thresholds Thresholds, alerts Alerts, notifier Notifier, ledger Ledger, devices Devices, log *logger.Logger) *MonitorService {
	return &MonitorService{
		thresholds: thresholds,
		alerts:     alerts,
		notifier:   notifier,
		ledger:     ledger,
		devices:    devices,
		log:        log,
		subs:       make(map[string]bool),
		locks:      make(map[string]*sync.Mutex),
	}
}

// Start enables the polling loop. Idempotent.
func (s *MonitorService) Start() {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
}

// Stop disables scheduling of new polls. In-flight audit appends keep
// running: durability of the audit trail outlives the monitoring lifecycle.
func (s *MonitorService) Stop() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// Active reports whether monitoring is currently running.
func (s *MonitorService) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Subscribe adds a device to the polling set.
func (s *MonitorService) Subscribe(deviceID string) {
	s.mu.Lock()
	s.subs[deviceID] = true
	s.mu.Unlock()
}

// Unsubscribe stops polling a device. It does not cancel in-flight work.
func (s *MonitorService) Unsubscribe(deviceID string) {
	s.mu.Lock()
	delete(s.subs, deviceID)
	s.mu.Unlock()
}

// Run ticks at the given interval until ctx is canceled. Each tick refreshes
// the ledger (debounced) and re-evaluates the latest snapshot of every
// subscribed device. Errors for one device never stop the others.
func (s *MonitorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.appends.Wait()
			return
		case <-t.C:
			if !s.Active() {
				continue
			}

			s.refreshDebounced(ctx)

			for _, id := range s.subscribed() {
				snap, ok := s.devices.Get(id)
				if !ok {
					continue
				}
				if err := s.ProcessReading(ctx, snap); err != nil && s.log != nil {
					s.log.Errorw("monitor_process_failed", "device_id", id, "err", err)
				}
			}
		}
	}
}

func (s *MonitorService) subscribed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.subs))
	for id := range s.subs {
		out = append(out, id)
	}
	return out
}

// refreshDebounced kicks a background ledger refresh at most once per
// RefreshDebounce window. The network call runs off the evaluation loop.
func (s *MonitorService) refreshDebounced(ctx context.Context) {
	s.mu.Lock()
	now := time.Now()
	if now.Sub(s.lastRefresh) < RefreshDebounce {
		s.mu.Unlock()
		return
	}
	s.lastRefresh = now
	s.mu.Unlock()

	go func() {
		// refresh failures surface through the ledger's stale indicator
		_ = s.ledger.Refresh(ctx)
	}()
}

// lockFor serializes evaluation per device so results apply in
// reading-arrival order. Devices are independent of each other.
func (s *MonitorService) lockFor(deviceID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[deviceID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[deviceID] = l
	}
	return l
}

// ProcessReading runs one snapshot through the pipeline. The alert is
// committed locally before the audit append is issued, so a ledger failure
// can never lose the in-app alert.
func (s *MonitorService) ProcessReading(ctx context.Context, snap models.DeviceSnapshot) error {
	l := s.lockFor(snap.ID)
	l.Lock()
	defer l.Unlock()

	s.devices.Upsert(snap)

	if !Evaluable(snap.Kind) {
		return nil
	}

	limit, err := s.thresholds.Reconcile(ctx, snap.ID)
	if err != nil {
		return fmt.Errorf("reconcile limit for %s: %w", snap.ID, err)
	}

	level := Classify(snap.Value, limit)
	if level == ClassNominal {
		return nil
	}

	alert, err := s.alerts.Add(ctx, AlertParams{
		Title:    alertTitle(level, snap),
		Message:  fmt.Sprintf("Reading %.1f exceeded limit %.1f", snap.Value, limit),
		Severity: level.Severity(),
		Category: models.CategoryHVAC,
		DeviceID: snap.ID,
	})
	if err != nil {
		return fmt.Errorf("record alert for %s: %w", snap.ID, err)
	}

	s.notifier.NotifyIfDue(ctx, snap.ID, level, snap.Value, limit, snap.Location)

	s.appendAudit(snap, limit, level, alert.ID)
	return nil
}

func alertTitle(level Classification, snap models.DeviceSnapshot) string {
	where := snap.Location
	if where == "" {
		where = snap.ID
	}
	if level == ClassCritical {
		return "Critical threshold exceeded at " + where
	}
	return "Threshold exceeded at " + where
}

// appendAudit records the event in the external ledger on a detached context:
// audit durability takes precedence over the caller's lifecycle, and an
// append failure is logged, never propagated.
func (s *MonitorService) appendAudit(snap models.DeviceSnapshot, limit float64, level Classification, alertID string) {
	payload, err := json.Marshal(map[string]any{
		"reading":  snap.Value,
		"limit":    limit,
		"severity": level.String(),
		"alert_id": alertID,
		"status":   string(snap.Status),
	})
	if err != nil {
		if s.log != nil {
			s.log.Errorw("audit_payload_marshal_failed", "device_id", snap.ID, "err", err)
		}
		return
	}

	doc := models.AuditDocument{
		CoreID:    snap.ID,
		Name:      fmt.Sprintf("%s alert for %s", level, snap.ID),
		Payload:   string(payload),
		Clearance: auditClearance,
	}

	s.appends.Add(1)
	go func() {
		defer s.appends.Done()
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		defer cancel()
		if _, err := s.ledger.Append(ctx, doc); err != nil && s.log != nil {
			s.log.Errorw("audit_append_failed", "device_id", snap.ID, "err", err)
		}
	}()
}

// Status returns a human-readable diagnostics line for support tooling.
func (s *MonitorService) Status() string {
	s.mu.Lock()
	active := s.active
	subs := len(s.subs)
	s.mu.Unlock()

	staleness := "fresh"
	if s.ledger.LastError() != "" {
		staleness = "stale: " + s.ledger.LastError()
	}

	return fmt.Sprintf("monitoring=%t devices=%d alerts_unread=%d ledger=%s ledger_state=%s notifications=%t",
		active, subs, s.alerts.UnreadCount(), staleness, s.ledger.State(), s.notifier.Enabled())
}
