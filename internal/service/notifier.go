package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"building_monitor/internal/logger"
	"building_monitor/internal/models"
	"building_monitor/internal/notify"
)

// NotifyCooldown is the minimum interval between repeat notifications for the
// same device, unless severity escalates in between.
const NotifyCooldown = 5 * time.Minute

const notifySendTimeout = 10 * time.Second

// NotifierService maps classifications to delivered notifications. Delivery
// is best-effort: a failing channel or a disabled flag reduces functionality
// silently and never blocks the evaluation pipeline.
type NotifierService struct {
	channel notify.Channel
	log     *logger.Logger

	mu      sync.Mutex
	enabled bool
	last    map[string]models.NotificationRecord
	now     func() time.Time
}

func NewNotifierService(channel notify.Channel, log *logger.Logger) *NotifierService {
	return &NotifierService{
		channel: channel,
		log:     log,
		enabled: channel != nil,
		last:    make(map[string]models.NotificationRecord),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Enabled reports whether notifications are currently allowed. Mirrors the
// user's permission decision; disabled is not an error condition.
func (s *NotifierService) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled && s.channel != nil
}

// SetEnabled toggles notification delivery.
func (s *NotifierService) SetEnabled(on bool) {
	s.mu.Lock()
	s.enabled = on
	s.mu.Unlock()
}

// severityRank orders alert severities for escalation checks.
func severityRank(sev models.Severity) int {
	switch sev {
	case models.SeverityCritical:
		return 2
	case models.SeverityWarning:
		return 1
	default:
		return 0
	}
}

// NotifyIfDue schedules a notification for the device unless one was sent
// within the cooldown window at the same or higher severity. Returns whether
// a notification was actually scheduled.
func (s *NotifierService) NotifyIfDue(ctx context.Context, deviceID string, level Classification, reading, limit float64, location string) bool {
	if level == ClassNominal {
		return false
	}

	sev := level.Severity()

	s.mu.Lock()
	if !s.enabled || s.channel == nil {
		s.mu.Unlock()
		return false
	}
	now := s.now()
	if rec, ok := s.last[deviceID]; ok {
		withinCooldown := now.Sub(rec.ScheduledAt) < NotifyCooldown
		escalated := severityRank(sev) > severityRank(rec.Severity)
		if withinCooldown && !escalated {
			s.mu.Unlock()
			return false
		}
	}
	channel := s.channel
	s.mu.Unlock()

	n := buildNotification(deviceID, sev, reading, limit, location)

	sendCtx, cancel := context.WithTimeout(ctx, notifySendTimeout)
	defer cancel()
	if err := channel.Send(sendCtx, n); err != nil {
		if s.log != nil {
			s.log.Warnw("notification_send_failed", "device_id", deviceID, "err", err)
		}
		return false
	}

	s.mu.Lock()
	s.last[deviceID] = models.NotificationRecord{
		DeviceID:    deviceID,
		Severity:    sev,
		ScheduledAt: now,
	}
	s.mu.Unlock()
	return true
}

// Records returns the current cooldown bookkeeping, for diagnostics.
func (s *NotifierService) Records() []models.NotificationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.NotificationRecord, 0, len(s.last))
	for _, rec := range s.last {
		out = append(out, rec)
	}
	return out
}

func buildNotification(deviceID string, sev models.Severity, reading, limit float64, location string) notify.Notification {
	title := "Temperature above limit"
	priority := notify.PriorityDefault
	if sev == models.SeverityCritical {
		title = "Critical temperature"
		priority = notify.PriorityHigh // critical bypasses quiet-hours suppression
	}
	where := location
	if where == "" {
		where = deviceID
	}
	return notify.Notification{
		Title:    title,
		Body:     fmt.Sprintf("%s reports %.1f, limit %.1f", where, reading, limit),
		Severity: string(sev),
		DeviceID: deviceID,
		Priority: priority,
	}
}
