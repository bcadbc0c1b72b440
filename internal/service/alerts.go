package service

import (
	"context"
	"sync"
	"time"

	"building_monitor/internal/logger"
	"building_monitor/internal/models"
	"building_monitor/internal/repository"

	"github.com/google/uuid"
)

// AlertService keeps the alert collection in memory, most recent first, and
// mirrors every change into the repository. Persistence failures are logged
// and swallowed: the in-memory copy is the source of truth for the session.
type AlertService struct {
	alertRepo repository.AlertRepo
	log       *logger.Logger

	mu     sync.RWMutex
	alerts []models.Alert
}

func NewAlertService(alertRepo repository.AlertRepo, log *logger.Logger) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
		log:       log,
		alerts:    make([]models.Alert, 0, 64),
	}
}

// Load hydrates the in-memory collection from the repository. Call once at
// startup before the monitor runs.
func (s *AlertService) Load(ctx context.Context) error {
	stored, err := s.alertRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.alerts = stored
	s.mu.Unlock()
	return nil
}

// Add creates a new unread, unresolved alert with a fresh id and returns it.
func (s *AlertService) Add(ctx context.Context, p AlertParams) (models.Alert, error) {
	a := models.Alert{
		ID:         uuid.NewString(),
		Title:      p.Title,
		Message:    p.Message,
		Severity:   p.Severity,
		Category:   p.Category,
		Timestamp:  time.Now().UTC(),
		DeviceID:   p.DeviceID,
		ZoneID:     p.ZoneID,
		IsRead:     false,
		IsResolved: false,
	}

	s.mu.Lock()
	s.alerts = append([]models.Alert{a}, s.alerts...)
	s.mu.Unlock()

	if err := s.alertRepo.Insert(ctx, a); err != nil && s.log != nil {
		s.log.Warnw("alert_persist_failed", "alert_id", a.ID, "err", err)
	}
	return a, nil
}

// MarkAsRead flips the read flag. Unknown ids and repeat calls are no-ops so
// races with concurrent deletion stay harmless.
func (s *AlertService) MarkAsRead(ctx context.Context, id string) error {
	return s.mutate(ctx, id, func(a *models.Alert) bool {
		if a.IsRead {
			return false
		}
		a.IsRead = true
		return true
	})
}

// MarkAsResolved flips the resolved flag, one-way and idempotent.
func (s *AlertService) MarkAsResolved(ctx context.Context, id string) error {
	return s.mutate(ctx, id, func(a *models.Alert) bool {
		if a.IsResolved {
			return false
		}
		a.IsResolved = true
		return true
	})
}

// mutate applies fn to the alert with the given id and persists when fn
// reports a change. Missing id is a no-op, not an error.
func (s *AlertService) mutate(ctx context.Context, id string, fn func(*models.Alert) bool) error {
	s.mu.Lock()
	var changed *models.Alert
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			if fn(&s.alerts[i]) {
				cp := s.alerts[i]
				changed = &cp
			}
			break
		}
	}
	s.mu.Unlock()

	if changed != nil {
		if err := s.alertRepo.Update(ctx, *changed); err != nil && s.log != nil {
			s.log.Warnw("alert_update_persist_failed", "alert_id", id, "err", err)
		}
	}
	return nil
}

// Delete removes the alert. Deleting an unknown id is a no-op.
func (s *AlertService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	found := false
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		if err := s.alertRepo.Delete(ctx, id); err != nil && s.log != nil {
			s.log.Warnw("alert_delete_persist_failed", "alert_id", id, "err", err)
		}
	}
	return nil
}

// Query returns matching alerts, most recent first.
func (s *AlertService) Query(f AlertFilter) []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if f.Severity != "" && a.Severity != f.Severity {
			continue
		}
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.DeviceID != "" && a.DeviceID != f.DeviceID {
			continue
		}
		out = append(out, a)
	}
	return out
}

// UnreadCount is derived on demand so it can never drift from the collection.
func (s *AlertService) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.alerts {
		if !a.IsRead {
			n++
		}
	}
	return n
}

// CriticalCount counts unresolved critical alerts.
func (s *AlertService) CriticalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.alerts {
		if a.Severity == models.SeverityCritical && !a.IsResolved {
			n++
		}
	}
	return n
}
