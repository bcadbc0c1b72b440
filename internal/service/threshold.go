package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"building_monitor/internal/logger"
	"building_monitor/internal/models"
	"building_monitor/internal/repository"
)

// ----------- Threshold constants -----------
const (
	DefaultLimitC = 40.0  // system default written on first device view
	MinLimitC     = 1.0   // inclusive lower bound
	MaxLimitC     = 100.0 // inclusive upper bound
)

// ErrLimitOutOfRange rejects limit values outside [MinLimitC, MaxLimitC].
// Out-of-range values are never silently clamped.
var ErrLimitOutOfRange = errors.New("limit out of range: must be within [1, 100]")

// ThresholdService keeps the authoritative limit and its local backup in
// step. The authoritative copy is the single shared mutable resource of the
// pipeline; mutation happens only here, serialized per device.
type ThresholdService struct {
	limitRepo repository.LimitRepo
	log       *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewThresholdService(limitRepo repository.LimitRepo, log *logger.Logger) *ThresholdService {
	return &ThresholdService{
		limitRepo: limitRepo,
		log:       log,
		locks:     make(map[string]*sync.Mutex),
	}
}

// lockFor returns the per-device mutex, creating it on first use.
// Single-writer-per-key: a user Set and a reading-triggered Reconcile for the
// same device can never interleave.
func (s *ThresholdService) lockFor(deviceID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[deviceID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[deviceID] = l
	}
	return l
}

// Get returns the effective limit for a device, self-healing the
// authoritative store on the way: if the authoritative value has reverted to
// the system default while a different backup exists, the backup wins and is
// written back. A device seen for the first time gets the default persisted
// to both stores.
func (s *ThresholdService) Get(ctx context.Context, deviceID string) (float64, error) {
	l := s.lockFor(deviceID)
	l.Lock()
	defer l.Unlock()
	return s.effectiveLimit(ctx, deviceID)
}

// Set validates and writes the limit to both stores.
func (s *ThresholdService) Set(ctx context.Context, deviceID string, value float64) error {
	if value < MinLimitC || value > MaxLimitC {
		return ErrLimitOutOfRange
	}

	l := s.lockFor(deviceID)
	l.Lock()
	defer l.Unlock()

	return s.writeBoth(ctx, deviceID, value)
}

// Reconcile re-checks both stores for a device; it runs on every incoming
// reading. Divergence with a defaulted authoritative value is repaired from
// the backup and logged as a warning, since concurrent writers make it an
// expected condition. Idempotent: a healed pair reconciles to itself.
func (s *ThresholdService) Reconcile(ctx context.Context, deviceID string) (float64, error) {
	l := s.lockFor(deviceID)
	l.Lock()
	defer l.Unlock()
	return s.effectiveLimit(ctx, deviceID)
}

// effectiveLimit implements the shared read/repair path. Callers must hold
// the device lock.
func (s *ThresholdService) effectiveLimit(ctx context.Context, deviceID string) (float64, error) {
	auth, err := s.limitRepo.LoadAuthoritative(ctx, deviceID)
	if err != nil {
		return 0, err
	}

	// First sight of this device: persist the default to both stores.
	if auth.DeviceID == "" {
		if err := s.writeBoth(ctx, deviceID, DefaultLimitC); err != nil {
			return 0, err
		}
		return DefaultLimitC, nil
	}

	if auth.Value != DefaultLimitC {
		return auth.Value, nil
	}

	// Authoritative equals the default: could be a silent external reset.
	backup, err := s.limitRepo.LoadBackup(ctx, deviceID)
	if err != nil {
		return 0, err
	}
	if backup.DeviceID == "" || backup.Value == DefaultLimitC {
		return auth.Value, nil
	}

	// Backup wins; re-propagate it to the authoritative store.
	if s.log != nil {
		s.log.Warnw("threshold_self_heal",
			"device_id", deviceID,
			"authoritative", auth.Value,
			"backup", backup.Value,
		)
	}
	if err := s.writeBoth(ctx, deviceID, backup.Value); err != nil {
		return 0, err
	}
	return backup.Value, nil
}

func (s *ThresholdService) writeBoth(ctx context.Context, deviceID string, value float64) error {
	now := time.Now().UTC()
	if err := s.limitRepo.SaveAuthoritative(ctx, models.TemperatureLimit{
		DeviceID:      deviceID,
		Value:         value,
		Provenance:    models.ProvenanceAuthoritative,
		LastWrittenAt: now,
	}); err != nil {
		return err
	}
	return s.limitRepo.SaveBackup(ctx, models.TemperatureLimit{
		DeviceID:      deviceID,
		Value:         value,
		Provenance:    models.ProvenanceLocalBackup,
		LastWrittenAt: now,
	})
}
