package service

import (
	"sort"
	"sync"

	"building_monitor/internal/models"
)

// historyCapacity bounds the per-device reading buffer kept for chart reloads.
const historyCapacity = 100

// DeviceService is the in-memory registry of last known device snapshots plus
// a bounded recent-readings buffer per device.
type DeviceService struct {
	mu        sync.RWMutex
	snapshots map[string]models.DeviceSnapshot
	history   map[string][]models.ReadingPoint
}

func NewDeviceService() *DeviceService {
	return &DeviceService{
		snapshots: make(map[string]models.DeviceSnapshot),
		history:   make(map[string][]models.ReadingPoint),
	}
}

// Upsert records the latest snapshot and appends to the device's history,
// evicting the oldest point once the buffer is full.
func (s *DeviceService) Upsert(snap models.DeviceSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snap.ID] = snap

	buf := s.history[snap.ID]
	if len(buf) >= historyCapacity {
		buf = buf[1:]
	}
	s.history[snap.ID] = append(buf, models.ReadingPoint{Value: snap.Value, At: snap.UpdatedAt})
}

// Get returns the last known snapshot for a device.
func (s *DeviceService) Get(deviceID string) (models.DeviceSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[deviceID]
	return snap, ok
}

// List returns all known snapshots ordered by device id.
func (s *DeviceService) List() []models.DeviceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DeviceSnapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// History returns up to n most recent readings for a device, oldest first.
// n <= 0 means the whole buffer. The result is a copy.
func (s *DeviceService) History(deviceID string, n int) []models.ReadingPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.history[deviceID]
	if n <= 0 || n > len(buf) {
		n = len(buf)
	}
	out := make([]models.ReadingPoint, n)
	copy(out, buf[len(buf)-n:])
	return out
}
