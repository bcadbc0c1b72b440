package repository

import (
	"context"
	"database/sql"

	"building_monitor/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// LimitRepo persists per-device thresholds in two tables: the authoritative
// copy and a local backup used to recover from silent resets.
type LimitRepo interface {
	SaveAuthoritative(ctx context.Context, l models.TemperatureLimit) error
	SaveBackup(ctx context.Context, l models.TemperatureLimit) error
	LoadAuthoritative(ctx context.Context, deviceID string) (models.TemperatureLimit, error)
	LoadBackup(ctx context.Context, deviceID string) (models.TemperatureLimit, error)
}

// AlertRepo persists the local alert collection.
type AlertRepo interface {
	Insert(ctx context.Context, a models.Alert) error
	Update(ctx context.Context, a models.Alert) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]models.Alert, error)
}

type Repository struct {
	LimitRepo LimitRepo
	AlertRepo AlertRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		LimitRepo: NewLimitSQLite(db),
		AlertRepo: NewAlertSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
