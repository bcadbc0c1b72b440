package service

import "building_monitor/internal/models"

// CriticalOffsetC is how far above the limit a reading must be to count as
// critical rather than a plain violation, in the domain unit.
const CriticalOffsetC = 10.0

// Classification is the result of evaluating a reading against a limit.
// Values are ordered: higher means worse.
type Classification int

const (
	ClassNominal Classification = iota
	ClassWarning
	ClassCritical
)

func (c Classification) String() string {
	switch c {
	case ClassWarning:
		return "warning"
	case ClassCritical:
		return "critical"
	default:
		return "nominal"
	}
}

// Severity maps a classification onto the alert severity shown to users.
func (c Classification) Severity() models.Severity {
	switch c {
	case ClassWarning:
		return models.SeverityWarning
	case ClassCritical:
		return models.SeverityCritical
	default:
		return models.SeverityInfo
	}
}

// Classify compares a live reading to a limit. Pure and deterministic:
// nominal at or below the limit, warning up to limit+CriticalOffsetC,
// critical beyond that.
func Classify(reading, limit float64) Classification {
	switch {
	case reading <= limit:
		return ClassNominal
	case reading <= limit+CriticalOffsetC:
		return ClassWarning
	default:
		return ClassCritical
	}
}

// Evaluable reports whether a sensor kind defines a meaningful numeric
// threshold. Other kinds bypass evaluation entirely.
func Evaluable(kind models.SensorKind) bool {
	switch kind {
	case models.KindTemperature, models.KindWaterLevel:
		return true
	default:
		return false
	}
}
