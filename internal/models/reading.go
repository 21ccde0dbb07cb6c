package models

import "time"

type VitalKind string

const (
	VitalHeartRate        VitalKind = "heart-rate"
	VitalBloodPressure    VitalKind = "blood-pressure"
	VitalOxygenSaturation VitalKind = "oxygen-saturation"
	VitalTemperature      VitalKind = "temperature"
	VitalGlucose          VitalKind = "glucose"
	VitalWeight           VitalKind = "weight"
)

// Severity classifies a reading. Ordering matters: Normal < Abnormal < Critical.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityAbnormal
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityAbnormal:
		return "Abnormal"
	case SeverityCritical:
		return "Critical"
	default:
		return "Normal"
	}
}

type Reading struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	DataType  VitalKind `json:"data_type"`
	Value     string    `json:"value"` // blood-pressure is a "systolic/diastolic" pair
	Unit      string    `json:"unit"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
