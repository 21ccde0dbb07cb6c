package models

import (
	"strconv"
	"time"
)

// SyntheticVitals is one fabricated telemetry sample. It carries no subject:
// the generator does not know which user is "real", so subject assignment
// happens downstream when a breach turns into an alert.
type SyntheticVitals struct {
	HeartRate        int       `json:"heart_rate"`
	Systolic         int       `json:"systolic"`
	Diastolic        int       `json:"diastolic"`
	OxygenSaturation int       `json:"oxygen_saturation"`
	Timestamp        time.Time `json:"timestamp"`
	Simulated        bool      `json:"simulated"`
}

func (v SyntheticVitals) BloodPressure() string {
	return strconv.Itoa(v.Systolic) + "/" + strconv.Itoa(v.Diastolic)
}
