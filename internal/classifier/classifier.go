package classifier

import (
	"strconv"
	"strings"

	"github.com/medwatch/go-vitals-alerts/internal/models"
)

// Classify maps one vital reading to a severity. It is total: unknown kinds
// and unparsable values degrade to Normal rather than failing the pipeline.
// The Abnormal and Critical bands are evaluated independently and the most
// severe matching band wins.
func Classify(kind models.VitalKind, value string) models.Severity {
	switch kind {
	case models.VitalBloodPressure:
		return classifyBloodPressure(value)
	case models.VitalHeartRate:
		return classifyNumeric(value, func(v float64) models.Severity {
			switch {
			case v < 40 || v > 140:
				return models.SeverityCritical
			case v < 60 || v > 100:
				return models.SeverityAbnormal
			}
			return models.SeverityNormal
		})
	case models.VitalOxygenSaturation:
		return classifyNumeric(value, func(v float64) models.Severity {
			switch {
			case v < 90:
				return models.SeverityCritical
			case v < 95:
				return models.SeverityAbnormal
			}
			return models.SeverityNormal
		})
	case models.VitalTemperature:
		return classifyNumeric(value, func(v float64) models.Severity {
			switch {
			case v > 39:
				return models.SeverityCritical
			case v > 37.5:
				return models.SeverityAbnormal
			}
			return models.SeverityNormal
		})
	case models.VitalGlucose:
		// No distinct critical band for glucose.
		return classifyNumeric(value, func(v float64) models.Severity {
			if v < 70 || v > 140 {
				return models.SeverityAbnormal
			}
			return models.SeverityNormal
		})
	default:
		// Includes weight, which has no thresholds.
		return models.SeverityNormal
	}
}

func classifyNumeric(value string, bands func(float64) models.Severity) models.Severity {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return models.SeverityNormal
	}
	return bands(v)
}

// classifyBloodPressure expects a "systolic/diastolic" pair. Note the bands
// are deliberately asymmetric: Critical uses >= while Abnormal uses >, so
// exactly 140/90 is Critical while exactly 120/80 is Normal.
func classifyBloodPressure(value string) models.Severity {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return models.SeverityNormal
	}
	systolic, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.SeverityNormal
	}
	diastolic, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.SeverityNormal
	}

	severity := models.SeverityNormal
	if systolic > 120 || diastolic > 80 {
		severity = models.SeverityAbnormal
	}
	if systolic >= 140 || diastolic >= 90 {
		severity = models.SeverityCritical
	}
	return severity
}
