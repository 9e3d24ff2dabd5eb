package device

import (
	"encoding/json"
	"fmt"
)

// Priority is an alarm priority level as encoded by the controller firmware.
type Priority int

// Priority levels, ordered from least to most severe.
const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// String returns a readable name for the priority.
// Unknown values are printed numerically; the client reports what the
// device sends and never validates the range.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// MeasurementPoint is one sensor channel's alarm configuration as reported
// by GET /api/alarm-config. Field names match the device's JSON exactly.
type MeasurementPoint struct {
	Address       int      `json:"address"`
	Name          string   `json:"name"`
	CurrentTemp   float64  `json:"currentTemp"`
	SensorBound   bool     `json:"sensorBound"`
	LowThreshold  float64  `json:"lowThreshold"`
	HighThreshold float64  `json:"highThreshold"`
	Hysteresis    float64  `json:"hysteresis"`
	LowEnabled    bool     `json:"lowEnabled"`
	HighEnabled   bool     `json:"highEnabled"`
	ErrorEnabled  bool     `json:"errorEnabled"`
	LowPriority   Priority `json:"lowPriority"`
	HighPriority  Priority `json:"highPriority"`
	ErrorPriority Priority `json:"errorPriority"`
}

// PointChange is a partial update for one measurement point.
// Every field except the address is optional; an omitted field is left
// unchanged by the device, so optional fields are pointers with omitempty
// to keep omission expressible on the wire.
type PointChange struct {
	Address       int       `json:"address"`
	Name          *string   `json:"name,omitempty"`
	LowThreshold  *float64  `json:"lowThreshold,omitempty"`
	HighThreshold *float64  `json:"highThreshold,omitempty"`
	Hysteresis    *float64  `json:"hysteresis,omitempty"`
	LowEnabled    *bool     `json:"lowEnabled,omitempty"`
	HighEnabled   *bool     `json:"highEnabled,omitempty"`
	ErrorEnabled  *bool     `json:"errorEnabled,omitempty"`
	LowPriority   *Priority `json:"lowPriority,omitempty"`
	HighPriority  *Priority `json:"highPriority,omitempty"`
	ErrorPriority *Priority `json:"errorPriority,omitempty"`
}

// ConfigChangeRequest wraps an ordered sequence of partial point updates
// for POST /api/alarm-config.
type ConfigChangeRequest struct {
	Changes []PointChange `json:"changes"`
}

// RawPoint preserves one point's raw JSON field set so callers can tell
// an absent field from a zero value.
type RawPoint map[string]json.RawMessage

// Has reports whether the field was present on the wire.
func (p RawPoint) Has(field string) bool {
	_, ok := p[field]
	return ok
}

// Value decodes the field's raw JSON into a plain Go value for display.
func (p RawPoint) Value(field string) any {
	raw, ok := p[field]
	if !ok {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}

	return v
}

// ConfigSnapshot is one GET /api/alarm-config response: the decoded points
// plus each point's raw field set.
type ConfigSnapshot struct {
	Points    []MeasurementPoint
	RawPoints []RawPoint
}

// FindByAddress returns the first point whose address matches.
func (s *ConfigSnapshot) FindByAddress(address int) (*MeasurementPoint, bool) {
	for i := range s.Points {
		if s.Points[i].Address == address {
			return &s.Points[i], true
		}
	}

	return nil, false
}

// DeviceStatus is the GET /api/status payload.
type DeviceStatus struct {
	DeviceID          int   `json:"deviceId"`
	FirmwareVersion   int   `json:"firmwareVersion"`
	DS18B20Count      int   `json:"ds18b20Count"`
	PT1000Count       int   `json:"pt1000Count"`
	MeasurementPeriod int   `json:"measurementPeriod"`
	UptimeSeconds     int64 `json:"uptime"`
	DeviceStatus      []int `json:"deviceStatus"`
}

// SensorInfo is one entry of the GET /api/sensors inventory.
// ROM data is present for DS18B20 sensors, the chip-select pin for PT1000.
// BoundPoint is null when the sensor is not bound to a measurement point.
type SensorInfo struct {
	Type               string  `json:"type"`
	Name               string  `json:"name"`
	CurrentTemp        float64 `json:"currentTemp"`
	MinTemp            float64 `json:"minTemp"`
	MaxTemp            float64 `json:"maxTemp"`
	LowAlarmThreshold  float64 `json:"lowAlarmThreshold"`
	HighAlarmThreshold float64 `json:"highAlarmThreshold"`
	AlarmStatus        int     `json:"alarmStatus"`
	ErrorStatus        int     `json:"errorStatus"`
	RomString          string  `json:"romString,omitempty"`
	ChipSelectPin      *int    `json:"chipSelectPin,omitempty"`
	BoundPoint         *int    `json:"boundPoint"`
}
