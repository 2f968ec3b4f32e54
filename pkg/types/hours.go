package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DayHours captures one weekday's opening window.
type DayHours struct {
	IsOpen    bool   `json:"is_open"`
	OpenTime  string `json:"open_time,omitempty"`
	CloseTime string `json:"close_time,omitempty"`
	IsAllDay  bool   `json:"is_all_day,omitempty"`
}

// WeekHours maps lowercase weekday names to opening windows; stored as jsonb.
type WeekHours map[string]DayHours

// Weekdays is the canonical key order for WeekHours.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Validate rejects open days with inverted or missing time windows.
func (w WeekHours) Validate() error {
	for _, day := range Weekdays {
		hours, ok := w[day]
		if !ok || !hours.IsOpen || hours.IsAllDay {
			continue
		}
		if hours.OpenTime == "" || hours.CloseTime == "" {
			return fmt.Errorf("hours: %s is open but missing times", day)
		}
		if hours.OpenTime >= hours.CloseTime {
			return fmt.Errorf("hours: %s closes before it opens", day)
		}
	}
	return nil
}

// Value marshals the hours into jsonb.
func (w WeekHours) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	return json.Marshal(w)
}

// Scan decodes the jsonb payload.
func (w *WeekHours) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	raw, ok := toBytes(value)
	if !ok {
		return fmt.Errorf("hours: unsupported scan type %T", value)
	}
	return json.Unmarshal(raw, w)
}
