package models

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// localZoneFile is the symlink naming the host zone when TZ is unset.
const localZoneFile = "/etc/localtime"

// DefaultTimeZone returns the IANA zone name applied to events that were
// stored without one: $TZ when it names a zone, else the target of
// /etc/localtime, else "UTC". It never returns "Local".
func DefaultTimeZone() string {
	tz, ok := os.LookupEnv("TZ")
	return resolveTimeZone(tz, ok, localZoneFile)
}

func resolveTimeZone(tz string, tzSet bool, zoneFile string) string {
	if tzSet {
		name := strings.TrimPrefix(tz, ":")
		if name == "" {
			return "UTC"
		}
		if zone := zoneFromPath(name); zone != "" {
			return zone
		}
		if name != "Local" {
			if _, err := time.LoadLocation(name); err == nil {
				return name
			}
		}
	}

	if target, err := os.Readlink(zoneFile); err == nil {
		if zone := zoneFromPath(target); zone != "" {
			return zone
		}
	}

	return "UTC"
}

// zoneFromPath extracts "Area/City" from a path into a zoneinfo tree.
func zoneFromPath(path string) string {
	const marker = "zoneinfo/"
	i := strings.LastIndex(path, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimPrefix(path[i+len(marker):], "posix/")
}

// Event is an optional calendar event attached to a note.
type Event struct {
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	AllDay   bool   `json:"allDay"`
	TimeZone string `json:"timeZone"`
	Location string `json:"location"`

	// AlarmMinutesBeforeStart is persisted under its own key and under both
	// legacy keys so that older builds keep reading it.
	AlarmMinutesBeforeStart int `json:"alarmMinutesBeforeStart"`
}

// MarshalJSON writes the alarm offset under the current and legacy keys.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	return json.Marshal(struct {
		alias
		Reminder     int `json:"reminderMinutesBeforeStart"`
		Notification int `json:"notificationMinutesBeforeStart"`
	}{
		alias:        alias(e),
		Reminder:     e.AlarmMinutesBeforeStart,
		Notification: e.AlarmMinutesBeforeStart,
	})
}

// UnmarshalJSON reads the alarm offset from the current key, falling back to
// the legacy keys, and fills the time zone default when it is missing.
func (e *Event) UnmarshalJSON(data []byte) error {
	type alias Event
	aux := struct {
		*alias
		Alarm        *int `json:"alarmMinutesBeforeStart"`
		Reminder     *int `json:"reminderMinutesBeforeStart"`
		Notification *int `json:"notificationMinutesBeforeStart"`
	}{alias: (*alias)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch {
	case aux.Alarm != nil:
		e.AlarmMinutesBeforeStart = *aux.Alarm
	case aux.Reminder != nil:
		e.AlarmMinutesBeforeStart = *aux.Reminder
	case aux.Notification != nil:
		e.AlarmMinutesBeforeStart = *aux.Notification
	}

	if e.TimeZone == "" {
		e.TimeZone = DefaultTimeZone()
	}
	return nil
}
