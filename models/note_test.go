package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNote_IDDerivedFromCreationTime(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	n := NewNote("t", "c", now)

	assert.Equal(t, int64(1_700_000_000_123), n.ID)
	assert.Equal(t, n.ID, n.Date)
	assert.NotNil(t, n.Images)
	assert.NotNil(t, n.Files)
	assert.NotNil(t, n.LinkPreviews)
}

func TestImageRef_UnmarshalAcceptsBothIDKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ImageRef
	}{
		{name: "current id key", in: `{"id":"a1"}`, want: ImageRef{AttachmentID: "a1"}},
		{name: "attachmentId key", in: `{"attachmentId":"a2"}`, want: ImageRef{AttachmentID: "a2"}},
		{name: "legacy inline data", in: `{"data":"AQID"}`, want: ImageRef{Data: "AQID"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ImageRef
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileRef_IsLegacy(t *testing.T) {
	assert.True(t, FileRef{Name: "a.txt", Data: "AQID"}.IsLegacy())
	assert.False(t, FileRef{Name: "a.txt", AttachmentID: "x"}.IsLegacy())
	assert.False(t, FileRef{Name: "a.txt"}.IsLegacy())
}

func TestFileRef_MarshalOmitsEmptyPayloadKeys(t *testing.T) {
	out, err := json.Marshal(FileRef{Name: "doc.pdf", Mime: "application/pdf", AttachmentID: "f1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"doc.pdf","mime":"application/pdf","id":"f1"}`, string(out))
}

func TestEvent_MarshalWritesLegacyAlarmKeys(t *testing.T) {
	ev := Event{Start: 10, End: 20, TimeZone: "UTC", AlarmMinutesBeforeStart: 15}

	out, err := json.Marshal(ev)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.EqualValues(t, 15, raw["alarmMinutesBeforeStart"])
	assert.EqualValues(t, 15, raw["reminderMinutesBeforeStart"])
	assert.EqualValues(t, 15, raw["notificationMinutesBeforeStart"])
}

func TestEvent_UnmarshalFallsBackToLegacyKeys(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"start":1,"timeZone":"UTC","reminderMinutesBeforeStart":30}`), &ev))
	assert.Equal(t, 30, ev.AlarmMinutesBeforeStart)

	var cur Event
	require.NoError(t, json.Unmarshal([]byte(`{"alarmMinutesBeforeStart":5,"reminderMinutesBeforeStart":30}`), &cur))
	assert.Equal(t, 5, cur.AlarmMinutesBeforeStart)
}

func TestEvent_UnmarshalDefaultsTimeZone(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"start":1}`), &ev))
	assert.Equal(t, DefaultTimeZone(), ev.TimeZone)
	assert.NotEqual(t, "Local", ev.TimeZone)
	assert.NotEmpty(t, ev.TimeZone)
	assert.False(t, ev.AllDay)
	assert.Empty(t, ev.Location)
}

func TestEvent_UnmarshalDefaultsTimeZoneFromTZ(t *testing.T) {
	t.Setenv("TZ", "UTC")

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"start":1}`), &ev))
	assert.Equal(t, "UTC", ev.TimeZone)
}

func TestResolveTimeZone(t *testing.T) {
	dir := t.TempDir()
	linked := filepath.Join(dir, "localtime")
	require.NoError(t, os.Symlink("/usr/share/zoneinfo/Asia/Tokyo", linked))
	missing := filepath.Join(dir, "absent")

	tests := []struct {
		name     string
		tz       string
		tzSet    bool
		zoneFile string
		want     string
	}{
		{name: "tz names a zone", tz: "UTC", tzSet: true, zoneFile: missing, want: "UTC"},
		{name: "tz with colon prefix", tz: ":UTC", tzSet: true, zoneFile: missing, want: "UTC"},
		{name: "tz as zoneinfo path", tz: "/usr/share/zoneinfo/Europe/Moscow", tzSet: true, zoneFile: missing, want: "Europe/Moscow"},
		{name: "empty tz means utc", tz: "", tzSet: true, zoneFile: linked, want: "UTC"},
		{name: "tz Local falls back to zone file", tz: "Local", tzSet: true, zoneFile: linked, want: "Asia/Tokyo"},
		{name: "unknown tz falls back to zone file", tz: "Nowhere/Atlantis", tzSet: true, zoneFile: linked, want: "Asia/Tokyo"},
		{name: "tz unset uses zone file", zoneFile: linked, want: "Asia/Tokyo"},
		{name: "nothing resolves", zoneFile: missing, want: "UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveTimeZone(tt.tz, tt.tzSet, tt.zoneFile)
			assert.Equal(t, tt.want, got)
			assert.NotEqual(t, "Local", got)
		})
	}
}

func TestEvent_RoundTrip(t *testing.T) {
	in := Event{Start: 100, End: 200, AllDay: true, TimeZone: "Europe/Moscow", Location: "home", AlarmMinutesBeforeStart: 10}

	out, err := json.Marshal(in)
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, in, got)
}

func TestNote_CloneIsDeep(t *testing.T) {
	n := NewNote("t", "c", time.Now())
	n.Images = append(n.Images, ImageRef{AttachmentID: "a"})
	n.Event = &Event{TimeZone: "UTC"}

	c := n.Clone()
	c.Images[0].AttachmentID = "b"
	c.Event.TimeZone = "Asia/Tokyo"

	assert.Equal(t, "a", n.Images[0].AttachmentID)
	assert.Equal(t, "UTC", n.Event.TimeZone)
}

func TestReencryptReport_HasFailures(t *testing.T) {
	assert.False(t, ReencryptReport{Succeeded: []string{"a"}}.HasFailures())
	assert.True(t, ReencryptReport{Failed: []string{"b"}}.HasFailures())
}

func TestAppBuildInfo_DefaultsToNA(t *testing.T) {
	info := NewAppBuildInfo("", "2026-01-01", "")
	assert.Equal(t, "N/A", info.BuildVersion())
	assert.Equal(t, "2026-01-01", info.BuildDate())
	assert.Equal(t, "N/A", info.BuildCommit())
	assert.Contains(t, info.String(), "Build date: 2026-01-01")
}
