package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	names := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestValidateChannel(t *testing.T) {
	valid := Channel{
		Name:          "BBC1",
		TuningType:    TuningTypeOTA,
		TuningDetails: TuningDetails{"channel_number": "1"},
	}
	assert.NoError(t, Validate(&valid))

	tests := []struct {
		name   string
		mutate func(c *Channel)
		field  string
	}{
		{"missing name", func(c *Channel) { c.Name = "" }, "name"},
		{"long name", func(c *Channel) { c.Name = strings.Repeat("x", 256) }, "name"},
		{"bad tuning type", func(c *Channel) { c.TuningType = "DVB" }, "tuning_type"},
		{"nil tuning details", func(c *Channel) { c.TuningDetails = nil }, "tuning_details"},
		{"empty tuning details", func(c *Channel) { c.TuningDetails = TuningDetails{} }, "tuning_details"},
		{"bad status", func(c *Channel) { c.Status = "dead" }, "status"},
		{"long vpn country", func(c *Channel) { s := strings.Repeat("x", 51); c.VPNCountry = &s }, "vpn_country"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Contains(t, fieldNames(t, Validate(&c)), tt.field)
		})
	}
}

func TestValidateScheduleTimes(t *testing.T) {
	start := time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC)
	s := Schedule{ChannelID: 1, ProgramID: 2, StartTime: start, EndTime: start}

	err := Validate(&s)
	assert.Equal(t, []string{"end_time"}, fieldNames(t, err))
	assert.Contains(t, err.Error(), "end_time must be after start_time")

	s.EndTime = start.Add(-time.Minute)
	assert.Error(t, Validate(&s))

	s.EndTime = start.Add(30 * time.Minute)
	assert.NoError(t, Validate(&s))
	assert.Equal(t, 30*time.Minute, s.Duration())
}

func TestValidateRecordingInvariants(t *testing.T) {
	now := time.Now().UTC()
	msg := "boom"

	tests := []struct {
		name   string
		mutate func(r *Recording)
		fields []string
	}{
		{"pending ok", func(r *Recording) {}, nil},
		{"failed without message", func(r *Recording) {
			r.Status = RecordingStatusFailed
			r.CompletedAt = &now
		}, []string{"error_message"}},
		{"message while recording", func(r *Recording) {
			r.Status = RecordingStatusRecording
			r.ErrorMessage = &msg
		}, []string{"error_message"}},
		{"completed without completed_at", func(r *Recording) {
			r.Status = RecordingStatusCompleted
		}, []string{"completed_at"}},
		{"pending with completed_at", func(r *Recording) {
			r.CompletedAt = &now
		}, []string{"completed_at"}},
		{"failed ok", func(r *Recording) {
			r.Status = RecordingStatusFailed
			r.ErrorMessage = &msg
			r.CompletedAt = &now
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := pendingRecording()
			tt.mutate(&r)
			err := Validate(&r)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			assert.ElementsMatch(t, tt.fields, fieldNames(t, err))
		})
	}
}

func TestTuningDetailsAccessors(t *testing.T) {
	ota := TuningDetails{"channel_number": "2.1"}
	n, ok := ota.ChannelNumber()
	assert.True(t, ok)
	assert.Equal(t, "2.1", n)
	_, ok = ota.StreamURL()
	assert.False(t, ok)

	iptv := TuningDetails{"url": "http://example.com/live.m3u8", "channel_number": 5}
	u, ok := iptv.StreamURL()
	assert.True(t, ok)
	assert.Equal(t, "http://example.com/live.m3u8", u)
	_, ok = iptv.ChannelNumber()
	assert.False(t, ok, "non-string values are ignored")
}

func TestEnumValid(t *testing.T) {
	assert.True(t, TuningTypeIPTV.Valid())
	assert.False(t, TuningType("iptv").Valid())
	assert.True(t, ChannelStatusGeoBlocked.Valid())
	assert.False(t, ChannelStatus("").Valid())
	assert.True(t, RecordingStatusFailed.Valid())
	assert.False(t, RecordingStatus("cancelled").Valid())
}
