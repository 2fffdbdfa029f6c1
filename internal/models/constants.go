package models

// TuningType says how a channel is tuned.
type TuningType string

const (
	TuningTypeOTA  TuningType = "OTA"
	TuningTypeIPTV TuningType = "IPTV"
)

// Valid reports whether t is one of the known tuning types.
func (t TuningType) Valid() bool {
	switch t {
	case TuningTypeOTA, TuningTypeIPTV:
		return true
	}
	return false
}

func (t TuningType) String() string { return string(t) }

// ChannelStatus is the outcome of the latest health check of a channel.
type ChannelStatus string

const (
	ChannelStatusUnknown    ChannelStatus = "unknown"
	ChannelStatusWorking    ChannelStatus = "working"
	ChannelStatusBroken     ChannelStatus = "broken"
	ChannelStatusGeoBlocked ChannelStatus = "geo_blocked"
)

// Valid reports whether s is one of the known channel statuses.
func (s ChannelStatus) Valid() bool {
	switch s {
	case ChannelStatusUnknown, ChannelStatusWorking, ChannelStatusBroken, ChannelStatusGeoBlocked:
		return true
	}
	return false
}

func (s ChannelStatus) String() string { return string(s) }

// RecordingStatus is the lifecycle state of a recording job.
type RecordingStatus string

const (
	RecordingStatusPending   RecordingStatus = "pending"
	RecordingStatusRecording RecordingStatus = "recording"
	RecordingStatusCompleted RecordingStatus = "completed"
	RecordingStatusFailed    RecordingStatus = "failed"
)

// Valid reports whether s is one of the known recording statuses.
func (s RecordingStatus) Valid() bool {
	switch s {
	case RecordingStatusPending, RecordingStatusRecording, RecordingStatusCompleted, RecordingStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s RecordingStatus) Terminal() bool {
	return s == RecordingStatusCompleted || s == RecordingStatusFailed
}

func (s RecordingStatus) String() string { return string(s) }
