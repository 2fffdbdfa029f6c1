package models

import "time"

// Keys used inside TuningDetails by the known tuning types.
const (
	TuningKeyChannelNumber = "channel_number" // OTA
	TuningKeyURL           = "url"            // IPTV
)

// TuningDetails is the free-form tuning document stored as JSONB.
// Its shape depends on the channel's TuningType and is not enforced.
type TuningDetails map[string]any

// ChannelNumber returns the OTA channel number, if present.
func (d TuningDetails) ChannelNumber() (string, bool) {
	return d.stringValue(TuningKeyChannelNumber)
}

// StreamURL returns the IPTV stream URL, if present.
func (d TuningDetails) StreamURL() (string, bool) {
	return d.stringValue(TuningKeyURL)
}

func (d TuningDetails) stringValue(key string) (string, bool) {
	v, ok := d[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Channel is a tunable source of video.
type Channel struct {
	ID            int64         `json:"id,omitempty"`
	Name          string        `json:"name" validate:"required,max=255"`
	Description   *string       `json:"description,omitempty"`
	TuningType    TuningType    `json:"tuning_type" validate:"required,oneof=OTA IPTV"`
	TuningDetails TuningDetails `json:"tuning_details" validate:"required,min=1"`
	EPGSource     *string       `json:"epg_source,omitempty" validate:"omitempty,max=512"`
	GroupCategory *string       `json:"group_category,omitempty" validate:"omitempty,max=100"`
	GeoBlocked    bool          `json:"geo_blocked"`
	VPNCountry    *string       `json:"vpn_country,omitempty" validate:"omitempty,max=50"`
	LastTested    *time.Time    `json:"last_tested,omitempty"`
	Status        ChannelStatus `json:"status" validate:"omitempty,oneof=unknown working broken geo_blocked"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
