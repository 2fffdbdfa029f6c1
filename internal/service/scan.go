package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/voyagen/tvdetection/internal/models"
	"github.com/voyagen/tvdetection/internal/store"
)

// ScanResult is what a channel scanner reports after one health check.
type ScanResult struct {
	ChannelID int64
	Success   bool
	// GeoBlocked marks a failure caused by region restrictions.
	GeoBlocked bool
	Details    string
	VPNUsed    string
	TestedAt   time.Time
}

// ChannelStatusFor derives the channel status a scan result implies.
func ChannelStatusFor(r ScanResult) models.ChannelStatus {
	switch {
	case r.Success:
		return models.ChannelStatusWorking
	case r.GeoBlocked:
		return models.ChannelStatusGeoBlocked
	default:
		return models.ChannelStatusBroken
	}
}

// RecordScanResult appends the scan and moves the channel to the derived
// status in one write. A failed check is data, not an error: it is stored
// with success=false and the channel marked broken or geo_blocked.
func RecordScanResult(ctx context.Context, s store.Store, r ScanResult) (*models.Scan, error) {
	scan := &models.Scan{
		ChannelID: r.ChannelID,
		TestedAt:  r.TestedAt,
		Success:   r.Success,
		Details:   optional(r.Details),
		VPNUsed:   optional(r.VPNUsed),
	}
	if err := s.RecordScan(ctx, scan, ChannelStatusFor(r)); err != nil {
		return nil, fmt.Errorf("RecordScan: %w", err)
	}
	return scan, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
