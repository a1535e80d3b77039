package garmin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// searchPageSize mirrors the web frontend, which loads activities 20
// at a time on scroll.
const searchPageSize = 20

// ActivityService handles communication with the activity list,
// per-activity resource and file export endpoints.
type ActivityService struct {
	client *Client
}

// List fetches activities with an explicit start offset and page
// limit, newest first.
func (s *ActivityService) List(ctx context.Context, start, limit int) (json.RawMessage, error) {
	u := s.client.proxyURL(fmt.Sprintf(
		"activitylist-service/activities/search/activities?start=%d&limit=%d", start, limit))
	return s.client.getJSON(ctx, u)
}

// SearchByDate fetches every activity between startDate and endDate
// (inclusive, "YYYY-MM-DD"), optionally filtered by activity type
// (cycling, running, swimming, multi_sport, fitness_equipment, hiking,
// walking, other; empty means all). Pages of 20 are fetched until the
// server returns an empty page.
func (s *ActivityService) SearchByDate(ctx context.Context, startDate, endDate, activityType string) ([]json.RawMessage, error) {
	var activities []json.RawMessage

	for start := 0; ; start += searchPageSize {
		u := s.client.proxyURL(fmt.Sprintf(
			"activitylist-service/activities/search/activities?startDate=%s&endDate=%s&start=%d&limit=%d",
			startDate, endDate, start, searchPageSize))
		if activityType != "" {
			u += "&activityType=" + url.QueryEscape(activityType)
		}

		raw, err := s.client.getJSON(ctx, u)
		if err != nil {
			return nil, err
		}

		var page []json.RawMessage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decode activity page: %w", err)
		}
		if len(page) == 0 {
			return activities, nil
		}
		activities = append(activities, page...)
	}
}

// Get fetches a single activity, including its exercise sets.
func (s *ActivityService) Get(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return s.client.getJSON(ctx, s.client.proxyURL(fmt.Sprintf("activity-service/activity/%d", activityID)))
}

// Splits fetches the splits recorded for an activity.
func (s *ActivityService) Splits(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return s.client.getJSON(ctx, s.client.proxyURL(fmt.Sprintf("activity-service/activity/%d/splits", activityID)))
}

// SplitSummaries fetches the split summaries for an activity.
func (s *ActivityService) SplitSummaries(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return s.client.getJSON(ctx, s.client.proxyURL(fmt.Sprintf("activity-service/activity/%d/split_summaries", activityID)))
}

// Weather fetches the weather observed during an activity.
func (s *ActivityService) Weather(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return s.client.getJSON(ctx, s.client.proxyURL(fmt.Sprintf("activity-service/activity/%d/weather", activityID)))
}

// HRTimeInZones fetches the time spent in each heart rate zone during
// an activity.
func (s *ActivityService) HRTimeInZones(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return s.client.getJSON(ctx, s.client.proxyURL(fmt.Sprintf("activity-service/activity/%d/hrTimeInZones", activityID)))
}

// Details fetches the full activity detail stream. The chart and
// polyline sizes cap the number of samples the server returns.
func (s *ActivityService) Details(ctx context.Context, activityID int64, maxChartSize, maxPolylineSize int) (json.RawMessage, error) {
	u := s.client.proxyURL(fmt.Sprintf(
		"activity-service/activity/%d/details?maxChartSize=%d&maxPolylineSize=%d",
		activityID, maxChartSize, maxPolylineSize))
	return s.client.getJSON(ctx, u)
}

// DownloadFormat selects the export format for Download.
type DownloadFormat int

const (
	// FormatOriginal is the file as uploaded by the device, delivered
	// as a zip archive; extracting it is up to the caller.
	FormatOriginal DownloadFormat = iota
	FormatTCX
	FormatGPX
	FormatKML
	// FormatCSV exports a CSV of the activity splits.
	FormatCSV
)

// exportPath returns the download-service path for the format.
func (f DownloadFormat) exportPath(activityID int64) (string, error) {
	switch f {
	case FormatOriginal:
		return fmt.Sprintf("download-service/files/activity/%d", activityID), nil
	case FormatTCX:
		return fmt.Sprintf("download-service/export/tcx/activity/%d", activityID), nil
	case FormatGPX:
		return fmt.Sprintf("download-service/export/gpx/activity/%d", activityID), nil
	case FormatKML:
		return fmt.Sprintf("download-service/export/kml/activity/%d", activityID), nil
	case FormatCSV:
		return fmt.Sprintf("download-service/export/csv/activity/%d", activityID), nil
	default:
		return "", fmt.Errorf("unexpected download format %d", f)
	}
}

// Download exports an activity in the requested format and returns the
// raw bytes. An undefined format fails before any request is made; a
// failed request returns its error.
func (s *ActivityService) Download(ctx context.Context, activityID int64, format DownloadFormat) ([]byte, error) {
	path, err := format.exportPath(activityID)
	if err != nil {
		return nil, err
	}
	return s.client.get(ctx, s.client.proxyURL(path))
}
