package garmin

import (
	"context"
	"encoding/json"
)

// WellnessService handles communication with the daily wellness
// endpoints. Dates are "YYYY-MM-DD" strings, the calendar date format
// the API expects.
type WellnessService struct {
	client *Client
}

// DailySummary returns the daily activity summary for the given date.
// Garmin answers 200 with privacyProtected=true when the session has
// gone stale, so that is treated as an expired-session signal: one
// re-login and one re-issue of the same request.
func (s *WellnessService) DailySummary(ctx context.Context, date string) (json.RawMessage, error) {
	displayName, err := s.client.ensureSignedIn(ctx)
	if err != nil {
		return nil, err
	}
	u := s.client.proxyURL("usersummary-service/usersummary/daily/" + displayName + "?calendarDate=" + date)

	raw, err := s.client.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}

	var guard struct {
		PrivacyProtected bool `json:"privacyProtected"`
	}
	_ = json.Unmarshal(raw, &guard)
	if !guard.PrivacyProtected {
		return raw, nil
	}

	s.client.log.Debug().Msg("summary privacy protected, trying re-login")
	if _, err := s.client.Login(ctx); err != nil {
		return nil, err
	}
	return s.client.getJSON(ctx, u)
}

// BodyComposition returns the body composition data recorded on the
// given date.
func (s *WellnessService) BodyComposition(ctx context.Context, date string) (json.RawMessage, error) {
	u := s.client.proxyURL("weight-service/weight/daterangesnapshot?startDate=" + date + "&endDate=" + date)
	return s.client.getJSON(ctx, u)
}

// HeartRates returns the heart rate samples recorded on the given date.
func (s *WellnessService) HeartRates(ctx context.Context, date string) (json.RawMessage, error) {
	displayName, err := s.client.ensureSignedIn(ctx)
	if err != nil {
		return nil, err
	}
	u := s.client.proxyURL("wellness-service/wellness/dailyHeartRate/" + displayName + "?date=" + date)
	return s.client.getJSON(ctx, u)
}

// SleepData returns the sleep data recorded on the given date.
func (s *WellnessService) SleepData(ctx context.Context, date string) (json.RawMessage, error) {
	displayName, err := s.client.ensureSignedIn(ctx)
	if err != nil {
		return nil, err
	}
	u := s.client.proxyURL("wellness-service/wellness/dailySleepData/" + displayName + "?date=" + date)
	return s.client.getJSON(ctx, u)
}

// StepsData returns the daily summary chart (step samples) for the
// given date.
func (s *WellnessService) StepsData(ctx context.Context, date string) (json.RawMessage, error) {
	displayName, err := s.client.ensureSignedIn(ctx)
	if err != nil {
		return nil, err
	}
	u := s.client.proxyURL("wellness-service/wellness/dailySummaryChart/" + displayName + "?date=" + date)
	return s.client.getJSON(ctx, u)
}

// Hydration returns the hydration log for the given date.
func (s *WellnessService) Hydration(ctx context.Context, date string) (json.RawMessage, error) {
	return s.client.getJSON(ctx, s.client.proxyURL("usersummary-service/usersummary/hydration/daily/"+date))
}
