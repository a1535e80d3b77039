package garmin

import (
	"context"
	"encoding/json"
)

// UserService handles the signed-in identity and the account-level
// endpoints keyed on it.
type UserService struct {
	client *Client
}

// DisplayName returns the display name of the signed-in account, or
// the empty string before the first login.
func (s *UserService) DisplayName() string {
	displayName, _ := s.client.session.names()
	return displayName
}

// Username returns the username of the signed-in account, or the empty
// string before the first login.
func (s *UserService) Username() string {
	_, username := s.client.session.names()
	return username
}

// PersonalRecords fetches the account's personal records.
func (s *UserService) PersonalRecords(ctx context.Context) (json.RawMessage, error) {
	displayName, err := s.client.ensureSignedIn(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.getJSON(ctx, s.client.proxyURL("personalrecord-service/personalrecord/prs/"+displayName))
}
