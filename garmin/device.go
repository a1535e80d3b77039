package garmin

import (
	"context"
	"encoding/json"
	"fmt"
)

// DeviceService handles communication with the device registration and
// device settings endpoints.
type DeviceService struct {
	client *Client
}

// Devices returns the devices registered to the account.
func (s *DeviceService) Devices(ctx context.Context) (json.RawMessage, error) {
	return s.client.getJSON(ctx, s.client.proxyURL("device-service/deviceregistration/devices"))
}

// Settings returns the settings of a specific device.
func (s *DeviceService) Settings(ctx context.Context, deviceID int64) (json.RawMessage, error) {
	u := s.client.proxyURL(fmt.Sprintf("device-service/deviceservice/device-info/settings/%d", deviceID))
	return s.client.getJSON(ctx, u)
}

// LastUsed returns the most recently used device.
func (s *DeviceService) LastUsed(ctx context.Context) (json.RawMessage, error) {
	return s.client.getJSON(ctx, s.client.proxyURL("device-service/deviceservice/mylastused"))
}

// Alarms combines the active alarms from every registered device,
// walking the device list and pulling the alarms out of each device's
// settings.
func (s *DeviceService) Alarms(ctx context.Context) ([]json.RawMessage, error) {
	s.client.log.Debug().Msg("gathering device alarms")

	raw, err := s.Devices(ctx)
	if err != nil {
		return nil, err
	}
	var devices []struct {
		DeviceID int64 `json:"deviceId"`
	}
	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil, fmt.Errorf("decode device list: %w", err)
	}

	var alarms []json.RawMessage
	for _, d := range devices {
		settings, err := s.Settings(ctx, d.DeviceID)
		if err != nil {
			return nil, err
		}
		var parsed struct {
			Alarms []json.RawMessage `json:"alarms"`
		}
		if err := json.Unmarshal(settings, &parsed); err != nil {
			return nil, fmt.Errorf("decode settings for device %d: %w", d.DeviceID, err)
		}
		alarms = append(alarms, parsed.Alarms...)
	}
	return alarms, nil
}
