package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/avandra/garmin-go/garmin"
)

// This example signs in to Garmin Connect with account credentials,
// prints the signed-in identity, and walks a few of the data endpoints
// to show the session being reused across calls.
func main() {
	email := os.Getenv("GARMIN_EMAIL")
	password := os.Getenv("GARMIN_PASSWORD")

	if email == "" || password == "" {
		log.Fatal("Error: GARMIN_EMAIL and GARMIN_PASSWORD environment variables are required.")
	}

	client := garmin.NewClient(email, password)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	username, err := client.Login(ctx)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	log.Printf("Signed in as %s (display name %s)", username, client.User.DisplayName())

	today := time.Now().Format("2006-01-02")

	summary, err := client.Wellness.DailySummary(ctx, today)
	if err != nil {
		log.Fatalf("Daily summary failed: %v", err)
	}
	log.Printf("Daily summary for %s: %d bytes of JSON", today, len(summary))

	devices, err := client.Device.Devices(ctx)
	if err != nil {
		log.Fatalf("Device list failed: %v", err)
	}
	var deviceList []json.RawMessage
	if err := json.Unmarshal(devices, &deviceList); err != nil {
		log.Fatalf("Decoding device list failed: %v", err)
	}
	log.Printf("Account has %d registered device(s)", len(deviceList))

	alarms, err := client.Device.Alarms(ctx)
	if err != nil {
		log.Fatalf("Alarm aggregation failed: %v", err)
	}
	log.Printf("Active alarms across all devices: %d", len(alarms))

	monthAgo := time.Now().AddDate(0, -1, 0).Format("2006-01-02")
	activities, err := client.Activity.SearchByDate(ctx, monthAgo, today, "")
	if err != nil {
		log.Fatalf("Activity search failed: %v", err)
	}
	log.Printf("Activities in the last month: %d", len(activities))
}
