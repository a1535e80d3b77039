// Package garmin provides a Go client for the unofficial Garmin
// Connect web API.
//
// The client signs in through Garmin's SSO portal with account
// credentials and keeps the resulting session cookies on its HTTP
// client. When a session expires, the next data fetch re-runs the
// login handshake once and retries the request once; a second failure
// is returned to the caller.
//
// # Quick Start
//
//	client := garmin.NewClient(email, password)
//
//	summary, err := client.Wellness.DailySummary(ctx, "2026-08-01")
//
// Sign-in is lazy; call Login directly only to validate credentials up
// front:
//
//	username, err := client.Login(ctx)
//
// # Downloads
//
// Activities can be exported in their original upload format or as
// TCX, GPX, KML or CSV:
//
//	data, err := client.Activity.Download(ctx, activityID, garmin.FormatGPX)
package garmin
