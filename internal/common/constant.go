// Package common contains constants shared by the client layers.
package common

const (
	// AuthorizationHeader carries the bearer credential on outbound requests.
	AuthorizationHeader = "Authorization"

	// RequestIDHeader correlates client log lines with backend logs.
	RequestIDHeader = "X-Request-ID"

	// TokenStorageKey is the metadata key the access token is persisted under.
	TokenStorageKey = "access_token"

	// PreferencesKey is the metadata key for notification preferences.
	PreferencesKey = "preferences"
)
