// Package client talks to the forensic-analysis backend.
//
// Gateway is the HTTP layer: it attaches the bearer token held by a
// Credential, encodes JSON and multipart bodies, and maps every failure to
// a *GatewayError. HTTPClient builds the typed Client contract on top of it.
//
// Errors are matched with errors.Is against ErrUnauthorized,
// ErrNetworkFailure, ErrDecodeFailure, ErrServer and ErrValidation.
//
// The package also bootstraps the local SQLite database (InitDatabase,
// RunMigrations) used to keep the session token between runs.
package client
