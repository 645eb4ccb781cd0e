// Package services implements the application layer between the HTTP
// handlers, the CLI and the survey dataset store.
//
// SurveyService selects the survey source for a load request (a remote
// location, the configured default source or the embedded survey),
// delegates filtering and statistics to the dataset store and exports the
// active view. HealthService reports liveness, readiness and version
// information; the service is ready once a dataset has been loaded.
//
// Services receive their collaborators and a *slog.Logger through their
// constructors and tag log records with a component attribute.
//
// # Errors
//
// Dataset load failures are returned unchanged from the store so callers can
// inspect the typed *errors.AppError. Service-level conditions are reported
// with the sentinels in errors.go:
//
//	if errors.Is(err, services.ErrDatasetNotLoaded) { ... }
package services
