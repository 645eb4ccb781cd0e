// Package shared holds code used across the CampusPulse packages that does not
// belong to a single layer.
//
// The testutil subpackage provides:
//
//   - a capturing slog handler and assertions over captured records
//   - survey fixtures (CSV documents, records and HTTP servers serving them)
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    svc := services.NewSurveyService(store, "", logger)
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "dataset loaded")
//	}
//
// Nothing in this package may import business logic packages.
package shared
