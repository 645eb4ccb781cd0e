// Package http implements the HTTP handlers of the CampusPulse API. Handlers
// are thin: they parse and validate the request, call a service and render
// the result as JSON. Failures are written as RFC 7807 problem documents
// through errors.ErrorHandler.
//
// # Routes
//
// SurveyHandler.Routes is mounted at /api/survey:
//
//	POST /load          {"location": "..."}; empty loads the default source
//	GET  /records       ?facility=&department=&year=&min_rating= filters the dataset
//	GET  /data          the current view without refiltering
//	GET  /kpis          KPI summary of the current view
//	GET  /facets        distinct facility, department and year values
//	GET  /sentiments    sentiment counts of the current view
//	GET  /status        what is loaded
//	GET  /export.csv    the current view as a CSV download
//
// HealthHandler.Routes is mounted at /api/health and HealthHandler.Version at
// /api/version.
//
// # Errors
//
// Dataset load failures map to 502 when the source could not be fetched and
// 422 when the document could not be parsed. Invalid query parameters such
// as a non-integer min_rating are 400.
package http
