// Package dataprocessing turns survey exports into canonical records and
// derives the statistics shown on the CampusPulse dashboard.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Parser: reads CSV documents and XLSX workbooks into RawRows
// 2. Normalizer: coerces RawRows into typed Records and tags sentiment
// 3. Filter: selects the records matching a FilterCriteria
// 4. Analytics: computes KPIs, facets and sentiment breakdowns
//
// # Data Flow
//
//	CSV/XLSX -> Parser -> RawRows -> Normalizer -> Records -> Filter -> Analytics
//
// # Error Handling
//
// Only the parser can fail, and only on malformed documents. Normalization
// never fails: unusable field values fall back to documented defaults and
// are reported through Coercion. Filtering and analytics are total
// functions over whatever records they are given.
//
// Every function in this package is pure and safe for concurrent use; the
// stateful view over a dataset lives in package dataset.
package dataprocessing
