package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"

	"campuspulse/internal/dataprocessing"
	apierrors "campuspulse/internal/errors"
	"campuspulse/pkg/contracts/domain"
)

const xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Source is one of the two ways a dataset can be acquired: EmbeddedSource
// or RemoteSource. The set is closed.
type Source interface {
	// Kind is "embedded" or "remote".
	Kind() string
	// Describe identifies the source in logs and status reports.
	Describe() string

	rows(ctx context.Context, f *fetcher) ([]domain.RawRow, error)
}

// EmbeddedSource carries rows that are already in memory. Loading it does no I/O.
type EmbeddedSource struct {
	Rows []domain.RawRow
	// Name optionally labels the rows; it defaults to "embedded".
	Name string
}

func (EmbeddedSource) Kind() string { return "embedded" }

func (s EmbeddedSource) Describe() string {
	if s.Name != "" {
		return s.Name
	}
	return "embedded"
}

func (s EmbeddedSource) rows(context.Context, *fetcher) ([]domain.RawRow, error) {
	return s.Rows, nil
}

// RemoteSource is a survey document at Location: an http(s) URL, a file://
// URL or a plain file path. Workbooks (.xlsx) are read from their first
// sheet; anything else is parsed as CSV.
type RemoteSource struct {
	Location string
}

func (RemoteSource) Kind() string { return "remote" }

func (s RemoteSource) Describe() string { return s.Location }

func (s RemoteSource) rows(ctx context.Context, f *fetcher) ([]domain.RawRow, error) {
	location := strings.TrimSpace(s.Location)
	if location == "" {
		return nil, apierrors.NewAppValidationError("remote source location is empty")
	}

	var (
		doc    []byte
		format dataprocessing.Format
		err    error
	)
	if IsHTTPLocation(location) {
		doc, format, err = f.fetchHTTP(ctx, location)
	} else {
		doc, format, err = f.readFile(ctx, location)
	}
	if err != nil {
		return nil, err
	}

	rows, err := dataprocessing.Parse(bytes.NewReader(doc), format)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to parse survey document", err).
			WithContext("location", location)
	}
	return rows, nil
}

// fetcher performs the I/O of remote sources.
type fetcher struct {
	client   *http.Client
	maxBytes int64
}

func (f *fetcher) fetchHTTP(ctx context.Context, location string) ([]byte, dataprocessing.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, "", apierrors.NewAppValidationError(fmt.Sprintf("invalid survey URL: %v", err))
	}
	req.Header.Set("Accept", "text/csv, "+xlsxMediaType+", */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", apierrors.NewNetworkError("failed to fetch survey", err).
			WithContext("location", location)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", apierrors.NewNetworkError("failed to fetch survey",
			fmt.Errorf("unexpected status %s", resp.Status)).
			WithContext("location", location).
			WithContext("status_code", resp.StatusCode)
	}

	doc, err := f.readAll(resp.Body)
	if err != nil {
		return nil, "", wrapReadError(err, "failed to read survey response", location)
	}

	format := dataprocessing.FormatFromLocation(pathOf(location))
	if mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && mediaType == xlsxMediaType {
		format = dataprocessing.FormatXLSX
	}
	return doc, format, nil
}

func (f *fetcher) readFile(ctx context.Context, location string) ([]byte, dataprocessing.Format, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	path := strings.TrimPrefix(location, "file://")
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", apierrors.NewNotFoundError("survey file "+path, err)
	}
	if err != nil {
		return nil, "", apierrors.NewNetworkError("failed to open survey file", err).
			WithContext("location", location)
	}
	defer file.Close()

	doc, err := f.readAll(file)
	if err != nil {
		return nil, "", wrapReadError(err, "failed to read survey file", location)
	}
	return doc, dataprocessing.FormatFromLocation(path), nil
}

var errTooLarge = errors.New("document too large")

// readAll reads r up to the size cap.
func (f *fetcher) readAll(r io.Reader) ([]byte, error) {
	doc, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(doc)) > f.maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", errTooLarge, f.maxBytes)
	}
	return doc, nil
}

func wrapReadError(err error, message, location string) error {
	if errors.Is(err, errTooLarge) {
		return apierrors.NewParsingError(message, err).WithContext("location", location)
	}
	return apierrors.NewNetworkError(message, err).WithContext("location", location)
}

// IsHTTPLocation reports whether location is an http or https URL rather than a
// file path.
func IsHTTPLocation(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// pathOf returns the path component of a URL, or location itself when it
// does not parse.
func pathOf(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	return u.Path
}
