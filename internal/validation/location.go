package validation

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"campuspulse/data"
	apierrors "campuspulse/internal/errors"
)

// ValidateRequestedSource checks a survey location received from an API
// client. URLs, the bundled survey and an empty location (the configured
// default) are accepted. Local files must resolve inside allowedDir; with no
// allowedDir they are refused.
func (v *PathValidator) ValidateRequestedSource(location, allowedDir string) error {
	location = strings.TrimSpace(location)
	if location == "" || location == data.EmbeddedLocation || isHTTPURL(location) {
		return nil
	}

	if strings.TrimSpace(allowedDir) == "" {
		v.logger.Warn("Rejecting local survey file requested over the API",
			slog.String("location", location))
		return apierrors.NewAppValidationError("location must be an http(s) URL")
	}

	path := strings.TrimPrefix(location, "file://")
	if !within(allowedDir, path) {
		v.logger.Warn("Rejecting survey file outside the allowed directory",
			slog.String("location", location),
			slog.String("allowed_dir", allowedDir))
		return apierrors.NewAppValidationError(fmt.Sprintf("location must be an http(s) URL or a file under %s", allowedDir))
	}

	// A symlink inside allowedDir must not lead out of it.
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		root, err := filepath.EvalSymlinks(allowedDir)
		if err != nil {
			root = allowedDir
		}
		if !within(root, resolved) {
			v.logger.Warn("Rejecting survey file linked outside the allowed directory",
				slog.String("location", location),
				slog.String("target", resolved))
			return apierrors.NewAppValidationError(fmt.Sprintf("location must be an http(s) URL or a file under %s", allowedDir))
		}
	}
	return nil
}

func isHTTPURL(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// within reports whether path lies in dir or one of its subdirectories.
func within(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
