// Package validation checks local survey files and export targets before any
// I/O is attempted on them.
package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apierrors "campuspulse/internal/errors"
)

// SurveyExtensions are the file extensions a local survey may carry.
var SurveyExtensions = []string{".csv", ".xlsx"}

// PathValidator validates survey source files and export destinations.
type PathValidator struct {
	logger *slog.Logger
}

// NewPathValidator creates a new path validator
func NewPathValidator(logger *slog.Logger) *PathValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PathValidator{
		logger: logger.With(slog.String("component", "path_validator")),
	}
}

// ValidateSourceFile checks that path names a readable survey file. A
// "file://" prefix is accepted. Files with an unknown extension are parsed
// as CSV downstream, so only Excel lock files and directories are rejected
// beyond existence and readability.
func (v *PathValidator) ValidateSourceFile(path string) error {
	path = strings.TrimPrefix(strings.TrimSpace(path), "file://")
	if path == "" {
		return apierrors.NewAppValidationError("survey file path is empty")
	}

	if isLockFile(path) {
		v.logger.Warn("Rejecting temporary Excel file", slog.String("file", path))
		return apierrors.NewAppValidationError(fmt.Sprintf("%s is a temporary Excel file", path))
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		v.logger.Error("Survey file does not exist", slog.String("file", path))
		return apierrors.NewNotFoundError("survey file "+path, err)
	}
	if err != nil {
		return apierrors.NewNetworkError(fmt.Sprintf("failed to stat survey file %s", path), err)
	}
	if info.IsDir() {
		return apierrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Survey file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apierrors.NewNetworkError(fmt.Sprintf("survey file %s is not readable", path), err)
	}
	file.Close()

	if !HasSurveyExtension(path) {
		v.logger.Debug("Survey file has no known extension, it will be parsed as CSV",
			slog.String("file", path))
	}

	v.logger.Debug("Survey file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateExportPath checks that path can be written: it is not a directory
// or an Excel lock file, and its parent directory exists (it is created when
// missing) and accepts new files.
func (v *PathValidator) ValidateExportPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return apierrors.NewAppValidationError("export path is empty")
	}
	if isLockFile(path) {
		return apierrors.NewAppValidationError(fmt.Sprintf("%s is a temporary Excel file name", path))
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return apierrors.NewAppValidationError(fmt.Sprintf("%s is a directory", path))
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create export directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewNetworkError(fmt.Sprintf("failed to create export directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Export directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewNetworkError(fmt.Sprintf("export directory %s is not writable", dir), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}

// HasSurveyExtension reports whether path ends in one of SurveyExtensions.
func HasSurveyExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range SurveyExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

func isLockFile(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "~$")
}
