// Command surveyctl loads a survey, applies filters and prints the resulting
// KPIs as JSON. With -out the filtered view is also exported to CSV or XLSX.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"campuspulse/internal/config"
	"campuspulse/internal/dataset"
	"campuspulse/internal/infrastructure"
	"campuspulse/internal/services"
	"campuspulse/internal/validation"
	"campuspulse/pkg/contracts"
	"campuspulse/pkg/contracts/domain"
)

// report is the JSON document written to stdout.
type report struct {
	Source     string                    `json:"source"`
	Loaded     int                       `json:"loaded"`
	Criteria   domain.FilterCriteria     `json:"criteria"`
	KPIs       domain.KPISummary         `json:"kpis"`
	Sentiments domain.SentimentBreakdown `json:"sentiments"`
	Facilities map[string]float64        `json:"facilities"`
	Output     string                    `json:"output,omitempty"`
}

type options struct {
	configPath string
	source     string
	criteria   domain.FilterCriteria
	out        string
	logLevel   string
	version    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "surveyctl:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{criteria: domain.DefaultCriteria()}

	fs := flag.NewFlagSet("surveyctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.source, "source", "", "survey location: URL or file path (defaults to the configured source, then the embedded survey)")
	fs.StringVar(&opts.criteria.Facility, "facility", domain.FilterAll, "facility filter")
	fs.StringVar(&opts.criteria.Department, "department", domain.FilterAll, "department filter")
	fs.StringVar(&opts.criteria.Year, "year", domain.FilterAll, "year filter")
	fs.IntVar(&opts.criteria.MinRating, "min-rating", 0, "minimum rating")
	fs.StringVar(&opts.out, "out", "", "export the filtered view to a .csv or .xlsx file")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		_, err := fmt.Fprintln(stdout, contracts.GetVersionInfo())
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := infrastructure.NewJSONLogger(stderr, opts.logLevel, false).
		With(slog.String("component", "surveyctl"))
	ctx = infrastructure.EnsureTraceID(ctx)

	store := dataset.New(
		dataset.WithLogger(logger),
		dataset.WithHTTPClient(&http.Client{Timeout: cfg.Dataset.FetchTimeout}),
		dataset.WithMaxDocumentBytes(cfg.Dataset.MaxDocumentBytes),
	)
	svc := services.NewSurveyService(store, cfg.Dataset.Source, logger)

	if opts.source != "" && !dataset.IsHTTPLocation(opts.source) {
		if err := validation.NewPathValidator(logger).ValidateSourceFile(opts.source); err != nil {
			return fmt.Errorf("load survey: %w", err)
		}
	}

	result, err := svc.Load(ctx, opts.source)
	if err != nil {
		return fmt.Errorf("load survey: %w", err)
	}

	if _, err := svc.Filter(ctx, opts.criteria); err != nil {
		return err
	}

	if opts.out != "" {
		if err := svc.ExportFile(ctx, opts.out); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report{
		Source:     result.Source,
		Loaded:     result.Records,
		Criteria:   opts.criteria,
		KPIs:       svc.KPIs(ctx),
		Sentiments: svc.Sentiments(ctx),
		Facilities: svc.FacilityAverages(ctx),
		Output:     opts.out,
	})
}
