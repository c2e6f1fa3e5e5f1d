package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AHSANooo/Clashes-Detector/internal/repository"
	"github.com/AHSANooo/Clashes-Detector/internal/service"
	"github.com/AHSANooo/Clashes-Detector/internal/timetable"
	"github.com/AHSANooo/Clashes-Detector/pkg/config"
)

type rootOptions struct {
	grid        string
	sheet       string
	apiKey      string
	credentials string
	timeout     time.Duration
	verbose     bool
}

// app holds the services a command runs against.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	timetable *service.TimetableService
	export    *service.ExportService
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "clashctl",
		Short: "Inspect a university timetable grid for clashes",
		Long: `clashctl reads the weekday sheets of a timetable grid, lists the courses it
contains, reports clashes between chosen sections and searches for the
section assignment with the fewest clashes and gaps.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.grid, "grid", "g", "", "Path to a timetable grid JSON file (defaults to GRID_FILE)")
	flags.StringVar(&opts.sheet, "sheet", "", "Google spreadsheet ID to read instead of a file")
	flags.StringVar(&opts.apiKey, "api-key", "", "Sheets API key")
	flags.StringVar(&opts.credentials, "credentials", "", "Service account credentials file for the Sheets API")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Timeout for reading the grid and searching (defaults to config)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress to stderr")

	cmd.AddCommand(
		newCoursesCmd(opts),
		newTimetableCmd(opts),
		newClashesCmd(opts),
		newOptimizeCmd(opts),
	)
	return cmd
}

// setup resolves configuration, letting flags override the environment.
func (o *rootOptions) setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.grid != "" {
		cfg.Grid.Source = config.GridSourceFile
		cfg.Grid.File = o.grid
	}
	if o.sheet != "" {
		cfg.Grid.Source = config.GridSourceSheets
		cfg.Grid.SpreadsheetID = o.sheet
	}
	if o.apiKey != "" {
		cfg.Grid.APIKey = o.apiKey
	}
	if o.credentials != "" {
		cfg.Grid.CredentialsFile = o.credentials
	}
	if o.timeout > 0 {
		cfg.Grid.Timeout = o.timeout
		cfg.Search.Timeout = o.timeout
	}

	logr, err := newCLILogger(o.verbose)
	if err != nil {
		return nil, err
	}

	var source service.GridSource
	switch cfg.Grid.Source {
	case config.GridSourceSheets:
		source, err = repository.NewGridSheetsRepository(ctx, repository.SheetsConfig{
			SpreadsheetID:   cfg.Grid.SpreadsheetID,
			APIKey:          cfg.Grid.APIKey,
			CredentialsFile: cfg.Grid.CredentialsFile,
			Timeout:         cfg.Grid.Timeout,
		}, logr)
		if err != nil {
			return nil, err
		}
	default:
		source = repository.NewGridFileRepository(cfg.Grid.File, logr)
	}

	engine := timetable.NewEngine(timetable.NewTimeParser(timetable.MeridiemPolicy{
		MorningFrom: cfg.Time.MorningFrom,
		MorningTo:   cfg.Time.MorningTo,
		AfternoonTo: cfg.Time.AfternoonTo,
	}))
	// One-shot process: nothing to share a cache with.
	cacheSvc := service.NewCacheService(nil, nil, 0, logr, false)
	timetableSvc := service.NewTimetableService(source, engine, cacheSvc, nil, nil, logr, service.TimetableConfig{
		MaxLeaves:     cfg.Search.MaxLeaves,
		SearchTimeout: cfg.Search.Timeout,
		ProposalTTL:   cfg.Search.ProposalTTL,
	})

	return &app{
		cfg:       cfg,
		logger:    logr,
		timetable: timetableSvc,
		export:    service.NewExportService(timetableSvc, nil, logr, nil, nil),
	}, nil
}

func newCLILogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.Kitchen)
	return zcfg.Build()
}
