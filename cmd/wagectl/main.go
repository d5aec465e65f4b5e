// Command wagectl queries a prevailing wage dataset from the terminal.
//
// Usage:
//
//	go run ./cmd/wagectl -data data/sample_wages.csv -role "Software Developers" -state CA
//	go run ./cmd/wagectl -data ./oflc -format oflc -salary 150000 -role "Software Developers"
//	go run ./cmd/wagectl -data data/sample_wages.csv -roles
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"github.com/cheggaaa/pb/v3"
	"github.com/couchcryptid/h1b-wage-explorer/internal/dashboard"
	"github.com/couchcryptid/h1b-wage-explorer/internal/dataset"
	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
	"github.com/couchcryptid/h1b-wage-explorer/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pterm/pterm"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	dataPath string
	format   string
	values   url.Values
	salary   bool
	roles    bool
	states   bool
	noColor  bool
	progress bool
	verbose  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("wagectl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	dataPath := fs.String("data", "data/sample_wages.csv", "wage records CSV, or OFLC export directory with -format oflc")
	format := fs.String("format", string(dataset.FormatRecords), "source format: records or oflc")
	role := fs.String("role", "", "job role to filter by")
	level := fs.String("level", "", "wage level to filter by (1-4, I-IV, or \"Level II\")")
	state := fs.String("state", "", "state abbreviation or name")
	county := fs.String("county", "", "county within -state")
	minWage := fs.String("min-wage", "", "only wages at or above this annual amount")
	detail := fs.String("detail", string(dashboard.DetailState), "wage view granularity: state or county")
	salary := fs.String("salary", "", "classify this salary instead of listing wages")
	hourly := fs.Bool("hourly", false, "treat -salary as an hourly rate")
	limit := fs.Int("limit", 20, "maximum rows to print")
	roles := fs.Bool("roles", false, "list the job roles in the dataset")
	states := fs.Bool("states", false, "list the states in the dataset")
	noColor := fs.Bool("no-color", false, "disable colored output")
	progress := fs.Bool("progress", true, "show a progress bar while reading OFLC files")
	verbose := fs.Bool("v", false, "log load details to stderr")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set(dashboard.ParamJobRole, *role)
	set(dashboard.ParamWageLevel, *level)
	set(dashboard.ParamState, *state)
	set(dashboard.ParamCounty, *county)
	set(dashboard.ParamMinWage, *minWage)
	set(dashboard.ParamDetail, *detail)
	set(dashboard.ParamSalary, *salary)
	set(dashboard.ParamLimit, strconv.Itoa(*limit))
	if *hourly {
		values.Set(dashboard.ParamSalaryUnit, string(dashboard.UnitHourly))
	}

	return options{
		dataPath: *dataPath,
		format:   *format,
		values:   values,
		salary:   *salary != "",
		roles:    *roles,
		states:   *states,
		noColor:  *noColor,
		progress: *progress,
		verbose:  *verbose,
	}, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if opts.noColor {
		pterm.DisableColor()
		defer pterm.EnableColor()
	}

	logLevel := slog.LevelWarn
	if opts.verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))

	format, err := dataset.ParseFormat(opts.format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	snapshot, err := load(opts, format, logger, stderr)
	if err != nil {
		fmt.Fprintln(stderr, pterm.Red(err.Error()))
		return exitError
	}

	svc := dashboard.New(snapshot, logger, observability.NewMetricsWith(prometheus.NewRegistry()), dashboard.Options{})
	fmt.Fprint(stdout, renderDataset(svc.Dataset()))

	ctx := context.Background()
	switch {
	case opts.roles:
		fmt.Fprint(stdout, renderList("Job roles", svc.JobRoles()))
	case opts.states:
		fmt.Fprint(stdout, renderList("States", svc.States()))
	case opts.salary:
		req, err := dashboard.ParseClassifyRequest(opts.values)
		if err != nil {
			return reportQueryError(stderr, err)
		}
		view, err := svc.Classify(ctx, req)
		if err != nil {
			return reportQueryError(stderr, err)
		}
		fmt.Fprint(stdout, renderClassification(view))
	default:
		req, err := dashboard.ParseWageRequest(opts.values)
		if err != nil {
			return reportQueryError(stderr, err)
		}
		view, err := svc.Wages(ctx, req)
		if err != nil {
			return reportQueryError(stderr, err)
		}
		fmt.Fprint(stdout, renderWages(view))
	}
	return exitOK
}

// load reads the dataset, ticking a progress bar per OFLC source file.
func load(opts options, format dataset.Format, logger *slog.Logger, stderr io.Writer) (*dataset.Snapshot, error) {
	loadOpts := dataset.Options{Logger: logger}
	if format == dataset.FormatOFLC && opts.progress {
		bar := pb.New(len(dataset.OFLCFiles)).SetWriter(stderr).Start()
		defer bar.Finish()
		loadOpts.OnFile = func(name string, rows int) {
			logger.Debug("source file read", "file", name, "rows", rows)
			bar.Increment()
		}
	}
	return dataset.Load(opts.dataPath, format, loadOpts)
}

func reportQueryError(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, pterm.Red(err.Error()))
	var invalid *domain.InvalidCriteriaError
	if errors.As(err, &invalid) || errors.Is(err, dashboard.ErrTooManyRows) {
		return exitUsage
	}
	return exitError
}
