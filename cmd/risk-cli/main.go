package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/student-risk-api/internal/dto"
	"github.com/noah-isme/student-risk-api/internal/models"
	"github.com/noah-isme/student-risk-api/internal/presenter"
	"github.com/noah-isme/student-risk-api/internal/service"
	"github.com/noah-isme/student-risk-api/pkg/config"
	appErrors "github.com/noah-isme/student-risk-api/pkg/errors"
	"github.com/noah-isme/student-risk-api/pkg/logger"
	"github.com/noah-isme/student-risk-api/pkg/storage"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// flagNames maps request fields to the flags that populate them.
var flagNames = map[string]string{
	"gad7_score":      "--gad7",
	"gpa":             "--gpa",
	"attendance_rate": "--attendance",
	"psych_history":   "--psych-history",
	"failed_courses":  "--failed",
}

type options struct {
	gad7         int
	gpa          float64
	attendance   float64
	psychHistory string
	failed       int
	pdf          bool

	roster string
	format string
	tier   string
	top    int

	out     string
	verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("risk-cli", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.IntVar(&opts.gad7, "gad7", 0, "GAD-7 questionnaire score (0-21)")
	fs.Float64Var(&opts.gpa, "gpa", 0, "grade point average on the 0-20 scale")
	fs.Float64Var(&opts.attendance, "attendance", 0, "attendance rate in percent")
	fs.StringVar(&opts.psychHistory, "psych-history", "", "previous psychological history (yes|no)")
	fs.IntVar(&opts.failed, "failed", 0, "number of failed courses")
	fs.BoolVar(&opts.pdf, "pdf", false, "also write a printable PDF result card to --out")
	fs.StringVar(&opts.roster, "roster", "", "roster CSV to score instead of a single student")
	fs.StringVar(&opts.format, "format", dto.FormatText, "roster output: text, csv or pdf")
	fs.StringVar(&opts.tier, "tier", "", "only list students in this tier (LOW, MODERATE, HIGH)")
	fs.IntVar(&opts.top, "top", 0, "priority list length (defaults to ROSTER_TOP_N)")
	fs.StringVar(&opts.out, "out", ".", "directory for generated CSV/PDF documents")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "error:", err)
		fs.Usage()
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitError
	}
	logr, err := logger.NewCLI(cfg, opts.verbose)
	if err != nil {
		fmt.Fprintf(stderr, "failed to init logger: %v\n", err)
		return exitError
	}
	defer logr.Sync() //nolint:errcheck

	app := newApp(cfg, logr, stdout)
	if opts.roster != "" {
		err = app.roster(ctx, opts)
	} else {
		err = app.single(ctx, fs, opts)
	}
	if err != nil {
		printError(stderr, err)
		return exitError
	}
	return exitOK
}

type app struct {
	assessments *service.AssessmentService
	rosters     *service.RosterService
	reports     *service.ReportService
	renderer    presenter.Renderer
	logger      *zap.Logger
	stdout      io.Writer
}

func newApp(cfg *config.Config, logr *zap.Logger, stdout io.Writer) *app {
	// no latency on the command line; that knob belongs to the HTTP form
	assessments := service.NewAssessmentService(service.NewValidator(), nil, logr, service.AssessmentServiceConfig{})
	rosters := service.NewRosterService(assessments, nil, logr, service.RosterServiceConfig{
		MaxRows: cfg.Roster.MaxRows,
		TopN:    cfg.Roster.TopN,
	})
	reports := service.NewReportService(service.ReportConfig{Title: cfg.Report.Title}, nil, logr, nil, nil)
	return &app{
		assessments: assessments,
		rosters:     rosters,
		reports:     reports,
		renderer:    presenter.NewTextRenderer(),
		logger:      logr,
		stdout:      stdout,
	}
}

func (a *app) single(ctx context.Context, fs *pflag.FlagSet, opts options) error {
	var req dto.AssessmentRequest
	if fs.Changed("gad7") {
		req.GAD7Score = &opts.gad7
	}
	if fs.Changed("gpa") {
		req.GPA = &opts.gpa
	}
	if fs.Changed("attendance") {
		req.AttendanceRate = &opts.attendance
	}
	if fs.Changed("psych-history") {
		req.PsychHistory = &opts.psychHistory
	}
	if fs.Changed("failed") {
		req.FailedCourses = &opts.failed
	}

	resp, err := a.assessments.Assess(ctx, req)
	if err != nil {
		return err
	}
	if err := a.renderer.Render(a.stdout, resp.Result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if !opts.pdf {
		return nil
	}
	doc, err := a.reports.AssessmentPDF(resp)
	if err != nil {
		return err
	}
	return a.save(opts.out, doc)
}

func (a *app) roster(ctx context.Context, opts options) error {
	format := strings.ToLower(opts.format)
	switch format {
	case dto.FormatText, dto.FormatCSV, dto.FormatPDF:
	default:
		return appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported roster format %q", opts.format))
	}

	file, err := os.Open(opts.roster)
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer file.Close() //nolint:errcheck

	report, err := a.rosters.Assess(ctx, file, dto.RosterOptions{
		Tier: models.RiskTier(strings.ToUpper(opts.tier)),
		Top:  opts.top,
	})
	if err != nil {
		return err
	}
	if format == dto.FormatText {
		if err := presenter.RenderRosterSummary(a.stdout, report); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		return nil
	}
	doc, err := a.reports.Roster(report, format)
	if err != nil {
		return err
	}
	return a.save(opts.out, doc)
}

func (a *app) save(dir string, doc *dto.Document) error {
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		return err
	}
	path, err := store.Save(doc.Filename, doc.Content)
	if err != nil {
		return err
	}
	a.logger.Debug("document written", zap.String("path", path), zap.Int("bytes", len(doc.Content)))
	fmt.Fprintf(a.stdout, "wrote %s\n", path)
	return nil
}

func printError(w io.Writer, err error) {
	var appErr *appErrors.Error
	if !errors.As(err, &appErr) {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "error: %s\n", appErr.Message)
	for _, d := range appErr.Details {
		field := d.Field
		if flag, ok := flagNames[field]; ok {
			field = flag
		}
		fmt.Fprintf(w, "  %s %s\n", field, d.Message)
	}
}
