// Package app wires the loader, materialization engine, cleanup manager and
// run ledger into the two-phase materialize/finalize protocol.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/quantmind-br/treepack/internal/cleanup"
	"github.com/quantmind-br/treepack/internal/codec"
	"github.com/quantmind-br/treepack/internal/config"
	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/quantmind-br/treepack/internal/manifest"
	"github.com/quantmind-br/treepack/internal/output"
	"github.com/quantmind-br/treepack/internal/resolver"
	"github.com/quantmind-br/treepack/internal/state"
	"github.com/quantmind-br/treepack/internal/utils"
)

// Exit codes of the invocation contract
const (
	ExitSuccess         = 0
	ExitParseError      = 1
	ExitPartialFailure  = 2
	ExitCleanupWarnings = 3
)

// Phase names the last phase a run reached
type Phase string

// Run phases
const (
	PhaseParse       Phase = "parse"
	PhaseMaterialize Phase = "materialize"
	PhaseFinalize    Phase = "finalize"
)

// LoaderFactory builds a manifest loader for a format override
type LoaderFactory func(format domain.Format) domain.ManifestLoader

// Orchestrator coordinates a materialization run
type Orchestrator struct {
	config        *config.Config
	logger        *utils.Logger
	codec         domain.Codec
	loaderFactory LoaderFactory
	ledger        *state.Manager
	cleaner       *cleanup.Manager
	showProgress  bool
	dryRun        bool
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	domain.CommonOptions
	Config        *config.Config
	Logger        *utils.Logger
	Codec         domain.Codec
	LoaderFactory LoaderFactory
	Remover       domain.Remover
}

// RunOptions describes one materialize invocation
type RunOptions struct {
	// Manifest is the manifest file or companion directory
	Manifest string
	// Root defaults to the manifest's directory
	Root      string
	Format    domain.Format
	Artifacts []string
	Report    string
	DryRun    bool
	NoCleanup bool
}

// RunReport is the outcome of Run or Finalize
type RunReport struct {
	RunID     string
	Manifest  string
	Root      string
	Phase     Phase
	Err       error
	Parsed    *domain.Manifest
	Result    *domain.Result
	Artifacts []string
	Cleanup   *domain.CleanupReport
	DryRun    bool
	Duration  time.Duration
}

// ExitCode maps the report onto the invocation contract
func (r *RunReport) ExitCode() int {
	switch {
	case r == nil:
		return ExitParseError
	case r.Err != nil:
		return ExitParseError
	case r.Result != nil && !r.Result.Succeeded():
		return ExitPartialFailure
	case r.Cleanup.HasWarnings():
		return ExitCleanupWarnings
	default:
		return ExitSuccess
	}
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config

	// Validate config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Create logger
	logger := opts.Logger
	if logger == nil {
		logLevel := "info"
		logFormat := utils.FormatAuto
		if cfg.Logging.Level != "" {
			logLevel = cfg.Logging.Level
		}
		if cfg.Logging.Format != "" {
			logFormat = cfg.Logging.Format
		}
		if opts.Verbose {
			logLevel = "debug"
		}
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   logLevel,
			Format:  logFormat,
			Verbose: opts.Verbose,
		})
	}

	codecImpl := opts.Codec
	if codecImpl == nil {
		codecImpl = codec.New()
	}

	loaderFactory := opts.LoaderFactory
	if loaderFactory == nil {
		loaderFactory = func(format domain.Format) domain.ManifestLoader {
			return manifest.NewLoader(manifest.LoaderOptions{Format: format})
		}
	}

	// Zero configured retries means none
	retries := cfg.Cleanup.MaxRetries
	if retries == 0 {
		retries = -1
	}

	return &Orchestrator{
		config:        cfg,
		logger:        logger,
		codec:         codecImpl,
		loaderFactory: loaderFactory,
		ledger: state.NewManager(state.ManagerOptions{
			Dir:      cfg.State.Directory,
			Logger:   logger,
			Disabled: !cfg.State.Enabled,
		}),
		cleaner: cleanup.NewManager(cleanup.ManagerOptions{
			Remover: opts.Remover,
			Retry: cleanup.RetrierOptions{
				MaxRetries:      retries,
				InitialInterval: cfg.Cleanup.RetryDelay,
			},
			Logger: logger,
		}),
		showProgress: !opts.Verbose && utils.IsTerminal(os.Stderr),
		dryRun:       opts.DryRun,
	}, nil
}

// Ledger returns the run ledger
func (o *Orchestrator) Ledger() *state.Manager {
	return o.ledger
}

// Run executes the two-phase protocol for one manifest.
//
// Parse failures abort before anything is written and are reported in
// RunReport.Err. Phase 1 materializes every entry. Phase 2 removes the
// consumed artifacts only when phase 1 fully succeeded, cleanup is enabled
// and this is not a dry run. The returned error is reserved for failures
// to set the run up at all, such as a locked base root.
func (o *Orchestrator) Run(opts RunOptions) (*RunReport, error) {
	startTime := time.Now()

	location, err := filepath.Abs(opts.Manifest)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest location: %w", err)
	}
	root, err := DetectRoot(location, opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving base root: %w", err)
	}

	dryRun := opts.DryRun || o.dryRun || o.config.Output.DryRun
	rec := state.NewRunRecord(location, root)
	logger := o.logger.WithRun(rec.RunID).WithManifest(location, root)

	report := &RunReport{
		RunID:    rec.RunID,
		Manifest: location,
		Root:     root,
		Phase:    PhaseParse,
		DryRun:   dryRun,
	}
	collector := output.NewReportCollector(output.CollectorOptions{
		Path:     opts.Report,
		Manifest: location,
		BaseRoot: root,
	})
	collector.SetRun(rec.RunID)

	lock := state.NewRootLock(o.config.State.LockDir, root)
	if err := lock.TryLock(); err != nil {
		return nil, err
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil {
			logger.Warn().Err(uerr).Msg("Failed to release base root lock")
		}
	}()

	logger.Info().
		Bool("dry_run", dryRun).
		Msg("Starting materialization")

	m, err := o.loaderFactory(opts.Format).Load(location)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(domain.KindOf(err))).Msg("Manifest rejected")
		// A record from an earlier run no longer describes this manifest
		if derr := o.ledger.Delete(location); derr != nil {
			return nil, fmt.Errorf("clearing stale run record: %w", derr)
		}
		if !domain.IsParseError(err) {
			return nil, fmt.Errorf("loading manifest: %w", err)
		}
		report.Err = err
		report.Duration = time.Since(startTime)
		o.flush(collector, report, logger)
		return report, nil
	}
	report.Parsed = m

	res, err := resolver.New(resolver.Options{Base: root})
	if err != nil {
		return nil, err
	}
	writer := output.NewWriter(output.WriterOptions{
		BaseDir:    root,
		LineEnding: o.config.LineEnding(),
		FileMode:   o.config.FileMode(),
		DryRun:     dryRun,
	})
	if err := writer.EnsureBaseDir(); err != nil {
		return nil, fmt.Errorf("creating base root: %w", err)
	}

	materializer, err := NewMaterializer(MaterializerOptions{
		Codec:        o.codec,
		Resolver:     res,
		Writer:       writer,
		Logger:       logger,
		ShowProgress: o.showProgress,
		DryRun:       dryRun,
	})
	if err != nil {
		return nil, err
	}

	// Phase 1
	report.Phase = PhaseMaterialize
	result := materializer.Materialize(m)
	report.Result = result
	collector.AddResult(result)

	artifacts, err := DetectArtifacts(m, location, opts.Artifacts, o.config.Cleanup.Patterns, o.config.Cleanup.Exclude)
	if err != nil {
		logger.Warn().Err(err).Msg("Artifact discovery failed, only the manifest will be finalized")
		artifacts, _ = DetectArtifacts(m, location, opts.Artifacts, nil, nil)
	}
	report.Artifacts = artifacts

	rec.Format = m.Format
	rec.Artifacts = artifacts
	rec.Apply(result)
	if !dryRun {
		o.save(rec, logger)
	}

	logger.Info().
		Int("entries", m.Len()).
		Int("written", len(result.Written())).
		Int("failed", len(result.Failures())).
		Str("status", string(result.Status())).
		Msg("Materialization finished")

	// Phase 2
	switch {
	case !result.Succeeded():
		logger.Warn().Msg("Partial failure, manifest and written files left in place")
	case dryRun:
		logger.Info().Int("artifacts", len(artifacts)).Msg("Dry run, skipping cleanup")
	case opts.NoCleanup || !o.config.Cleanup.Enabled:
		logger.Info().Msg("Cleanup disabled, run finalize to remove artifacts")
	default:
		report.Phase = PhaseFinalize
		cleanupReport, err := o.cleaner.Finalize(result, artifacts)
		if err != nil {
			return nil, err
		}
		report.Cleanup = cleanupReport
		collector.SetCleanup(cleanupReport)
		rec.SetCleanup(cleanupReport)
		o.save(rec, logger)
	}

	report.Duration = time.Since(startTime)
	o.flush(collector, report, logger)

	logger.Info().
		Dur("duration", report.Duration).
		Int("exit_code", report.ExitCode()).
		Msg("Run completed")

	return report, nil
}

// Finalize reruns phase 2 for a manifest from its run record. It refuses
// with cleanup.ErrNotFinalizable unless the recorded run fully succeeded.
func (o *Orchestrator) Finalize(location string) (*RunReport, error) {
	startTime := time.Now()

	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest location: %w", err)
	}

	rec, err := o.ledger.Load(abs)
	if err != nil {
		if errors.Is(err, state.ErrStateNotFound) {
			return nil, fmt.Errorf("no recorded run for %s: %w", abs, err)
		}
		return nil, err
	}
	logger := o.logger.WithRun(rec.RunID).WithManifest(abs, rec.BaseRoot)

	if !rec.Finalizable() {
		logger.Warn().Str("status", string(rec.Status)).Msg("Recorded run did not succeed")
		return nil, fmt.Errorf("%w: recorded status is %s", cleanup.ErrNotFinalizable, rec.Status)
	}

	lock := state.NewRootLock(o.config.State.LockDir, rec.BaseRoot)
	if err := lock.TryLock(); err != nil {
		return nil, err
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil {
			logger.Warn().Err(uerr).Msg("Failed to release base root lock")
		}
	}()

	result := rec.Result()
	cleanupReport, err := o.cleaner.Finalize(result, rec.Artifacts)
	if err != nil {
		return nil, err
	}
	rec.SetCleanup(cleanupReport)
	o.save(rec, logger)

	report := &RunReport{
		RunID:     rec.RunID,
		Manifest:  rec.Manifest,
		Root:      rec.BaseRoot,
		Phase:     PhaseFinalize,
		Result:    result,
		Artifacts: rec.Artifacts,
		Cleanup:   cleanupReport,
		Duration:  time.Since(startTime),
	}

	logger.Info().
		Int("removed", len(cleanupReport.Removed)).
		Int("missing", len(cleanupReport.Missing)).
		Int("warnings", len(cleanupReport.Warnings)).
		Msg("Finalize completed")

	return report, nil
}

func (o *Orchestrator) save(rec *state.RunRecord, logger *utils.Logger) {
	if err := o.ledger.Save(rec); err != nil {
		logger.Warn().Err(err).Msg("Failed to save run record")
	}
}

func (o *Orchestrator) flush(collector *output.ReportCollector, report *RunReport, logger *utils.Logger) {
	collector.SetPhase(string(report.Phase), report.ExitCode())
	collector.SetError(report.Err)
	if err := collector.Flush(); err != nil {
		logger.Warn().Err(err).Msg("Failed to write run report")
	}
}
