package app

import (
	"fmt"
	"time"

	"github.com/quantmind-br/treepack/internal/codec"
	"github.com/quantmind-br/treepack/internal/domain"
	"github.com/quantmind-br/treepack/internal/utils"
	"github.com/schollz/progressbar/v3"
)

// Materializer turns manifest entries into files, one entry at a time
type Materializer struct {
	codec        domain.Codec
	resolver     domain.PathResolver
	writer       domain.FileWriter
	logger       *utils.Logger
	showProgress bool
	dryRun       bool
}

// MaterializerOptions contains options for creating a Materializer
type MaterializerOptions struct {
	Codec        domain.Codec
	Resolver     domain.PathResolver
	Writer       domain.FileWriter
	Logger       *utils.Logger
	ShowProgress bool
	// DryRun skips directory creation; the writer decides what it commits
	DryRun bool
}

// NewMaterializer creates a materializer. Resolver and Writer are required;
// the base64 codec is used when Codec is nil.
func NewMaterializer(opts MaterializerOptions) (*Materializer, error) {
	if opts.Resolver == nil {
		return nil, fmt.Errorf("path resolver is required")
	}
	if opts.Writer == nil {
		return nil, fmt.Errorf("file writer is required")
	}
	if opts.Codec == nil {
		opts.Codec = codec.New()
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}

	return &Materializer{
		codec:        opts.Codec,
		resolver:     opts.Resolver,
		writer:       opts.Writer,
		logger:       opts.Logger.WithComponent("engine"),
		showProgress: opts.ShowProgress,
		dryRun:       opts.DryRun,
	}, nil
}

// Materialize processes every entry in manifest order and returns one
// outcome per entry. A failing entry never stops the pass.
func (m *Materializer) Materialize(manifest *domain.Manifest) *domain.Result {
	result := &domain.Result{
		Outcomes:  make([]domain.Outcome, 0, manifest.Len()),
		StartedAt: time.Now(),
	}

	var bar *progressbar.ProgressBar
	if m.showProgress && manifest.Len() > 0 {
		bar = utils.NewProgressBar(manifest.Len(), utils.DescMaterializing)
	}

	for _, entry := range manifest.Entries {
		outcome := m.materialize(entry)
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.OK() {
			m.logger.Debug().
				Str("path", outcome.Path).
				Str("target", outcome.Target).
				Int("bytes", outcome.Bytes).
				Bool("unchanged", outcome.Unchanged).
				Msg("Entry written")
		} else {
			m.logger.Warn().
				Err(outcome.Err).
				Str("path", outcome.Path).
				Str("kind", string(outcome.Kind)).
				Msg("Entry failed")
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)
	return result
}

// materialize runs decode, resolve, mkdir and write for one entry
func (m *Materializer) materialize(entry domain.Entry) domain.Outcome {
	content, err := m.codec.Decode(entry.Payload)
	if err != nil {
		return domain.Failed(entry.Path, domain.NewEntryError(entry.Path, err))
	}

	target, err := m.resolver.Resolve(entry.Path)
	if err != nil {
		return domain.Failed(entry.Path, domain.NewEntryError(entry.Path, err))
	}

	if !m.dryRun {
		if err := m.resolver.EnsureParent(target); err != nil {
			return domain.Failed(entry.Path, domain.NewEntryError(entry.Path, err))
		}
	}

	stat, err := m.writer.Write(target, content)
	if err != nil {
		return domain.Failed(entry.Path, domain.NewEntryError(entry.Path, err))
	}

	return domain.Written(entry.Path, target, stat.Bytes, stat.Unchanged)
}
