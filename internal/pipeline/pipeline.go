// Package pipeline runs a changeset through the full review flow:
// classification, redaction, budgeting, model call, interpretation,
// audit persistence, and the merge gate.
package pipeline

import (
	"context"
	"fmt"

	"github.com/tildaslashalef/reviewgate/internal/audit"
	"github.com/tildaslashalef/reviewgate/internal/config"
	"github.com/tildaslashalef/reviewgate/internal/gate"
	"github.com/tildaslashalef/reviewgate/internal/interpret"
	"github.com/tildaslashalef/reviewgate/internal/llm"
	"github.com/tildaslashalef/reviewgate/internal/loggy"
	"github.com/tildaslashalef/reviewgate/internal/patch"
	"github.com/tildaslashalef/reviewgate/internal/review"
)

// Service orchestrates one review run end to end.
type Service struct {
	config      *config.Config
	logger      *loggy.Logger
	classifier  *patch.Classifier
	budgeter    *patch.Budgeter
	interpreter *interpret.Interpreter
	evaluator   *gate.Evaluator
	client      llm.Client
	audits      audit.Repository
}

// NewService wires the pipeline stages from configuration.
func NewService(cfg *config.Config, logger *loggy.Logger, client llm.Client, audits audit.Repository) (*Service, error) {
	evaluator, err := gate.NewEvaluator(cfg.Review.BlockingSeverities, logger)
	if err != nil {
		return nil, fmt.Errorf("configuring merge gate: %w", err)
	}

	limits := patch.Limits{
		PerFile: cfg.Review.MaxFileChars,
		Total:   cfg.Review.MaxTotalChars,
		Global:  cfg.Review.MaxPayloadChars,
	}

	return &Service{
		config:      cfg,
		logger:      logger,
		classifier:  patch.NewClassifier(logger),
		budgeter:    patch.NewBudgeter(limits, logger),
		interpreter: interpret.NewInterpreter(logger),
		evaluator:   evaluator,
		client:      client,
		audits:      audits,
	}, nil
}

// Run reviews the given changeset and persists an audit artifact. The
// returned result always carries a usable review. A model or transport
// failure is returned as an error; a malformed model response is not,
// it surfaces as a parse-failure review instead.
func (s *Service) Run(ctx context.Context, subject string, files []patch.File) (*review.Result, error) {
	included, entries := s.prepare(files)

	if len(included) == 0 {
		s.logger.Info("no reviewable files in changeset", "subject", subject)
		result := review.NewResult(subject, s.config.Claude.Model, "", review.Review{
			Summary: "No reviewable changes in this changeset.",
			Risk:    review.RiskLow,
		}, false)
		return s.finish(ctx, result)
	}

	payload := s.budgeter.Build(included)
	prompt, err := review.BuildChangesetPrompt(subject, entries, payload)
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	s.logger.Debug("prompt assembled",
		"subject", subject,
		"model", s.config.Claude.Model,
		"files", len(included),
		"payload_chars", len(payload))

	resp, err := s.client.Generate(ctx, llm.Request{
		Model:       s.config.Claude.Model,
		System:      review.BuildSystemInstruction(),
		Prompt:      prompt,
		MaxTokens:   s.config.Claude.MaxTokens,
		Temperature: s.config.Claude.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating review: %w", err)
	}

	rev := s.interpreter.Interpret(resp.Content)
	result := review.NewResult(subject, resp.Model, resp.Content, rev, false)
	return s.finish(ctx, result)
}

// prepare classifies every file, drops excluded ones, and redacts the
// patches that remain.
func (s *Service) prepare(files []patch.File) ([]patch.File, []review.FileEntry) {
	var included []patch.File
	var entries []review.FileEntry

	for _, f := range files {
		decision := s.classifier.Classify(f.Path)
		if !decision.Included {
			continue
		}

		included = append(included, patch.File{
			Path:  f.Path,
			Patch: patch.Redact(f.Patch),
		})
		entries = append(entries, review.FileEntry{
			Path:     f.Path,
			Language: decision.Language,
		})
	}

	return included, entries
}

// finish applies the merge gate and saves the audit artifact.
func (s *Service) finish(ctx context.Context, result *review.Result) (*review.Result, error) {
	result.Blocked = s.evaluator.Blocks(result.Review)

	if err := s.audits.SaveResult(ctx, result); err != nil {
		return nil, fmt.Errorf("saving audit artifact: %w", err)
	}

	s.logger.Info("review completed",
		"subject", result.Subject,
		"audit_id", result.ID,
		"risk", result.Review.Risk,
		"findings", len(result.Review.Findings),
		"blocked", result.Blocked)

	return result, nil
}

// Blocking exposes the configured blocking severities for display.
func (s *Service) Blocking() []review.Severity {
	return s.evaluator.Blocking()
}
