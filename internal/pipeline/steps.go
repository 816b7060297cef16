package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trainfetch/trainfetch/internal/model"
)

// LinkLister downloads the newline-delimited links list.
// Implemented by fetcher.ListFetcher.
type LinkLister interface {
	Fetch(ctx context.Context, listURL string) ([]string, error)
}

// PageFetcher retrieves one page's raw content, reporting which strategy
// produced it. Implemented by fetcher.Chain.
type PageFetcher interface {
	Fetch(ctx context.Context, link string) (content, strategy string, err error)
}

// TextExtractor converts raw HTML into stored plain text.
// Implemented by extractor.Extractor.
type TextExtractor interface {
	Text(source string) string
}

// DatasetSaver persists the dataset file. Implemented by
// report.DatasetWriter.
type DatasetSaver interface {
	Save(dataset *model.Dataset, path string) error
}

// HistoryStore records completed runs. Implemented by database.HistoryDB.
type HistoryStore interface {
	SaveRun(ctx context.Context, run *model.Run) (int64, error)
}

// DatasetPublisher uploads the dataset file. Implemented by
// publisher.Publisher.
type DatasetPublisher interface {
	Configured() bool
	Suppressed() bool
	Publish(ctx context.Context, path string) (string, error)
}

// FetchLinksStep downloads the links list that seeds the run.
//
// This step is fatal on failure: with no list there is nothing to process,
// and the alternative (an empty dataset written over the previous one)
// silently destroys data downstream.
type FetchLinksStep struct {
	lister   LinkLister
	linksURL string
	logger   *slog.Logger
}

// FetchLinksOption configures a FetchLinksStep.
type FetchLinksOption func(*FetchLinksStep)

// WithFetchLinksLogger sets a custom logger.
func WithFetchLinksLogger(logger *slog.Logger) FetchLinksOption {
	return func(s *FetchLinksStep) {
		s.logger = logger
	}
}

// NewFetchLinksStep creates the list-download step.
func NewFetchLinksStep(lister LinkLister, linksURL string, opts ...FetchLinksOption) *FetchLinksStep {
	s := &FetchLinksStep{
		lister:   lister,
		linksURL: linksURL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *FetchLinksStep) Name() string {
	return "fetch_links"
}

// Do downloads and parses the links list.
func (s *FetchLinksStep) Do(ctx context.Context, run *model.Run) error {
	links, err := s.lister.Fetch(ctx, s.linksURL)
	if err != nil {
		return fmt.Errorf("failed to fetch links list: %w", err)
	}

	run.Links = links
	s.logger.Info("links list fetched", "url", s.linksURL, "links", len(links))
	return nil
}

// HarvestStep processes every link: fetch, extract, record.
//
// Links are processed strictly in list order, one at a time. A failed link
// is recorded as an empty dataset entry and the run continues; only
// context cancellation aborts the walk. This step never returns a fetch
// error because partial data is the product, not a failure mode.
type HarvestStep struct {
	fetcher   PageFetcher
	extractor TextExtractor
	logger    *slog.Logger
}

// HarvestOption configures a HarvestStep.
type HarvestOption func(*HarvestStep)

// WithHarvestLogger sets a custom logger.
func WithHarvestLogger(logger *slog.Logger) HarvestOption {
	return func(s *HarvestStep) {
		s.logger = logger
	}
}

// NewHarvestStep creates the page-processing step.
func NewHarvestStep(fetcher PageFetcher, extractor TextExtractor, opts ...HarvestOption) *HarvestStep {
	s := &HarvestStep{
		fetcher:   fetcher,
		extractor: extractor,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *HarvestStep) Name() string {
	return "harvest"
}

// Do walks the link list and fills the dataset.
func (s *HarvestStep) Do(ctx context.Context, run *model.Run) error {
	for i, link := range run.Links {
		if err := ctx.Err(); err != nil {
			return err
		}

		started := time.Now()
		outcome := model.Outcome{Link: link}

		content, strategy, err := s.fetcher.Fetch(ctx, link)
		if err != nil {
			outcome.Err = err.Error()
			run.Dataset.Add(link, "")
			s.logger.Warn("page failed",
				"link", link, "progress", fmt.Sprintf("%d/%d", i+1, len(run.Links)), "error", err)
		} else {
			text := s.extractor.Text(content)
			outcome.Strategy = strategy
			outcome.Chars = len([]rune(text))
			run.Dataset.Add(link, text)
			s.logger.Info("page loaded",
				"link", link, "progress", fmt.Sprintf("%d/%d", i+1, len(run.Links)),
				"strategy", strategy, "chars", outcome.Chars)
		}

		outcome.Duration = time.Since(started)
		run.RecordOutcome(outcome)
	}

	s.logger.Info("harvest finished",
		"loaded", run.LoadedCount(), "failed", run.FailedCount())
	return nil
}

// SaveDatasetStep stamps and persists the dataset file.
// Fatal on failure: a run whose artifact cannot be written has failed.
type SaveDatasetStep struct {
	saver      DatasetSaver
	outputPath string
	now        func() time.Time
	logger     *slog.Logger
}

// SaveDatasetOption configures a SaveDatasetStep.
type SaveDatasetOption func(*SaveDatasetStep)

// WithSaveDatasetLogger sets a custom logger.
func WithSaveDatasetLogger(logger *slog.Logger) SaveDatasetOption {
	return func(s *SaveDatasetStep) {
		s.logger = logger
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) SaveDatasetOption {
	return func(s *SaveDatasetStep) {
		s.now = now
	}
}

// NewSaveDatasetStep creates the dataset-persistence step.
func NewSaveDatasetStep(saver DatasetSaver, outputPath string, opts ...SaveDatasetOption) *SaveDatasetStep {
	s := &SaveDatasetStep{
		saver:      saver,
		outputPath: outputPath,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *SaveDatasetStep) Name() string {
	return "save_dataset"
}

// Do stamps the dataset with the current time and writes it out.
func (s *SaveDatasetStep) Do(_ context.Context, run *model.Run) error {
	run.Dataset.Stamp(s.now())
	run.OutputPath = s.outputPath

	if err := s.saver.Save(run.Dataset, s.outputPath); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	s.logger.Info("dataset saved",
		"path", s.outputPath, "links", run.Dataset.Len(), "loaded", run.Dataset.LoadedCount())
	return nil
}

// RecordHistoryStep stores the run in the history database.
// Never fatal: history is an observability aid, and losing one record must
// not discard a freshly written dataset.
type RecordHistoryStep struct {
	store  HistoryStore
	logger *slog.Logger
}

// RecordHistoryOption configures a RecordHistoryStep.
type RecordHistoryOption func(*RecordHistoryStep)

// WithRecordHistoryLogger sets a custom logger.
func WithRecordHistoryLogger(logger *slog.Logger) RecordHistoryOption {
	return func(s *RecordHistoryStep) {
		s.logger = logger
	}
}

// NewRecordHistoryStep creates the history-recording step.
// A nil store turns the step into a no-op.
func NewRecordHistoryStep(store HistoryStore, opts ...RecordHistoryOption) *RecordHistoryStep {
	s := &RecordHistoryStep{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *RecordHistoryStep) Name() string {
	return "record_history"
}

// Do saves the run to the history database.
// The step runs last, so it stamps the completion time before persisting.
func (s *RecordHistoryStep) Do(ctx context.Context, run *model.Run) error {
	if s.store == nil {
		return nil
	}

	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	id, err := s.store.SaveRun(ctx, run)
	if err != nil {
		s.logger.Warn("failed to record run history", "error", err)
		return nil
	}

	s.logger.Debug("run recorded", "run_id", id)
	return nil
}

// PublishStep uploads the saved dataset to object storage.
//
// Never fatal: the local dataset file is the source of truth. Failures
// and suppression are recorded on the run so the summary can tell the
// operator what happened and what to do.
type PublishStep struct {
	publisher DatasetPublisher
	disabled  bool
	logger    *slog.Logger
}

// PublishOption configures a PublishStep.
type PublishOption func(*PublishStep)

// WithPublishLogger sets a custom logger.
func WithPublishLogger(logger *slog.Logger) PublishOption {
	return func(s *PublishStep) {
		s.logger = logger
	}
}

// WithPublishDisabled disables publishing regardless of configuration.
// Used for the --no-publish flag.
func WithPublishDisabled(disabled bool) PublishOption {
	return func(s *PublishStep) {
		s.disabled = disabled
	}
}

// NewPublishStep creates the upload step.
func NewPublishStep(publisher DatasetPublisher, opts ...PublishOption) *PublishStep {
	s := &PublishStep{
		publisher: publisher,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *PublishStep) Name() string {
	return "publish"
}

// Do uploads the dataset unless publishing is disabled, unconfigured, or
// suppressed by the environment.
func (s *PublishStep) Do(ctx context.Context, run *model.Run) error {
	if s.disabled || s.publisher == nil || !s.publisher.Configured() {
		run.PublishSkipped = true
		s.logger.Debug("publish skipped", "reason", "not configured or disabled")
		return nil
	}

	if s.publisher.Suppressed() {
		run.PublishSkipped = true
		s.logger.Info("publish suppressed by CI environment")
		return nil
	}

	key, err := s.publisher.Publish(ctx, run.OutputPath)
	if err != nil {
		run.PublishError = err.Error()
		s.logger.Warn("publish failed; dataset saved locally",
			"path", run.OutputPath, "error", err)
		return nil
	}

	run.PublishedKey = key
	return nil
}
