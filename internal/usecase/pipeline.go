package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/labeling"
	"TweetSentiment/internal/normalize"
	"TweetSentiment/internal/ports"
	"TweetSentiment/internal/report"
	"TweetSentiment/internal/table"
)

// DefaultMaxCount bounds the requested post count when no limit is configured.
const DefaultMaxCount = 1000

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.PostSource
	Store      ports.ArtifactStore
	Scorer     ports.Scorer
	Presenters []ports.Presenter
	History    ports.RunRepository
	Logger     *zap.Logger

	MaxCount int
	TopTerms int

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// Request carries the invocation parameters of one run.
type Request struct {
	Keyword      string
	Count        int
	ForceRefetch bool
	UseCached    bool
	// Resume reuses existing clean and sentiment artifacts when nothing
	// upstream was regenerated in this run.
	Resume bool
}

// Report summarizes what a run did.
type Report struct {
	RunID        string
	Executed     []domain.Stage
	Skipped      []domain.Stage
	Warnings     []string
	Presentation report.Presentation
}

// Pipeline implements the fetch, normalize, score and present workflow.
type Pipeline struct {
	source     ports.PostSource
	store      ports.ArtifactStore
	scorer     ports.Scorer
	resolver   *labeling.Resolver
	presenters []ports.Presenter
	history    ports.RunRepository
	logger     *zap.Logger
	maxCount   int
	topTerms   int
	now        func() time.Time
	newID      func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:     deps.Source,
		store:      deps.Store,
		scorer:     deps.Scorer,
		resolver:   labeling.NewResolver(deps.Scorer),
		presenters: deps.Presenters,
		history:    deps.History,
		logger:     deps.Logger,
		maxCount:   deps.MaxCount,
		topTerms:   deps.TopTerms,
		now:        deps.Now,
		newID:      deps.NewID,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.maxCount <= 0 {
		p.maxCount = DefaultMaxCount
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p
}

// Validate checks the basic ranges of a request.
func (r Request) Validate(maxCount int) error {
	if r.Count < 1 || r.Count > maxCount {
		return eris.Wrapf(domain.ErrInvalidRequest, "count %d outside 1..%d", r.Count, maxCount)
	}
	return nil
}

// run is the mutable state of one execution.
type run struct {
	report Report
	record domain.RunRecord
	logger *zap.Logger
}

func (r *run) executed(stage domain.Stage) {
	r.report.Executed = append(r.report.Executed, stage)
	r.record.Stages = append(r.record.Stages, stage)
	r.logger.Info("stage finished", zap.String("stage", string(stage)))
}

func (r *run) skipped(stage domain.Stage, reason string) {
	r.report.Skipped = append(r.report.Skipped, stage)
	r.logger.Info("stage skipped", zap.String("stage", string(stage)), zap.String("reason", reason))
}

func (r *run) warn(msg string, fields ...zap.Field) {
	r.report.Warnings = append(r.report.Warnings, msg)
	r.logger.Warn(msg, fields...)
}

// Run executes the stages in order, skipping the ones whose artifacts can
// be reused. Any failure other than a recoverable fetch error ends the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (Report, error) {
	if p.store == nil {
		return Report{}, eris.New("artifact store is not configured")
	}
	if err := req.Validate(p.maxCount); err != nil {
		return Report{}, err
	}

	id := p.newID()
	r := &run{
		report: Report{RunID: id},
		record: domain.RunRecord{
			ID:        id,
			Keyword:   req.Keyword,
			Count:     req.Count,
			Status:    domain.RunRunning,
			StartedAt: p.now().UTC(),
		},
		logger: p.logger.With(zap.String("run_id", id), zap.String("keyword", req.Keyword)),
	}
	r.logger.Info("pipeline started", zap.Int("count", req.Count),
		zap.Bool("force_refetch", req.ForceRefetch), zap.Bool("use_cached", req.UseCached))
	p.beginHistory(ctx, r)

	err := p.execute(ctx, req, r)
	p.finishHistory(ctx, r, err)
	if err != nil {
		r.logger.Error("pipeline failed", zap.Error(err))
		return r.report, err
	}

	r.logger.Info("pipeline finished",
		zap.Int("executed", len(r.report.Executed)),
		zap.Int("warnings", len(r.report.Warnings)))
	return r.report, nil
}

func (p *Pipeline) execute(ctx context.Context, req Request, r *run) error {
	fetched, err := p.fetchStage(ctx, req, r)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "before normalize")
	}

	normalized, err := p.normalizeStage(ctx, req, r, fetched)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "before score")
	}

	if err := p.scoreStage(ctx, req, r, normalized); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "before present")
	}

	return p.presentStage(ctx, req, r)
}

func (p *Pipeline) fetchStage(ctx context.Context, req Request, r *run) (bool, error) {
	rawExists := p.store.Exists(domain.ArtifactRaw)
	if !req.ForceRefetch && req.UseCached && rawExists {
		r.skipped(domain.StageFetch, "using cached raw artifact")
		return false, nil
	}

	written, err := p.fetch(ctx, req, r)
	if err == nil {
		r.executed(domain.StageFetch)
		return written, nil
	}

	if !rawExists {
		return false, err
	}
	r.warn("fetch failed, continuing with existing raw artifact", zap.Error(err))
	r.skipped(domain.StageFetch, "fetch failed")
	return false, nil
}

// fetch reports whether a new raw artifact was written.
func (p *Pipeline) fetch(ctx context.Context, req Request, r *run) (bool, error) {
	if strings.TrimSpace(req.Keyword) == "" {
		return false, eris.Wrap(domain.ErrInvalidRequest, "keyword is required to fetch")
	}
	if p.source == nil {
		return false, eris.Wrap(domain.ErrFetchFailed, "no post source configured")
	}

	r.logger.Info("fetching posts", zap.String("source", p.source.Name()))
	posts, err := p.source.Search(ctx, req.Keyword, req.Count)
	if err != nil {
		if !eris.Is(err, domain.ErrFetchFailed) && !eris.Is(err, domain.ErrRateLimited) {
			err = eris.Wrap(domain.ErrFetchFailed, err.Error())
		}
		return false, eris.Wrapf(err, "search %s", p.source.Name())
	}

	if len(posts) == 0 {
		r.warn("no posts found for keyword, raw artifact left untouched")
		return false, nil
	}

	raw := table.New(domain.RawColumns...)
	for _, post := range posts {
		if err := raw.Append(post.ID, post.Text); err != nil {
			return false, eris.Wrap(err, "build raw table")
		}
	}
	if err := p.store.Save(ctx, domain.ArtifactRaw, raw); err != nil {
		return false, eris.Wrap(err, "save raw artifact")
	}
	r.logger.Info("raw artifact written", zap.Int("rows", raw.Len()))
	return true, nil
}

func (p *Pipeline) normalizeStage(ctx context.Context, req Request, r *run, fetched bool) (bool, error) {
	if !p.store.Exists(domain.ArtifactRaw) {
		return false, eris.Wrapf(domain.ErrMissingArtifact, "normalize needs %s", p.store.Path(domain.ArtifactRaw))
	}
	if req.Resume && !fetched && p.store.Exists(domain.ArtifactClean) {
		r.skipped(domain.StageNormalize, "resuming from clean artifact")
		return false, nil
	}

	raw, err := p.store.Load(ctx, domain.ArtifactRaw)
	if err != nil {
		return false, eris.Wrap(err, "load raw artifact")
	}
	texts, err := raw.Column(domain.ColumnRawText)
	if err != nil {
		return false, eris.Wrap(domain.ErrMalformedInput, err.Error())
	}

	cleaned := normalize.All(texts)
	values := make([][]string, len(cleaned))
	for i, c := range cleaned {
		values[i] = []string{c}
	}
	clean, err := raw.WithColumns([]string{domain.ColumnCleanText}, values)
	if err != nil {
		return false, eris.Wrap(err, "build clean table")
	}
	if err := p.store.Save(ctx, domain.ArtifactClean, clean); err != nil {
		return false, eris.Wrap(err, "save clean artifact")
	}

	r.logger.Debug("clean artifact written", zap.Int("rows", clean.Len()))
	r.executed(domain.StageNormalize)
	return true, nil
}

func (p *Pipeline) scoreStage(ctx context.Context, req Request, r *run, normalized bool) error {
	if !p.store.Exists(domain.ArtifactClean) {
		return eris.Wrapf(domain.ErrMissingArtifact, "score needs %s", p.store.Path(domain.ArtifactClean))
	}
	if req.Resume && !normalized && p.store.Exists(domain.ArtifactSentiment) {
		r.skipped(domain.StageScore, "resuming from sentiment artifact")
		return nil
	}
	if p.scorer == nil {
		return eris.New("scorer is not configured")
	}

	clean, err := p.store.Load(ctx, domain.ArtifactClean)
	if err != nil {
		return eris.Wrap(err, "load clean artifact")
	}
	texts, err := clean.Column(domain.ColumnCleanText)
	if err != nil {
		return eris.Wrap(domain.ErrMalformedInput, err.Error())
	}

	values := make([][]string, len(texts))
	for i, text := range texts {
		values[i] = formatBundle(p.scorer.Score(text))
	}
	scored, err := clean.WithColumns(domain.ScoreColumns, values)
	if err != nil {
		return eris.Wrap(err, "build sentiment table")
	}
	if err := p.store.Save(ctx, domain.ArtifactSentiment, scored); err != nil {
		return eris.Wrap(err, "save sentiment artifact")
	}

	r.logger.Debug("sentiment artifact written", zap.Int("rows", scored.Len()))
	r.executed(domain.StageScore)
	return nil
}

func (p *Pipeline) presentStage(ctx context.Context, req Request, r *run) error {
	if !p.store.Exists(domain.ArtifactSentiment) {
		return eris.Wrapf(domain.ErrMissingArtifact, "present needs %s", p.store.Path(domain.ArtifactSentiment))
	}

	scored, err := p.store.Load(ctx, domain.ArtifactSentiment)
	if err != nil {
		return eris.Wrap(err, "load sentiment artifact")
	}

	res, err := p.resolver.Resolve(scored)
	if err != nil {
		return err
	}
	r.record.Strategy = string(res.Strategy)
	if res.Resolved() {
		r.record.LabelCounts = labeling.Counts(res.Labels)
		r.logger.Info("labels resolved", zap.String("strategy", string(res.Strategy)), zap.String("column", res.Column))
	} else {
		r.warn("could not find or infer sentiment labels")
	}

	// Present is recorded before presenters run so they see the full stage list.
	r.executed(domain.StagePresent)

	presentation := report.Build(scored, res, report.Options{TopTerms: p.topTerms})
	presentation.RunID = r.report.RunID
	presentation.Keyword = req.Keyword
	presentation.Executed = r.report.Executed
	presentation.Skipped = r.report.Skipped
	presentation.Warnings = r.report.Warnings
	r.report.Presentation = presentation

	for _, presenter := range p.presenters {
		if err := presenter.Present(ctx, presentation); err != nil {
			return eris.Wrap(err, "present results")
		}
	}
	return nil
}

func formatBundle(b domain.ScoreBundle) []string {
	return []string{
		formatFloat(b.Compound),
		formatFloat(b.Neg),
		formatFloat(b.Neu),
		formatFloat(b.Pos),
		formatFloat(b.Polarity),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (p *Pipeline) beginHistory(ctx context.Context, r *run) {
	if p.history == nil {
		return
	}
	if err := p.history.Begin(ctx, r.record); err != nil {
		r.logger.Warn("record run start", zap.Error(err))
	}
}

func (p *Pipeline) finishHistory(ctx context.Context, r *run, runErr error) {
	if p.history == nil {
		return
	}

	r.record.FinishedAt = p.now().UTC()
	r.record.Status = domain.RunSucceeded
	if runErr != nil {
		r.record.Status = domain.RunFailed
		r.record.Error = runErr.Error()
	}
	if err := p.history.Finish(context.WithoutCancel(ctx), r.record); err != nil {
		r.logger.Warn("record run finish", zap.Error(err))
	}
}
