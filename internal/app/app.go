package app

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"TweetSentiment/internal/config"
	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/infrastructure/parser"
	"TweetSentiment/internal/infrastructure/present"
	"TweetSentiment/internal/infrastructure/scheduler"
	"TweetSentiment/internal/infrastructure/storage"
	"TweetSentiment/internal/infrastructure/telegram"
	"TweetSentiment/internal/infrastructure/twitter"
	"TweetSentiment/internal/labeling"
	"TweetSentiment/internal/ports"
	"TweetSentiment/internal/report"
	"TweetSentiment/internal/sentiment"
	"TweetSentiment/internal/source"
	"TweetSentiment/internal/table"
	"TweetSentiment/internal/usecase"
	"TweetSentiment/pkg/logger"
)

// Options carry process-level wiring that does not live in the config file.
type Options struct {
	// Out receives the console report; nil uses os.Stdout.
	Out io.Writer
	// HTTPClient overrides the client used by fetch sources.
	HTTPClient *http.Client
	// Presenters replace the configured presenters when non-nil.
	Presenters []ports.Presenter
}

// Application wires configs to use cases.
type Application struct {
	cfg      config.Config
	logger   *zap.Logger
	scorer   *sentiment.Scorer
	store    *storage.FileStore
	history  *storage.HistoryRepository
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *zap.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = zap.NewNop()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	scorer, err := sentiment.New(sentiment.Options{LexiconOverridePath: cfg.Scoring.LexiconPath})
	if err != nil {
		return nil, eris.Wrap(err, "build scorer")
	}

	registry := source.NewRegistry()
	registry.Register(twitter.NewClient(twitter.Options{
		BaseURL:           cfg.Source.Twitter.BaseURL,
		BearerToken:       cfg.Source.Twitter.BearerToken,
		Language:          cfg.Source.Twitter.Language,
		PageSize:          cfg.Source.Twitter.PageSize,
		RequestsPerSecond: cfg.Source.Twitter.RequestsPerSecond,
		Timeout:           cfg.Source.Twitter.Timeout,
	}, opts.HTTPClient, logger.Component(baseLogger, "source.twitter")))
	registry.Register(parser.NewHTMLSource(opts.HTTPClient, parser.HTMLOptions{
		URLTemplate:  cfg.Source.HTML.URLTemplate,
		ItemSelector: cfg.Source.HTML.ItemSelector,
		TextSelector: cfg.Source.HTML.TextSelector,
		IDAttribute:  cfg.Source.HTML.IDAttribute,
		MaxPages:     cfg.Source.HTML.MaxPages,
	}, logger.Component(baseLogger, "source.html")))

	fetcher := source.NewFetcher(registry, cfg.Source.Name, logger.Component(baseLogger, "source"))

	store := storage.NewFileStore(cfg.Storage.DataDir, storage.FileNames{
		Raw:       cfg.Storage.RawFile,
		Clean:     cfg.Storage.CleanFile,
		Sentiment: cfg.Storage.SentimentFile,
	})

	a := &Application{cfg: cfg, logger: baseLogger, scorer: scorer, store: store}

	var history ports.RunRepository
	if cfg.History.IsEnabled() {
		repo, err := storage.OpenHistory(ctx, cfg.History.DSN)
		if err != nil {
			return nil, eris.Wrap(err, "open run history")
		}
		a.history = repo
		history = repo
	}

	presenters := opts.Presenters
	if presenters == nil {
		presenters = a.presenters(opts.Out)
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     fetcher,
		Store:      store,
		Scorer:     scorer,
		Presenters: presenters,
		History:    history,
		Logger:     logger.Component(baseLogger, "pipeline"),
		MaxCount:   cfg.Pipeline.MaxCount,
		TopTerms:   cfg.Presentation.TopTerms,
	})
	return a, nil
}

func (a *Application) presenters(out io.Writer) []ports.Presenter {
	presenters := []ports.Presenter{
		present.NewConsole(out, present.ConsoleOptions{SampleRows: a.cfg.Presentation.SampleRows}),
	}
	if a.cfg.Presentation.ExportDir != "" {
		presenters = append(presenters, present.NewExporter(present.ExportOptions{
			Dir:     a.cfg.Presentation.ExportDir,
			Formats: a.cfg.Presentation.ExportFormats,
		}, logger.Component(a.logger, "export")))
	}
	if tg := a.cfg.Presentation.Telegram; tg.Enabled() {
		presenters = append(presenters, telegram.NewNotifier(tg.BotToken, tg.ChatID, tg.Endpoint))
	}
	return presenters
}

// Config returns the effective configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context, req usecase.Request) (usecase.Report, error) {
	start := time.Now()
	rep, err := a.pipeline.Run(ctx, req)
	if err != nil {
		return rep, err
	}
	rows := 0
	if rep.Presentation.Table != nil {
		rows = rep.Presentation.Table.Len()
	}
	a.logger.Info("run finished",
		zap.String("run_id", rep.RunID),
		zap.Int("rows", rows),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rep, nil
}

// Watch runs req every interval until ctx is cancelled.
func (a *Application) Watch(ctx context.Context, req usecase.Request, interval time.Duration) error {
	if interval <= 0 {
		interval = a.cfg.Pipeline.WatchInterval
	}
	s := usecase.NewScheduler(scheduler.NewIntervalScheduler(interval), a, logger.Component(a.logger, "scheduler"))
	if err := s.Start(ctx, req); err != nil {
		return err
	}
	a.logger.Info("watching keyword", zap.String("keyword", req.Keyword), zap.Duration("interval", interval))

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	return s.Stop(stopCtx)
}

// History lists recent runs, newest first.
func (a *Application) History(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if a.history == nil {
		return nil, eris.New("run history is disabled")
	}
	return a.history.Recent(ctx, limit)
}

// Label resolves the labels of an arbitrary CSV table. A relative path that
// does not exist is also looked up inside the data directory.
func (a *Application) Label(path string) (report.Presentation, error) {
	if _, err := os.Stat(path); err != nil && !filepath.IsAbs(path) {
		if alt := filepath.Join(a.cfg.Storage.DataDir, path); fileExists(alt) {
			path = alt
		}
	}
	t, err := table.LoadFile(path)
	if err != nil {
		return report.Presentation{}, err
	}
	res, err := labeling.NewResolver(a.scorer).Resolve(t)
	if err != nil {
		return report.Presentation{}, err
	}
	return report.Build(t, res, report.Options{TopTerms: a.cfg.Presentation.TopTerms}), nil
}

// Score scores a single text.
func (a *Application) Score(text string) (domain.ScoreBundle, domain.Label) {
	bundle := a.scorer.Score(text)
	return bundle, domain.LabelFromCompound(bundle.Compound)
}

// ArtifactPath reports where an artifact lives.
func (a *Application) ArtifactPath(kind domain.Artifact) string {
	return a.store.Path(kind)
}

// Close releases the history database.
func (a *Application) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
