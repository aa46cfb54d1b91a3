package ports

import (
	"context"
	"time"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/report"
	"TweetSentiment/internal/table"
)

// PostSource pulls recent posts matching a keyword from an upstream provider.
type PostSource interface {
	Name() string
	Search(ctx context.Context, keyword string, count int) ([]domain.Post, error)
}

// Scorer turns cleaned text into a full score bundle.
type Scorer interface {
	Score(text string) domain.ScoreBundle
}

// ArtifactStore persists stage outputs. Existence is the only freshness signal.
type ArtifactStore interface {
	Exists(kind domain.Artifact) bool
	Load(ctx context.Context, kind domain.Artifact) (*table.Table, error)
	Save(ctx context.Context, kind domain.Artifact, t *table.Table) error
	Path(kind domain.Artifact) string
}

// Presenter renders or ships a finished run.
type Presenter interface {
	Present(ctx context.Context, p report.Presentation) error
}

// RunRepository keeps a history of pipeline runs.
type RunRepository interface {
	Begin(ctx context.Context, run domain.RunRecord) error
	Finish(ctx context.Context, run domain.RunRecord) error
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)
}

// Scheduler triggers a job repeatedly until stopped.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
