package source

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/ports"
)

// Fetcher implements PostSource by delegating to the configured registry entry.
type Fetcher struct {
	registry *Registry
	name     string
	logger   *zap.Logger
}

var _ ports.PostSource = (*Fetcher)(nil)

// NewFetcher wires a registry with the name of the source to use.
func NewFetcher(reg *Registry, name string, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{registry: reg, name: name, logger: logger}
}

// Name reports the delegated source name.
func (f *Fetcher) Name() string {
	return f.name
}

// Search resolves the configured source and runs the query against it.
// Posts with empty text are dropped and duplicate ids keep their first
// occurrence.
func (f *Fetcher) Search(ctx context.Context, keyword string, count int) ([]domain.Post, error) {
	if f.registry == nil {
		return nil, eris.Wrap(domain.ErrFetchFailed, "source registry is not configured")
	}

	src, err := f.registry.Resolve(f.name)
	if err != nil {
		return nil, eris.Wrap(domain.ErrFetchFailed, err.Error())
	}

	f.logger.Debug("search", zap.String("source", f.name), zap.String("keyword", keyword), zap.Int("count", count))
	posts, err := src.Search(ctx, keyword, count)
	if err != nil {
		return nil, eris.Wrapf(err, "source %s", f.name)
	}

	seen := make(map[string]struct{}, len(posts))
	out := make([]domain.Post, 0, len(posts))
	for _, post := range posts {
		if strings.TrimSpace(post.Text) == "" {
			continue
		}
		if post.ID != "" {
			if _, dup := seen[post.ID]; dup {
				continue
			}
			seen[post.ID] = struct{}{}
		}
		out = append(out, post)
		if len(out) == count {
			break
		}
	}

	f.logger.Debug("source done", zap.String("source", f.name), zap.Int("posts", len(out)))
	return out, nil
}
