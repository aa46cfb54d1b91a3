package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/ports"
	"TweetSentiment/internal/table"
)

// Default artifact file names.
const (
	DefaultRawFile       = "tweets.csv"
	DefaultCleanFile     = "tweets_clean.csv"
	DefaultSentimentFile = "tweets_sentiment.csv"
)

// FileNames maps each artifact to its file inside the data directory.
type FileNames struct {
	Raw       string
	Clean     string
	Sentiment string
}

// FileStore keeps pipeline artifacts as CSV files in one directory.
type FileStore struct {
	dir   string
	names FileNames
}

var _ ports.ArtifactStore = (*FileStore)(nil)

// NewFileStore wires a data directory. Empty names fall back to the defaults.
func NewFileStore(dir string, names FileNames) *FileStore {
	if names.Raw == "" {
		names.Raw = DefaultRawFile
	}
	if names.Clean == "" {
		names.Clean = DefaultCleanFile
	}
	if names.Sentiment == "" {
		names.Sentiment = DefaultSentimentFile
	}
	return &FileStore{dir: dir, names: names}
}

// Path returns the file backing an artifact.
func (s *FileStore) Path(kind domain.Artifact) string {
	var name string
	switch kind {
	case domain.ArtifactRaw:
		name = s.names.Raw
	case domain.ArtifactClean:
		name = s.names.Clean
	case domain.ArtifactSentiment:
		name = s.names.Sentiment
	default:
		name = string(kind) + ".csv"
	}
	return filepath.Join(s.dir, name)
}

// Exists reports whether the artifact file is present.
func (s *FileStore) Exists(kind domain.Artifact) bool {
	info, err := os.Stat(s.Path(kind))
	return err == nil && !info.IsDir()
}

// Load reads an artifact.
func (s *FileStore) Load(ctx context.Context, kind domain.Artifact) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := table.LoadFile(s.Path(kind))
	if err != nil {
		return nil, eris.Wrapf(err, "load %s artifact", kind)
	}
	return t, nil
}

// Save replaces an artifact wholesale.
func (s *FileStore) Save(ctx context.Context, kind domain.Artifact, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := table.SaveFile(s.Path(kind), t); err != nil {
		return eris.Wrapf(err, "save %s artifact", kind)
	}
	return nil
}
