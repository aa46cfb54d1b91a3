package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/ports"
)

//go:embed migrations/*.sql
var migrations embed.FS

const timeLayout = "2006-01-02 15:04:05.000000000"

var runColumns = []string{
	"id", "keyword", "count", "stages", "strategy",
	"label_counts", "status", "error", "started_at", "finished_at",
}

// HistoryRepository persists pipeline runs into SQLite.
type HistoryRepository struct {
	db *sql.DB
}

var _ ports.RunRepository = (*HistoryRepository)(nil)

// OpenHistory opens (creating if needed) the SQLite database at dsn and
// applies migrations. ":memory:" is accepted for tests.
func OpenHistory(ctx context.Context, dsn string) (*HistoryRepository, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, eris.Wrapf(err, "create history dir for %s", dsn)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "open history db")
	}
	db.SetMaxOpenConns(1)

	repo := NewHistoryRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewHistoryRepository wires an existing sql.DB.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Migrate applies the embedded schema files in name order.
func (r *HistoryRepository) Migrate(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return eris.Wrap(err, "list migrations")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			return eris.Wrapf(err, "read migration %s", name)
		}
		for _, stmt := range strings.Split(string(raw), ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := r.db.ExecContext(ctx, stmt); err != nil {
				return eris.Wrapf(err, "apply migration %s", name)
			}
		}
	}
	return nil
}

// Close releases the database handle.
func (r *HistoryRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Begin inserts a run in its initial state.
func (r *HistoryRepository) Begin(ctx context.Context, run domain.RunRecord) error {
	if r.db == nil {
		return nil
	}

	values, err := runValues(run)
	if err != nil {
		return err
	}
	query, args, err := sq.Insert("runs").Columns(runColumns...).Values(values...).ToSql()
	if err != nil {
		return eris.Wrap(err, "build insert run")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return eris.Wrap(err, "insert run")
	}
	return nil
}

// Finish stores the final state of a run, inserting it when Begin never
// reached the database.
func (r *HistoryRepository) Finish(ctx context.Context, run domain.RunRecord) error {
	if r.db == nil {
		return nil
	}

	values, err := runValues(run)
	if err != nil {
		return err
	}
	set := make(map[string]interface{}, len(runColumns)-1)
	for i, col := range runColumns[1:] {
		set[col] = values[i+1]
	}

	query, args, err := sq.Update("runs").SetMap(set).Where(sq.Eq{"id": run.ID}).ToSql()
	if err != nil {
		return eris.Wrap(err, "build update run")
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrap(err, "update run")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return r.Begin(ctx, run)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if r.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query, args, err := sq.Select(runColumns...).
		From("runs").
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "build select runs")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "query runs")
	}
	defer rows.Close()

	var out []domain.RunRecord
	for rows.Next() {
		var (
			run                    domain.RunRecord
			stages, counts, status string
			startedAt, finishedAt  string
		)
		if err := rows.Scan(&run.ID, &run.Keyword, &run.Count, &stages, &run.Strategy,
			&counts, &status, &run.Error, &startedAt, &finishedAt); err != nil {
			return nil, eris.Wrap(err, "scan run")
		}

		run.Status = domain.RunStatus(status)
		if stages != "" {
			for _, s := range strings.Split(stages, ",") {
				run.Stages = append(run.Stages, domain.Stage(s))
			}
		}
		if err := json.Unmarshal([]byte(counts), &run.LabelCounts); err != nil {
			return nil, eris.Wrapf(err, "decode label counts of run %s", run.ID)
		}
		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseTime(finishedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "rows iteration")
	}
	return out, nil
}

func runValues(run domain.RunRecord) ([]interface{}, error) {
	stages := make([]string, len(run.Stages))
	for i, s := range run.Stages {
		stages[i] = string(s)
	}

	counts := run.LabelCounts
	if counts == nil {
		counts = map[domain.Label]int{}
	}
	encoded, err := json.Marshal(counts)
	if err != nil {
		return nil, eris.Wrap(err, "encode label counts")
	}

	return []interface{}{
		run.ID,
		run.Keyword,
		run.Count,
		strings.Join(stages, ","),
		run.Strategy,
		string(encoded),
		string(run.Status),
		run.Error,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
	}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "parse time %q", s)
	}
	return t, nil
}
