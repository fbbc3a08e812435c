// Package store handles SQLite persistence of pipeline runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/verte-zerg/subcrack/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound reports an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Store wraps SQLite access for run history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			created_at TEXT NOT NULL,
			input_path TEXT NOT NULL,
			output_path TEXT NOT NULL,
			alphabet TEXT NOT NULL,
			text_len INTEGER NOT NULL,
			mapped INTEGER NOT NULL,
			unmapped INTEGER NOT NULL,
			key_accuracy REAL,
			text_accuracy REAL
		);`,
		`CREATE TABLE IF NOT EXISTS run_frequencies (
			run_id TEXT NOT NULL,
			source TEXT NOT NULL,
			rank INTEGER NOT NULL,
			char TEXT NOT NULL,
			freq REAL NOT NULL,
			PRIMARY KEY (run_id, source, rank)
		);`,
		`CREATE TABLE IF NOT EXISTS run_mappings (
			run_id TEXT NOT NULL,
			source_char TEXT NOT NULL,
			target_char TEXT NOT NULL,
			PRIMARY KEY (run_id, source_char)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a run with its frequency rows and mapping, returning the new id.
func (s *Store) InsertRun(ctx context.Context, run model.Run, freqs []model.RankedFreq, pairs []model.MappingPair) (id string, err error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, kind, created_at, input_path, output_path, alphabet, text_len, mapped, unmapped, key_accuracy, text_accuracy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Kind,
		run.CreatedAt.UTC().Format(timeLayout),
		run.InputPath,
		run.OutputPath,
		run.Alphabet,
		run.TextLen,
		run.Mapped,
		run.Unmapped,
		nullFloat(run.KeyAccuracy),
		nullFloat(run.TextAccuracy),
	); err != nil {
		return "", err
	}

	if len(freqs) > 0 {
		if err = execEach(ctx, tx,
			`INSERT INTO run_frequencies (run_id, source, rank, char, freq) VALUES (?, ?, ?, ?, ?)`,
			len(freqs), func(i int) []any {
				f := freqs[i]
				return []any{run.ID, f.Source, f.Rank, f.Char, f.Freq}
			}); err != nil {
			return "", err
		}
	}
	if len(pairs) > 0 {
		if err = execEach(ctx, tx,
			`INSERT INTO run_mappings (run_id, source_char, target_char) VALUES (?, ?, ?)`,
			len(pairs), func(i int) []any {
				return []any{run.ID, pairs[i].From, pairs[i].To}
			}); err != nil {
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

func execEach(ctx context.Context, tx *sql.Tx, query string, n int, args func(int) []any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

const runColumns = `id, kind, created_at, input_path, output_path, alphabet, text_len, mapped, unmapped, key_accuracy, text_accuracy`

// ListRuns returns runs matching filter, oldest first.
func (s *Store) ListRuns(ctx context.Context, filter model.HistoryFilter) ([]model.Run, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT %s FROM runs WHERE %s ORDER BY created_at ASC`, runColumns, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(runs) > filter.Last {
		runs = runs[len(runs)-filter.Last:]
	}
	return runs, nil
}

// GetRun returns a single run. The id may be a unique prefix.
func (s *Store) GetRun(ctx context.Context, id string) (model.Run, error) {
	if id == "" {
		return model.Run{}, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	query := fmt.Sprintf(`SELECT %s FROM runs WHERE substr(id, 1, ?) = ? ORDER BY created_at ASC LIMIT 2`, runColumns)
	rows, err := s.db.QueryContext(ctx, query, utf8.RuneCountInString(id), id)
	if err != nil {
		return model.Run{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var found []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return model.Run{}, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return model.Run{}, err
	}
	switch len(found) {
	case 0:
		return model.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return found[0], nil
	default:
		return model.Run{}, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// GetRunFrequencies returns the stored frequency rows of a run ordered by source and rank.
func (s *Store) GetRunFrequencies(ctx context.Context, id string) ([]model.RankedFreq, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, rank, char, freq FROM run_frequencies WHERE run_id = ? ORDER BY source, rank`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var out []model.RankedFreq
	for rows.Next() {
		var f model.RankedFreq
		if err := rows.Scan(&f.Source, &f.Rank, &f.Char, &f.Freq); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRunMapping returns the stored mapping of a run ordered by source character.
func (s *Store) GetRunMapping(ctx context.Context, id string) ([]model.MappingPair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_char, target_char FROM run_mappings WHERE run_id = ? ORDER BY source_char`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var out []model.MappingPair
	for rows.Next() {
		var p model.MappingPair
		if err := rows.Scan(&p.From, &p.To); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (model.Run, error) {
	var run model.Run
	var createdAt string
	var keyAcc, textAcc sql.NullFloat64
	if err := row.Scan(&run.ID, &run.Kind, &createdAt, &run.InputPath, &run.OutputPath, &run.Alphabet,
		&run.TextLen, &run.Mapped, &run.Unmapped, &keyAcc, &textAcc); err != nil {
		return model.Run{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return model.Run{}, err
	}
	run.CreatedAt = parsed
	if keyAcc.Valid {
		v := keyAcc.Float64
		run.KeyAccuracy = &v
	}
	if textAcc.Valid {
		v := textAcc.Float64
		run.TextAccuracy = &v
	}
	return run, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
