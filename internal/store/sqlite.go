package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/recall-fit/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		objective   TEXT NOT NULL,
		dataset     TEXT NOT NULL DEFAULT '',
		fixed       TEXT NOT NULL,
		free        TEXT NOT NULL,
		note        TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_objective ON runs(objective);

	CREATE TABLE IF NOT EXISTS evaluations (
		id          TEXT PRIMARY KEY,
		run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		x           TEXT NOT NULL,
		params      TEXT NOT NULL,
		score       REAL,
		created_at  TEXT NOT NULL,
		UNIQUE (run_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_evaluations_score ON evaluations(run_id, score);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(ctx context.Context, p CreateRunParams) (*model.Run, error) {
	if p.Objective == "" {
		return nil, fmt.Errorf("objective is required")
	}
	now := time.Now().UTC()
	id := s.newID()

	fixed := p.Fixed
	if fixed == nil {
		fixed = map[string]float64{}
	}
	free := p.Free
	if free == nil {
		free = []string{}
	}
	fixedJSON, err := json.Marshal(fixed)
	if err != nil {
		return nil, fmt.Errorf("encode fixed: %w", err)
	}
	freeJSON, _ := json.Marshal(free)

	var note *string
	if p.Note != "" {
		note = &p.Note
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, objective, dataset, fixed, free, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.Objective, p.Dataset, string(fixedJSON), string(freeJSON), note, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return &model.Run{
		ID:        id,
		Objective: p.Objective,
		Dataset:   p.Dataset,
		Fixed:     fixed,
		Free:      free,
		Note:      p.Note,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) RecordEvaluation(ctx context.Context, p RecordParams) (*model.Evaluation, error) {
	now := time.Now().UTC()
	id := s.newID()

	xJSON, err := json.Marshal(p.X)
	if err != nil {
		return nil, fmt.Errorf("encode vector: %w", err)
	}
	paramsJSON, err := json.Marshal(p.Params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}

	var score *float64
	if !math.IsInf(p.Score, 0) && !math.IsNaN(p.Score) {
		v := p.Score
		score = &v
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, p.RunID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("run not found: %s", p.RunID)
	}

	var prevSeq int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM evaluations WHERE run_id = ?`, p.RunID).Scan(&prevSeq)
	if err != nil {
		return nil, err
	}
	seq := prevSeq + 1

	_, err = tx.ExecContext(ctx,
		`INSERT INTO evaluations (id, run_id, seq, x, params, score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.RunID, seq, string(xJSON), string(paramsJSON), score, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert evaluation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.Evaluation{
		ID:        id,
		RunID:     p.RunID,
		Seq:       seq,
		X:         append([]float64(nil), p.X...),
		Params:    p.Params,
		Score:     score,
		CreatedAt: now,
	}, nil
}

const runColumns = `r.id, r.objective, r.dataset, r.fixed, r.free, r.note, r.created_at,
	(SELECT COUNT(*) FROM evaluations e WHERE e.run_id = r.id),
	(SELECT MIN(e.score) FROM evaluations e WHERE e.run_id = r.id)`

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, p ListParams) ([]model.Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	args := []interface{}{}
	if p.Objective != "" {
		where = append(where, "r.objective = ?")
		args = append(args, p.Objective)
	}
	args = append(args, limit)

	query := `SELECT ` + runColumns + ` FROM runs r WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY r.id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

const evaluationColumns = `id, run_id, seq, x, params, score, created_at`

func (s *SQLiteStore) Evaluations(ctx context.Context, runID string, limit int) ([]model.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE run_id = ? ORDER BY seq`
	args := []interface{}{runID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []model.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, e)
	}
	return evals, rows.Err()
}

func (s *SQLiteStore) Best(ctx context.Context, runID string) (*model.Evaluation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+evaluationColumns+` FROM evaluations
		 WHERE run_id = ? AND score IS NOT NULL
		 ORDER BY score ASC, seq ASC LIMIT 1`, runID)
	e, err := scanEvaluation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no finite evaluation for run: %s", runID)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) RmRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM evaluations WHERE run_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (model.Run, error) {
	var r model.Run
	var fixedJSON, freeJSON, createdAt string
	var note sql.NullString
	var best sql.NullFloat64

	err := row.Scan(
		&r.ID, &r.Objective, &r.Dataset, &fixedJSON, &freeJSON, &note, &createdAt,
		&r.Evaluations, &best,
	)
	if err != nil {
		return r, err
	}

	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if note.Valid {
		r.Note = note.String
	}
	if best.Valid {
		v := best.Float64
		r.BestScore = &v
	}
	json.Unmarshal([]byte(fixedJSON), &r.Fixed)
	json.Unmarshal([]byte(freeJSON), &r.Free)

	return r, nil
}

func scanEvaluation(row scanner) (model.Evaluation, error) {
	var e model.Evaluation
	var xJSON, paramsJSON, createdAt string
	var score sql.NullFloat64

	err := row.Scan(&e.ID, &e.RunID, &e.Seq, &xJSON, &paramsJSON, &score, &createdAt)
	if err != nil {
		return e, err
	}

	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if score.Valid {
		v := score.Float64
		e.Score = &v
	}
	json.Unmarshal([]byte(xJSON), &e.X)
	json.Unmarshal([]byte(paramsJSON), &e.Params)

	return e, nil
}
