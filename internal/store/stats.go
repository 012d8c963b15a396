package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath           string           `json:"db_path"`
	DBSizeBytes      int64            `json:"db_size_bytes"`
	TotalRuns        int              `json:"total_runs"`
	TotalEvaluations int              `json:"total_evaluations"`
	NonFinite        int              `json:"non_finite_evaluations"`
	Objectives       []ObjectiveStats `json:"objectives"`
}

// ObjectiveStats holds per-objective counts.
type ObjectiveStats struct {
	Objective   string `json:"objective"`
	Runs        int    `json:"runs"`
	Evaluations int    `json:"evaluations"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&st.TotalRuns)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&st.TotalEvaluations)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations WHERE score IS NULL`).Scan(&st.NonFinite)

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.objective, COUNT(DISTINCT r.id) AS runs, COUNT(e.id) AS evals
		FROM runs r LEFT JOIN evaluations e ON e.run_id = r.id
		GROUP BY r.objective ORDER BY runs DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var o ObjectiveStats
		rows.Scan(&o.Objective, &o.Runs, &o.Evaluations)
		st.Objectives = append(st.Objectives, o)
	}

	return st, nil
}
