package model

import (
	"math"
	"time"
)

// Run is one recorded parameter search.
type Run struct {
	ID          string             `json:"id"`
	Objective   string             `json:"objective"`
	Dataset     string             `json:"dataset"`
	Fixed       map[string]float64 `json:"fixed"`
	Free        []string           `json:"free"`
	Note        string             `json:"note,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	Evaluations int                `json:"evaluations"`
	BestScore   *float64           `json:"best_score,omitempty"`
}

// Evaluation is one objective call within a run. Score is nil when the
// objective returned a non-finite value.
type Evaluation struct {
	ID        string     `json:"id"`
	RunID     string     `json:"run_id"`
	Seq       int        `json:"seq"`
	X         []float64  `json:"x"`
	Params    Parameters `json:"params"`
	Score     *float64   `json:"score"`
	CreatedAt time.Time  `json:"created_at"`
}

// Value returns the score, with +Inf standing in for a non-finite one.
func (e Evaluation) Value() float64 {
	if e.Score == nil {
		return math.Inf(1)
	}
	return *e.Score
}
