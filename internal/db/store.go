// Package db provides run history persistence for the comparison pipeline.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/evaluate"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/pipeline"
)

// Store provides persistence for completed pipeline runs.
type Store struct {
	db *sql.DB
}

// NewStore creates a store for run persistence.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SaveRun persists one run with its dimension scores and recommendations
// in a single transaction, returning the new run id.
func (s *Store) SaveRun(ctx context.Context, pairName string, res pipeline.RunResult) (int64, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return 0, fmt.Errorf("marshal run result: %w", err)
	}

	var overall sql.NullFloat64
	var grade sql.NullString
	if res.Evaluation != nil {
		overall = sql.NullFloat64{Float64: res.Evaluation.RuleBased.OverallScore, Valid: true}
		grade = sql.NullString{String: res.Evaluation.RuleBased.Grade, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin save run: %w", err)
	}

	result, err := tx.ExecContext(ctx, `INSERT INTO runs(created_at, pair_name, succeeded, failed_stage, section_count, topic_count, overall_score, grade, total_tokens, result_json)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), pairName, boolInt(res.Succeeded()), nullableString(res.FailedStage),
		len(res.SectionsChanged), len(res.TopicsTouched), overall, grade, res.Usage.TotalTokens, string(raw))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("read run id: %w", err)
	}

	if res.Evaluation != nil {
		for dim, score := range res.Evaluation.RuleBased.DimensionScores {
			if _, err := tx.ExecContext(ctx, `INSERT INTO dimension_scores(run_id, dimension, score) VALUES(?, ?, ?)`,
				runID, dim, score); err != nil {
				_ = tx.Rollback()
				return 0, fmt.Errorf("insert dimension score: %w", err)
			}
		}
		for _, hint := range res.Evaluation.RuleBased.Recommendations {
			if _, err := tx.ExecContext(ctx, `INSERT INTO recommendations(run_id, hint) VALUES(?, ?)`,
				runID, hint); err != nil {
				_ = tx.Rollback()
				return 0, fmt.Errorf("insert recommendation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save run: %w", err)
	}
	return runID, nil
}

// RunSummary is one row of the run history listing.
type RunSummary struct {
	ID           int64
	CreatedAt    string
	PairName     string
	Succeeded    bool
	FailedStage  string
	SectionCount int
	TopicCount   int
	OverallScore sql.NullFloat64
	Grade        sql.NullString
	TotalTokens  int
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, pair_name, succeeded, COALESCE(failed_stage, ''), section_count, topic_count, overall_score, grade, total_tokens
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var succeeded int
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.PairName, &succeeded, &r.FailedStage,
			&r.SectionCount, &r.TopicCount, &r.OverallScore, &r.Grade, &r.TotalTokens); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Succeeded = succeeded != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// GetRunResult loads the full serialized result of one run.
func (s *Store) GetRunResult(ctx context.Context, runID int64) (pipeline.RunResult, error) {
	var raw string
	row := s.db.QueryRowContext(ctx, `SELECT result_json FROM runs WHERE id=?`, runID)
	if err := row.Scan(&raw); err != nil {
		return pipeline.RunResult{}, fmt.Errorf("load run %d: %w", runID, err)
	}
	var res pipeline.RunResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return pipeline.RunResult{}, fmt.Errorf("decode run %d: %w", runID, err)
	}
	return res, nil
}

// AverageScores returns the mean score per dimension across all stored runs.
func (s *Store) AverageScores(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT dimension, AVG(score) FROM dimension_scores GROUP BY dimension`)
	if err != nil {
		return nil, fmt.Errorf("average scores: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var dim string
		var avg float64
		if err := rows.Scan(&dim, &avg); err != nil {
			return nil, fmt.Errorf("scan average: %w", err)
		}
		out[dim] = avg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate averages: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT AVG(overall_score) FROM runs WHERE overall_score IS NOT NULL`)
	var overall sql.NullFloat64
	if err := row.Scan(&overall); err != nil {
		return nil, fmt.Errorf("average overall: %w", err)
	}
	if overall.Valid {
		out["overall"] = overall.Float64
	}
	return out, nil
}

// TopRecommendations returns the most frequently emitted hints.
func (s *Store) TopRecommendations(ctx context.Context, limit int) ([]evaluate.RecommendationCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `SELECT hint, COUNT(*) AS n FROM recommendations GROUP BY hint ORDER BY n DESC, hint ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top recommendations: %w", err)
	}
	defer rows.Close()

	var out []evaluate.RecommendationCount
	for rows.Next() {
		var rc evaluate.RecommendationCount
		if err := rows.Scan(&rc.Hint, &rc.Count); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}
	return out, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
