package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizStatsJob is the queue payload enqueued after each submitted attempt
// and drained by the stats worker.
type QuizStatsJob struct {
	QuizID      uuid.UUID `json:"quiz_id"`
	StudentID   uuid.UUID `json:"student_id"`
	Score       float64   `json:"score"`
	TotalPoints float64   `json:"total_points"`
}

// QuizStats is the running aggregate per quiz. Sums rather than averages are
// stored so the worker can fold batches in with a single upsert.
type QuizStats struct {
	QuizID         uuid.UUID `json:"quiz_id"`
	AttemptCount   int       `json:"attempt_count"`
	ScoreSum       float64   `json:"score_sum"`
	TotalPointsSum float64   `json:"total_points_sum"`
	BestPercent    float64   `json:"best_percent"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AveragePercent is the mean score share across attempts, as a percentage.
func (s *QuizStats) AveragePercent() float64 {
	if s.TotalPointsSum == 0 {
		return 0
	}
	return s.ScoreSum / s.TotalPointsSum * 100
}

// JobPercent is one job's score share as a percentage, 0 for a zero-point quiz.
func (j *QuizStatsJob) JobPercent() float64 {
	if j.TotalPoints <= 0 {
		return 0
	}
	return j.Score / j.TotalPoints * 100
}
