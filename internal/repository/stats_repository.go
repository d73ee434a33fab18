package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizdesk/quizdesk-backend/internal/model"
)

// StatsRepository maintains the quiz_stats aggregate table. Rows hold running
// sums, so folding a batch in is one upsert.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// GetByQuiz retrieves the aggregate row for one quiz.
func (r *StatsRepository) GetByQuiz(ctx context.Context, quizID uuid.UUID) (*model.QuizStats, error) {
	s := &model.QuizStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT quiz_id, attempt_count, score_sum, total_points_sum, best_percent, updated_at
		 FROM quiz_stats WHERE quiz_id = $1`, quizID,
	).Scan(&s.QuizID, &s.AttemptCount, &s.ScoreSum, &s.TotalPointsSum, &s.BestPercent, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// BulkFold collapses a batch of stats jobs into per-quiz deltas and applies
// them with a single UNNEST upsert.
func (r *StatsRepository) BulkFold(ctx context.Context, jobs []*model.QuizStatsJob) error {
	type delta struct {
		count          int
		scoreSum       float64
		totalPointsSum float64
		bestPercent    float64
	}

	deltas := make(map[uuid.UUID]*delta, len(jobs))
	order := make([]uuid.UUID, 0, len(jobs))
	for _, job := range jobs {
		d, ok := deltas[job.QuizID]
		if !ok {
			d = &delta{}
			deltas[job.QuizID] = d
			order = append(order, job.QuizID)
		}
		d.count++
		d.scoreSum += job.Score
		d.totalPointsSum += job.TotalPoints
		if pct := job.JobPercent(); pct > d.bestPercent {
			d.bestPercent = pct
		}
	}

	n := len(order)
	quizIDs := make([]uuid.UUID, 0, n)
	counts := make([]int, 0, n)
	scoreSums := make([]float64, 0, n)
	totalSums := make([]float64, 0, n)
	bests := make([]float64, 0, n)
	for _, id := range order {
		d := deltas[id]
		quizIDs = append(quizIDs, id)
		counts = append(counts, d.count)
		scoreSums = append(scoreSums, d.scoreSum)
		totalSums = append(totalSums, d.totalPointsSum)
		bests = append(bests, d.bestPercent)
	}

	query := `
		INSERT INTO quiz_stats (quiz_id, attempt_count, score_sum, total_points_sum, best_percent, updated_at)
		SELECT u.quiz_id, u.attempt_count, u.score_sum, u.total_points_sum, u.best_percent, NOW()
		FROM UNNEST(
			$1::uuid[],
			$2::int[],
			$3::float8[],
			$4::float8[],
			$5::float8[]
		) AS u (quiz_id, attempt_count, score_sum, total_points_sum, best_percent)
		ON CONFLICT (quiz_id) DO UPDATE
		SET attempt_count    = quiz_stats.attempt_count + EXCLUDED.attempt_count,
		    score_sum        = quiz_stats.score_sum + EXCLUDED.score_sum,
		    total_points_sum = quiz_stats.total_points_sum + EXCLUDED.total_points_sum,
		    best_percent     = GREATEST(quiz_stats.best_percent, EXCLUDED.best_percent),
		    updated_at       = NOW()
	`

	_, err := r.pool.Exec(ctx, query, quizIDs, counts, scoreSums, totalSums, bests)
	return err
}

// FoldOne applies a single stats job. Fallback path when a bulk fold fails.
func (r *StatsRepository) FoldOne(ctx context.Context, job *model.QuizStatsJob) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_stats (quiz_id, attempt_count, score_sum, total_points_sum, best_percent, updated_at)
		 VALUES ($1, 1, $2, $3, $4, NOW())
		 ON CONFLICT (quiz_id) DO UPDATE
		 SET attempt_count    = quiz_stats.attempt_count + 1,
		     score_sum        = quiz_stats.score_sum + EXCLUDED.score_sum,
		     total_points_sum = quiz_stats.total_points_sum + EXCLUDED.total_points_sum,
		     best_percent     = GREATEST(quiz_stats.best_percent, EXCLUDED.best_percent),
		     updated_at       = NOW()`,
		job.QuizID, job.Score, job.TotalPoints, job.JobPercent(),
	)
	return err
}
