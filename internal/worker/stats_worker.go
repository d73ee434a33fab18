package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizdesk/quizdesk-backend/internal/config"
	"github.com/quizdesk/quizdesk-backend/internal/model"
)

const (
	StatsBatchSize    = 50
	StatsBatchTimeout = 2 * time.Second
	StatsPollTimeout  = 1 * time.Second
)

// StatsStore folds attempt results into the per-quiz aggregates.
type StatsStore interface {
	BulkFold(ctx context.Context, jobs []*model.QuizStatsJob) error
	FoldOne(ctx context.Context, job *model.QuizStatsJob) error
}

// StatsWorker drains the stats queue and folds submitted attempts into
// quiz_stats in batches.
type StatsWorker struct {
	store StatsStore
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewStatsWorker creates a new StatsWorker.
func NewStatsWorker(store StatsStore, rdb *redis.Client, log zerolog.Logger) *StatsWorker {
	return &StatsWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "stats_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *StatsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("StatsWorker started")

	batch := make([]*model.QuizStatsJob, 0, StatsBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= StatsBatchSize || time.Since(lastFlush) >= StatsBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, StatsPollTimeout, config.WorkerKey.PersistStatsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var job model.QuizStatsJob
			if err := json.Unmarshal([]byte(item[1]), &job); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &job)
		}
	}
}

// ----------------------------------------------------------------
// Batch fold with per-job fallback and requeue
// ----------------------------------------------------------------

func (w *StatsWorker) flushSafe(ctx context.Context, batch []*model.QuizStatsJob) {
	if len(batch) == 0 {
		return
	}

	if err := w.store.BulkFold(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk stats fold failed, using fallback")

		for _, job := range batch {
			if err := w.store.FoldOne(ctx, job); err != nil {
				w.log.Error().Err(err).Msg("FoldOne failed — requeueing")
				raw, _ := json.Marshal(job)
				w.rdb.RPush(ctx, config.WorkerKey.PersistStatsQueue, raw)
			}
		}
		return
	}

	w.log.Debug().Int("jobs", len(batch)).Msg("Stats batch folded")
}
