package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizdesk/quizdesk-backend/internal/config"
	"github.com/quizdesk/quizdesk-backend/internal/model"
)

type fakeStatsStore struct {
	mu      sync.Mutex
	bulk    [][]*model.QuizStatsJob
	singles []*model.QuizStatsJob
	bulkErr error
	oneErr  error
	folded  chan struct{}
}

func (s *fakeStatsStore) BulkFold(_ context.Context, jobs []*model.QuizStatsJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bulkErr != nil {
		return s.bulkErr
	}
	s.bulk = append(s.bulk, jobs)
	if s.folded != nil {
		select {
		case s.folded <- struct{}{}:
		default:
		}
	}
	return nil
}

func (s *fakeStatsStore) FoldOne(_ context.Context, job *model.QuizStatsJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.oneErr != nil {
		return s.oneErr
	}
	s.singles = append(s.singles, job)
	return nil
}

func newTestWorker(t *testing.T, store *fakeStatsStore) (*StatsWorker, *miniredis.Miniredis, *redislib.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewStatsWorker(store, rdb, zerolog.Nop()), mr, rdb
}

func statsJob(score, total float64) *model.QuizStatsJob {
	return &model.QuizStatsJob{
		QuizID:      uuid.New(),
		StudentID:   uuid.New(),
		Score:       score,
		TotalPoints: total,
	}
}

func TestStatsWorkerDrainsQueue(t *testing.T) {
	store := &fakeStatsStore{folded: make(chan struct{}, 1)}
	w, _, rdb := newTestWorker(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	job := statsJob(7, 10)
	raw, _ := json.Marshal(job)
	if err := rdb.RPush(ctx, config.WorkerKey.PersistStatsQueue, raw).Err(); err != nil {
		t.Fatalf("failed to enqueue: %v", err)
	}

	select {
	case <-store.folded:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never folded the batch")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.bulk) != 1 || len(store.bulk[0]) != 1 {
		t.Fatalf("expected one batch of one job, got %v", store.bulk)
	}
	got := store.bulk[0][0]
	if got.QuizID != job.QuizID || got.Score != 7 || got.TotalPoints != 10 {
		t.Fatalf("job mangled in transit: %+v", got)
	}
}

func TestStatsWorkerSkipsBadPayloads(t *testing.T) {
	store := &fakeStatsStore{folded: make(chan struct{}, 1)}
	w, _, rdb := newTestWorker(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	rdb.RPush(ctx, config.WorkerKey.PersistStatsQueue, "{not json")
	raw, _ := json.Marshal(statsJob(1, 2))
	rdb.RPush(ctx, config.WorkerKey.PersistStatsQueue, raw)

	select {
	case <-store.folded:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never folded the valid job")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	total := 0
	for _, b := range store.bulk {
		total += len(b)
	}
	if total != 1 {
		t.Fatalf("expected only the valid job folded, got %d", total)
	}
}

func TestFlushFallsBackToSingleFolds(t *testing.T) {
	store := &fakeStatsStore{bulkErr: errors.New("deadlock detected")}
	w, _, _ := newTestWorker(t, store)

	batch := []*model.QuizStatsJob{statsJob(1, 2), statsJob(3, 4)}
	w.flushSafe(context.Background(), batch)

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.singles) != 2 {
		t.Fatalf("expected 2 per-job folds, got %d", len(store.singles))
	}
}

func TestFlushRequeuesJobsThatFailTwice(t *testing.T) {
	store := &fakeStatsStore{
		bulkErr: errors.New("bulk down"),
		oneErr:  errors.New("single down"),
	}
	w, mr, _ := newTestWorker(t, store)

	job := statsJob(5, 10)
	w.flushSafe(context.Background(), []*model.QuizStatsJob{job})

	if !mr.Exists(config.WorkerKey.PersistStatsQueue) {
		t.Fatal("failed job should be back on the queue")
	}
	raw, err := mr.Lpop(config.WorkerKey.PersistStatsQueue)
	if err != nil {
		t.Fatalf("failed to read requeued job: %v", err)
	}
	var requeued model.QuizStatsJob
	if err := json.Unmarshal([]byte(raw), &requeued); err != nil {
		t.Fatalf("requeued payload is not valid JSON: %v", err)
	}
	if requeued.QuizID != job.QuizID {
		t.Fatalf("requeued job references wrong quiz: %s", requeued.QuizID)
	}
}

func TestFlushEmptyBatchIsNoop(t *testing.T) {
	store := &fakeStatsStore{bulkErr: errors.New("should never be called")}
	w, _, _ := newTestWorker(t, store)
	w.flushSafe(context.Background(), nil)

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.singles) != 0 {
		t.Fatal("empty batch must not fold anything")
	}
}
