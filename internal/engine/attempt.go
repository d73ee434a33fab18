package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizdesk/quizdesk-backend/internal/model"
)

// State enumerates the attempt lifecycle. Transitions only move forward:
// NOT_STARTED → IN_PROGRESS → SUBMITTING → COMPLETED.
type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateInProgress State = "IN_PROGRESS"
	StateSubmitting State = "SUBMITTING"
	StateCompleted  State = "COMPLETED"
)

// Engine errors.
var (
	ErrAlreadyStarted  = errors.New("attempt already started")
	ErrNotStarted      = errors.New("attempt has not started")
	ErrNoQuestions     = errors.New("attempt has no resolvable questions")
	ErrAttemptClosed   = errors.New("attempt is no longer accepting changes")
	ErrCursorOutOfRange = errors.New("cursor position out of range")
	ErrOptionOutOfRange = errors.New("option index out of range")
)

// AttemptStore persists the single attempt record produced by a submission.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt *model.Attempt) error
}

// Attempt runs one student's timed pass through a quiz. It owns the cursor,
// the answer slots, and the countdown, and produces exactly one immutable
// attempt record on submission — whether that submission was triggered by the
// student or by time expiry.
//
// All methods are safe for concurrent use; in practice a single connection
// loop plus the countdown ticker share one instance.
type Attempt struct {
	mu sync.Mutex

	quiz      model.Quiz
	questions []model.Question
	studentID uuid.UUID
	store     AttemptStore
	now       func() time.Time

	state     State
	cursor    int
	answers   []int
	startedAt time.Time
	duration  time.Duration

	// frozen is the attempt record snapshotted when submission first fires.
	// It survives a failed persist so a retry writes the identical record.
	frozen *model.Attempt
}

// Option configures an Attempt.
type Option func(*Attempt)

// WithClock injects the time source. Tests use this for deterministic expiry.
func WithClock(now func() time.Time) Option {
	return func(a *Attempt) { a.now = now }
}

// New builds an engine for the given quiz and its already-resolved questions.
// The questions must be in the quiz's persisted order; dangling references
// have already been dropped by resolution.
func New(quiz model.Quiz, questions []model.Question, studentID uuid.UUID, store AttemptStore, opts ...Option) *Attempt {
	a := &Attempt{
		quiz:      quiz,
		questions: questions,
		studentID: studentID,
		store:     store,
		now:       time.Now,
		state:     StateNotStarted,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start records the wall-clock start instant and opens the attempt. Every
// answer slot begins at the unanswered sentinel.
func (a *Attempt) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateNotStarted {
		return ErrAlreadyStarted
	}
	if len(a.questions) == 0 {
		return ErrNoQuestions
	}

	a.answers = make([]int, len(a.questions))
	for i := range a.answers {
		a.answers[i] = model.AnswerUnanswered
	}
	a.cursor = 0
	a.startedAt = a.now()
	a.duration = time.Duration(a.quiz.DurationMin) * time.Minute
	a.state = StateInProgress
	return nil
}

// State returns the current lifecycle state.
func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Cursor returns the zero-based index of the question currently displayed.
func (a *Attempt) Cursor() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cursor
}

// Answers returns a copy of the answer slots.
func (a *Attempt) Answers() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]int, len(a.answers))
	copy(out, a.answers)
	return out
}

// Select records an option choice for the question at the cursor,
// overwriting any prior choice. No history is kept.
func (a *Attempt) Select(option int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case StateNotStarted:
		return ErrNotStarted
	case StateSubmitting, StateCompleted:
		return ErrAttemptClosed
	}

	if option < 0 || option >= len(a.questions[a.cursor].Options) {
		return ErrOptionOutOfRange
	}
	a.answers[a.cursor] = option
	return nil
}

// Seek moves the cursor to an absolute question index.
func (a *Attempt) Seek(i int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case StateNotStarted:
		return ErrNotStarted
	case StateSubmitting, StateCompleted:
		return ErrAttemptClosed
	}

	if i < 0 || i >= len(a.questions) {
		return ErrCursorOutOfRange
	}
	a.cursor = i
	return nil
}

// Next advances the cursor by one question.
func (a *Attempt) Next() error { return a.step(1) }

// Prev moves the cursor back by one question.
func (a *Attempt) Prev() error { return a.step(-1) }

func (a *Attempt) step(delta int) error {
	a.mu.Lock()
	cur := a.cursor
	a.mu.Unlock()
	return a.Seek(cur + delta)
}

// Remaining recomputes the time left from the wall clock. It is never a
// decremented counter, so missed ticks (host suspension, backgrounding)
// cannot stretch the attempt.
func (a *Attempt) Remaining() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.remainingLocked()
}

func (a *Attempt) remainingLocked() time.Duration {
	if a.state == StateNotStarted {
		return time.Duration(a.quiz.DurationMin) * time.Minute
	}
	remaining := a.startedAt.Add(a.duration).Sub(a.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Tick is the periodic wake-up: it reports the recomputed remaining time and
// whether the expiry submission should fire now. The caller routes expiry
// into Submit — the same routine as a manual finish.
func (a *Attempt) Tick() (remaining time.Duration, expired bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	remaining = a.remainingLocked()
	expired = a.state == StateInProgress && remaining <= 0
	return remaining, expired
}

// Submit finalizes the attempt. The first trigger — manual or expiry — wins:
// it freezes the answers, scores them, and persists one attempt record.
//
// If persistence fails the state stays SUBMITTING with the frozen snapshot
// intact, and the returned error is retryable: calling Submit again writes
// the identical record. Once COMPLETED, further calls return the stored
// record and persist nothing, which makes the timer/click race harmless.
func (a *Attempt) Submit(ctx context.Context) (*model.Attempt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case StateNotStarted:
		return nil, ErrNotStarted
	case StateCompleted:
		return a.frozen, nil
	case StateInProgress:
		a.freezeLocked()
	}

	if err := a.store.CreateAttempt(ctx, a.frozen); err != nil {
		return nil, fmt.Errorf("persist attempt: %w", err)
	}

	a.state = StateCompleted
	return a.frozen, nil
}

// freezeLocked snapshots and scores the attempt at the moment submission
// starts. Answer slots stop accepting mutations from here on, even while the
// persist write is still pending.
func (a *Attempt) freezeLocked() {
	answers := make([]int, len(a.answers))
	copy(answers, a.answers)

	var score, totalPoints float64
	for i := range a.questions {
		points := a.quiz.EffectivePoints(&a.questions[i])
		totalPoints += points
		if answers[i] == a.questions[i].CorrectOption {
			score += points
		}
	}

	a.frozen = &model.Attempt{
		QuizID:      a.quiz.ID,
		StudentID:   a.studentID,
		Answers:     answers,
		Score:       score,
		TotalPoints: totalPoints,
		StartedAt:   a.startedAt,
		CompletedAt: a.now(),
	}
	a.state = StateSubmitting
}

// Result returns the persisted attempt record, or nil before completion.
func (a *Attempt) Result() *model.Attempt {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateCompleted {
		return nil
	}
	return a.frozen
}
