package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quizdesk/quizdesk-backend/internal/model"
)

type fakeStore struct {
	created []*model.Attempt
	err     error
}

func (s *fakeStore) CreateAttempt(_ context.Context, attempt *model.Attempt) error {
	if s.err != nil {
		return s.err
	}
	attempt.ID = uuid.New()
	copied := *attempt
	s.created = append(s.created, &copied)
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testQuestions() []model.Question {
	return []model.Question{
		{ID: uuid.New(), Options: []string{"a", "b", "c"}, CorrectOption: 0, Points: 2},
		{ID: uuid.New(), Options: []string{"a", "b"}, CorrectOption: 1, Points: 3},
		{ID: uuid.New(), Options: []string{"a", "b", "c", "d"}, CorrectOption: 2, Points: 5},
	}
}

func testQuiz(questions []model.Question) model.Quiz {
	return model.Quiz{
		ID:          uuid.New(),
		DurationMin: 10,
		MaxGrade:    100,
	}
}

func newTestAttempt(t *testing.T) (*Attempt, []model.Question, *fakeStore, *fakeClock) {
	t.Helper()
	questions := testQuestions()
	quiz := testQuiz(questions)
	store := &fakeStore{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	a := New(quiz, questions, uuid.New(), store, WithClock(clock.Now))
	if err := a.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return a, questions, store, clock
}

func TestStartInitializesUnanswered(t *testing.T) {
	a, questions, _, _ := newTestAttempt(t)

	if a.State() != StateInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", a.State())
	}
	answers := a.Answers()
	if len(answers) != len(questions) {
		t.Fatalf("expected %d answer slots, got %d", len(questions), len(answers))
	}
	for i, ans := range answers {
		if ans != model.AnswerUnanswered {
			t.Fatalf("slot %d should be unanswered, got %d", i, ans)
		}
	}
	if a.Cursor() != 0 {
		t.Fatalf("cursor should start at 0, got %d", a.Cursor())
	}
}

func TestStartRejectsEmptyQuiz(t *testing.T) {
	a := New(model.Quiz{DurationMin: 5}, nil, uuid.New(), &fakeStore{})
	if err := a.Start(); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestStartIsOneShot(t *testing.T) {
	a, _, _, _ := newTestAttempt(t)
	if err := a.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestSelectOverwritesWithoutHistory(t *testing.T) {
	a, _, _, _ := newTestAttempt(t)

	if err := a.Select(1); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := a.Select(2); err != nil {
		t.Fatalf("re-select failed: %v", err)
	}
	if got := a.Answers()[0]; got != 2 {
		t.Fatalf("expected re-selection to win, got %d", got)
	}
}

func TestSelectRejectsOutOfRangeOption(t *testing.T) {
	a, _, _, _ := newTestAttempt(t)

	if err := a.Select(-1); !errors.Is(err, ErrOptionOutOfRange) {
		t.Fatalf("expected ErrOptionOutOfRange for -1, got %v", err)
	}
	// Question 0 has three options.
	if err := a.Select(3); !errors.Is(err, ErrOptionOutOfRange) {
		t.Fatalf("expected ErrOptionOutOfRange for 3, got %v", err)
	}
}

func TestCursorBounds(t *testing.T) {
	a, questions, _, _ := newTestAttempt(t)

	if err := a.Seek(-1); !errors.Is(err, ErrCursorOutOfRange) {
		t.Fatalf("expected ErrCursorOutOfRange, got %v", err)
	}
	if err := a.Seek(len(questions)); !errors.Is(err, ErrCursorOutOfRange) {
		t.Fatalf("expected ErrCursorOutOfRange, got %v", err)
	}

	if err := a.Next(); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if err := a.Prev(); err != nil {
		t.Fatalf("prev failed: %v", err)
	}
	if err := a.Prev(); !errors.Is(err, ErrCursorOutOfRange) {
		t.Fatalf("expected ErrCursorOutOfRange stepping before 0, got %v", err)
	}
}

func TestRemainingRecomputedFromWallClock(t *testing.T) {
	a, _, _, clock := newTestAttempt(t)

	if got := a.Remaining(); got != 10*time.Minute {
		t.Fatalf("expected 10m remaining, got %s", got)
	}

	// A suspension that would starve a decrementing counter must not
	// stretch the attempt: remaining derives from the start instant.
	clock.Advance(7 * time.Minute)
	if got := a.Remaining(); got != 3*time.Minute {
		t.Fatalf("expected 3m remaining after 7m elapsed, got %s", got)
	}

	clock.Advance(5 * time.Minute)
	if got := a.Remaining(); got != 0 {
		t.Fatalf("expected clamped 0 remaining, got %s", got)
	}
}

func TestTickSignalsExpiry(t *testing.T) {
	a, _, _, clock := newTestAttempt(t)

	if _, expired := a.Tick(); expired {
		t.Fatal("attempt should not be expired at start")
	}

	clock.Advance(10 * time.Minute)
	remaining, expired := a.Tick()
	if remaining != 0 || !expired {
		t.Fatalf("expected expiry at duration boundary, got remaining=%s expired=%v", remaining, expired)
	}
}

func TestDuplicateQuestionOccurrencesScoredIndependently(t *testing.T) {
	// A quiz may reference the same question twice; each occurrence gets
	// its own answer slot and its own share of the total.
	q := model.Question{ID: uuid.New(), Options: []string{"a", "b"}, CorrectOption: 1, Points: 4}
	questions := []model.Question{q, q}
	quiz := testQuiz(questions)

	store := &fakeStore{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	a := New(quiz, questions, uuid.New(), store, WithClock(clock.Now))
	if err := a.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// First occurrence right, second wrong.
	if err := a.Select(1); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := a.Next(); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if err := a.Select(0); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	attempt, err := a.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if len(attempt.Answers) != 2 || attempt.Answers[0] != 1 || attempt.Answers[1] != 0 {
		t.Fatalf("expected answers [1 0], got %v", attempt.Answers)
	}
	if attempt.Score != 4 {
		t.Fatalf("expected only the correct occurrence credited, got score %v", attempt.Score)
	}
	if attempt.TotalPoints != 8 {
		t.Fatalf("expected the weight counted once per occurrence, got total %v", attempt.TotalPoints)
	}
}

func TestSubmitScoresWithOverrides(t *testing.T) {
	questions := testQuestions()
	quiz := testQuiz(questions)
	// Override question 0's weight; questions 1 and 2 keep their own.
	quiz.QuestionPoints = map[uuid.UUID]float64{questions[0].ID: 10}

	store := &fakeStore{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	studentID := uuid.New()
	a := New(quiz, questions, studentID, store, WithClock(clock.Now))
	if err := a.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Correct on q0 (override 10) and q1 (3); q2 left unanswered.
	if err := a.Select(0); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := a.Next(); err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if err := a.Select(1); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	clock.Advance(4 * time.Minute)
	attempt, err := a.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if attempt.Score != 13 {
		t.Fatalf("expected score 13, got %v", attempt.Score)
	}
	if attempt.TotalPoints != 18 {
		t.Fatalf("expected total 18, got %v", attempt.TotalPoints)
	}
	if attempt.StudentID != studentID || attempt.QuizID != quiz.ID {
		t.Fatal("attempt record references wrong quiz or student")
	}
	if !attempt.CompletedAt.Equal(attempt.StartedAt.Add(4 * time.Minute)) {
		t.Fatalf("completion instant wrong: started %s completed %s", attempt.StartedAt, attempt.CompletedAt)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected exactly one persisted record, got %d", len(store.created))
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	a, _, store, _ := newTestAttempt(t)

	first, err := a.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// The timer callback and a user click can race into the same routine;
	// the second trigger must be a no-op returning the same record.
	second, err := a.Submit(context.Background())
	if err != nil {
		t.Fatalf("second submit errored: %v", err)
	}
	if first != second {
		t.Fatal("second submit should return the original record")
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one persisted record, got %d", len(store.created))
	}
	if a.State() != StateCompleted {
		t.Fatalf("expected COMPLETED, got %s", a.State())
	}
}

func TestSubmitFreezesAnswersOnPersistFailure(t *testing.T) {
	questions := testQuestions()
	quiz := testQuiz(questions)
	store := &fakeStore{err: errors.New("write timeout")}
	a := New(quiz, questions, uuid.New(), store)
	if err := a.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := a.Select(0); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	if _, err := a.Submit(context.Background()); err == nil {
		t.Fatal("expected submit to surface the persist failure")
	}
	if a.State() != StateSubmitting {
		t.Fatalf("expected SUBMITTING after failed persist, got %s", a.State())
	}

	// Answers are frozen the moment submission starts, even while retryable.
	if err := a.Select(1); !errors.Is(err, ErrAttemptClosed) {
		t.Fatalf("expected ErrAttemptClosed, got %v", err)
	}
	if err := a.Seek(1); !errors.Is(err, ErrAttemptClosed) {
		t.Fatalf("expected ErrAttemptClosed, got %v", err)
	}

	// Retry persists the identical frozen snapshot.
	store.err = nil
	attempt, err := a.Submit(context.Background())
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if attempt.Answers[0] != 0 {
		t.Fatalf("frozen answer changed: got %d", attempt.Answers[0])
	}
	if a.State() != StateCompleted {
		t.Fatalf("expected COMPLETED after retry, got %s", a.State())
	}
}

func TestExpirySubmitsFromAnyCursor(t *testing.T) {
	a, _, store, clock := newTestAttempt(t)

	if err := a.Seek(1); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if err := a.Select(1); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	clock.Advance(11 * time.Minute)
	if _, expired := a.Tick(); !expired {
		t.Fatal("expected expiry")
	}

	attempt, err := a.Submit(context.Background())
	if err != nil {
		t.Fatalf("expiry submit failed: %v", err)
	}
	if attempt.Score != 3 {
		t.Fatalf("expected score 3 for the one correct answer, got %v", attempt.Score)
	}
	if attempt.Answers[0] != model.AnswerUnanswered || attempt.Answers[2] != model.AnswerUnanswered {
		t.Fatal("unanswered slots should keep the sentinel")
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one record, got %d", len(store.created))
	}
}

func TestResultNilBeforeCompletion(t *testing.T) {
	a, _, _, _ := newTestAttempt(t)
	if a.Result() != nil {
		t.Fatal("result should be nil before submission")
	}
	if _, err := a.Submit(context.Background()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if a.Result() == nil {
		t.Fatal("result should be available after completion")
	}
}

func TestMutationsRequireStart(t *testing.T) {
	a := New(testQuiz(nil), testQuestions(), uuid.New(), &fakeStore{})

	if err := a.Select(0); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
	if err := a.Seek(1); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
	if _, err := a.Submit(context.Background()); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
}
