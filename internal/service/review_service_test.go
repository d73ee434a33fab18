package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quizdesk/quizdesk-backend/internal/model"
)

func reviewFixture(flags model.ReviewOptions) (*model.Attempt, *model.Quiz, []model.Question) {
	feedback := "revisit subnet masks"
	questions := []model.Question{
		{ID: uuid.New(), Text: "q1", Options: []string{"a", "b"}, CorrectOption: 0, Points: 2},
		{ID: uuid.New(), Text: "q2", Options: []string{"a", "b", "c"}, CorrectOption: 2, Points: 3, Feedback: &feedback},
		{ID: uuid.New(), Text: "q3", Options: []string{"a", "b"}, CorrectOption: 1, Points: 5},
	}
	quiz := &model.Quiz{
		ID:     uuid.New(),
		Review: flags,
	}
	// Correct, wrong, unanswered.
	attempt := &model.Attempt{
		ID:          uuid.New(),
		QuizID:      quiz.ID,
		StudentID:   uuid.New(),
		Answers:     []int{0, 1, model.AnswerUnanswered},
		Score:       2,
		TotalPoints: 10,
		CompletedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	return attempt, quiz, questions
}

func TestBuildReviewAllFlagsOff(t *testing.T) {
	attempt, quiz, questions := reviewFixture(model.ReviewOptions{})

	review := BuildReview(attempt, quiz, questions)

	if review.Score != nil || review.TotalPoints != nil || review.Percentage != nil {
		t.Fatal("aggregate score must stay hidden without show_marks")
	}
	if len(review.Questions) != 3 {
		t.Fatalf("expected 3 items, got %d", len(review.Questions))
	}
	for i, item := range review.Questions {
		if item.EarnedPoints != nil || item.PossiblePoints != nil {
			t.Fatalf("item %d leaks points", i)
		}
		if item.Correct != nil {
			t.Fatalf("item %d leaks correctness", i)
		}
		if item.CorrectOption != nil || item.Feedback != nil {
			t.Fatalf("item %d leaks the right answer", i)
		}
	}
	// The student's own selections are always visible.
	if review.Questions[0].SelectedOption != 0 || !review.Questions[0].Answered {
		t.Fatal("selection missing from item 0")
	}
	if review.Questions[2].Answered {
		t.Fatal("unanswered slot reported as answered")
	}
}

func TestBuildReviewShowMarks(t *testing.T) {
	attempt, quiz, questions := reviewFixture(model.ReviewOptions{ShowMarks: true})

	review := BuildReview(attempt, quiz, questions)

	if review.Score == nil || *review.Score != 2 {
		t.Fatalf("expected score 2, got %v", review.Score)
	}
	if review.TotalPoints == nil || *review.TotalPoints != 10 {
		t.Fatalf("expected total 10, got %v", review.TotalPoints)
	}
	if review.Percentage == nil || *review.Percentage != 20 {
		t.Fatalf("expected 20%%, got %v", review.Percentage)
	}

	first := review.Questions[0]
	if first.PossiblePoints == nil || *first.PossiblePoints != 2 {
		t.Fatalf("expected possible 2, got %v", first.PossiblePoints)
	}
	if first.EarnedPoints == nil || *first.EarnedPoints != 2 {
		t.Fatalf("expected earned 2, got %v", first.EarnedPoints)
	}
	wrong := review.Questions[1]
	if wrong.EarnedPoints == nil || *wrong.EarnedPoints != 0 {
		t.Fatalf("wrong answer should earn 0, got %v", wrong.EarnedPoints)
	}
	if wrong.Correct != nil {
		t.Fatal("show_marks alone must not reveal correctness")
	}
}

func TestBuildReviewShowMarksHonorsOverrides(t *testing.T) {
	attempt, quiz, questions := reviewFixture(model.ReviewOptions{ShowMarks: true})
	quiz.QuestionPoints = map[uuid.UUID]float64{questions[0].ID: 7}

	review := BuildReview(attempt, quiz, questions)
	if got := review.Questions[0].PossiblePoints; got == nil || *got != 7 {
		t.Fatalf("expected overridden 7 points, got %v", got)
	}
}

func TestBuildReviewShowWhetherCorrect(t *testing.T) {
	attempt, quiz, questions := reviewFixture(model.ReviewOptions{ShowWhetherCorrect: true})

	review := BuildReview(attempt, quiz, questions)

	if c := review.Questions[0].Correct; c == nil || !*c {
		t.Fatal("item 0 should be marked correct")
	}
	if c := review.Questions[1].Correct; c == nil || *c {
		t.Fatal("item 1 should be marked wrong")
	}
	if c := review.Questions[2].Correct; c == nil || *c {
		t.Fatal("unanswered counts as wrong")
	}
	if review.Questions[1].CorrectOption != nil {
		t.Fatal("correctness flag must not reveal the right answer")
	}
}

func TestBuildReviewShowRightAnswerOnlyWhenWrong(t *testing.T) {
	attempt, quiz, questions := reviewFixture(model.ReviewOptions{ShowRightAnswer: true})

	review := BuildReview(attempt, quiz, questions)

	if review.Questions[0].CorrectOption != nil {
		t.Fatal("a correct answer needs no reveal")
	}
	if got := review.Questions[1].CorrectOption; got == nil || *got != 2 {
		t.Fatalf("expected correct option 2 on the wrong item, got %v", got)
	}
	if got := review.Questions[2].CorrectOption; got == nil || *got != 1 {
		t.Fatalf("unanswered should also get the reveal, got %v", got)
	}
	// Without show_feedback the remedial text stays hidden.
	if review.Questions[1].Feedback != nil {
		t.Fatal("feedback requires its own flag")
	}
}

func TestBuildReviewFeedbackRequiresRightAnswerFlag(t *testing.T) {
	// show_feedback alone does nothing: feedback rides on the reveal.
	attempt, quiz, questions := reviewFixture(model.ReviewOptions{ShowFeedback: true})
	review := BuildReview(attempt, quiz, questions)
	if review.Questions[1].Feedback != nil {
		t.Fatal("feedback without show_right_answer must stay hidden")
	}

	attempt, quiz, questions = reviewFixture(model.ReviewOptions{ShowRightAnswer: true, ShowFeedback: true})
	review = BuildReview(attempt, quiz, questions)
	if got := review.Questions[1].Feedback; got == nil || *got != "revisit subnet masks" {
		t.Fatalf("expected feedback on the wrong item, got %v", got)
	}
	// q3 has no feedback authored; the reveal alone is shown.
	if review.Questions[2].Feedback != nil {
		t.Fatal("no authored feedback means no feedback field")
	}
}

func TestBuildReviewToleratesShorterAnswerSlice(t *testing.T) {
	attempt, quiz, questions := reviewFixture(model.ReviewOptions{ShowWhetherCorrect: true})
	// A question appended to the quiz after this attempt completed.
	attempt.Answers = attempt.Answers[:2]

	review := BuildReview(attempt, quiz, questions)
	last := review.Questions[2]
	if last.Answered {
		t.Fatal("slot beyond the recorded answers is unanswered")
	}
	if last.Correct == nil || *last.Correct {
		t.Fatal("missing slot scores as wrong")
	}
}

func TestAttemptPercentage(t *testing.T) {
	a := &model.Attempt{Score: 1, TotalPoints: 3}
	if got := a.Percentage(); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}

	zero := &model.Attempt{Score: 0, TotalPoints: 0}
	if got := zero.Percentage(); got != 0 {
		t.Fatalf("zero-total quiz should report 0, got %d", got)
	}
}
