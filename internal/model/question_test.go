package model

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func validQuestion() Question {
	return Question{
		Text:          "What does TTL stand for?",
		Options:       []string{"Time To Live", "Total Transfer Length", "Try To Lookup"},
		CorrectOption: 0,
		Points:        1,
	}
}

func TestQuestionValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Question)
		wantErr error
	}{
		{"valid", func(q *Question) {}, nil},
		{"one option", func(q *Question) { q.Options = q.Options[:1] }, ErrTooFewOptions},
		{"negative correct index", func(q *Question) { q.CorrectOption = -1 }, ErrCorrectOptionOutOfSet},
		{"correct index past options", func(q *Question) { q.CorrectOption = 3 }, ErrCorrectOptionOutOfSet},
		{"secondary longer than options", func(q *Question) {
			q.SecondaryOptions = []string{"a", "b", "c", "d"}
		}, ErrSecondaryOptionsLength},
		{"secondary shorter is fine", func(q *Question) {
			q.SecondaryOptions = []string{"a"}
		}, nil},
		{"zero points", func(q *Question) { q.Points = 0 }, ErrNonPositivePoints},
		{"negative points", func(q *Question) { q.Points = -2 }, ErrNonPositivePoints},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuestion()
			tc.mutate(&q)
			err := q.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestForStudentStripsAnswerKey(t *testing.T) {
	feedback := "read the RFC"
	q := validQuestion()
	q.Feedback = &feedback

	view := q.ForStudent()
	if view.Text != q.Text || len(view.Options) != len(q.Options) {
		t.Fatal("student view lost question content")
	}
	// The stripped struct simply has no answer-key or feedback fields; this
	// test pins that the content fields are complete.
	if view.SecondaryText != q.SecondaryText || view.ImageURL != q.ImageURL {
		t.Fatal("student view lost optional content")
	}
}

func TestEffectivePoints(t *testing.T) {
	q := validQuestion()
	q.ID = uuid.New()
	q.Points = 4
	quiz := Quiz{}

	if got := quiz.EffectivePoints(&q); got != 4 {
		t.Fatalf("expected the question's own 4 points, got %v", got)
	}

	quiz.QuestionPoints = map[uuid.UUID]float64{q.ID: 9}
	if got := quiz.EffectivePoints(&q); got != 9 {
		t.Fatalf("expected the override 9, got %v", got)
	}
}
