package service

import (
	"testing"

	"github.com/google/uuid"

	"github.com/quizdesk/quizdesk-backend/internal/model"
)

func TestResolveQuestionsPreservesOrderAndDropsGaps(t *testing.T) {
	alive := []model.Question{
		{ID: uuid.New(), Text: "first"},
		{ID: uuid.New(), Text: "second"},
	}
	deleted := uuid.New()

	byID := map[uuid.UUID]*model.Question{
		alive[0].ID: &alive[0],
		alive[1].ID: &alive[1],
	}
	quiz := &model.Quiz{
		QuestionIDs: []uuid.UUID{alive[1].ID, deleted, alive[0].ID},
	}

	resolved := ResolveQuestions(quiz, byID)
	if len(resolved) != 2 {
		t.Fatalf("expected 2 resolved questions, got %d", len(resolved))
	}
	// The dangling id disappears; survivors keep their relative order.
	if resolved[0].Text != "second" || resolved[1].Text != "first" {
		t.Fatalf("order not preserved: %q then %q", resolved[0].Text, resolved[1].Text)
	}
}

func TestResolveQuestionsDuplicatesGetOwnSlots(t *testing.T) {
	q := model.Question{ID: uuid.New(), Text: "repeated"}
	byID := map[uuid.UUID]*model.Question{q.ID: &q}
	quiz := &model.Quiz{QuestionIDs: []uuid.UUID{q.ID, q.ID}}

	resolved := ResolveQuestions(quiz, byID)
	if len(resolved) != 2 {
		t.Fatalf("each occurrence should resolve to its own slot, got %d", len(resolved))
	}
}

func TestSectionStartIndex(t *testing.T) {
	questions := []model.Question{
		{ID: uuid.New()},
		{ID: uuid.New()},
	}
	dangling := uuid.New()

	anchored := &model.Section{StartQuestionID: &questions[1].ID}
	if got := SectionStartIndex(anchored, questions); got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}

	trailing := &model.Section{StartQuestionID: nil}
	if got := SectionStartIndex(trailing, questions); got != -1 {
		t.Fatalf("trailing section should yield -1, got %d", got)
	}

	orphaned := &model.Section{StartQuestionID: &dangling}
	if got := SectionStartIndex(orphaned, questions); got != -1 {
		t.Fatalf("dangling anchor should yield -1, got %d", got)
	}
}
