package service

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/quizdesk/quizdesk-backend/internal/model"
)

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func sequenceEquals(t *testing.T, got, want []uuid.UUID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("sequence length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sequence differs at %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestSpliceAtStart(t *testing.T) {
	q := ids(4)
	quiz := &model.Quiz{QuestionIDs: []uuid.UUID{q[0], q[1]}}

	err := spliceQuestions(quiz, model.AnchorRef{Kind: model.AnchorStart}, []uuid.UUID{q[2], q[3]})
	if err != nil {
		t.Fatalf("splice failed: %v", err)
	}
	sequenceEquals(t, quiz.QuestionIDs, []uuid.UUID{q[2], q[3], q[0], q[1]})
}

func TestSpliceAtEndAndDefault(t *testing.T) {
	q := ids(3)
	quiz := &model.Quiz{QuestionIDs: []uuid.UUID{q[0]}}

	if err := spliceQuestions(quiz, model.AnchorRef{Kind: model.AnchorEnd}, []uuid.UUID{q[1]}); err != nil {
		t.Fatalf("splice failed: %v", err)
	}
	// An empty kind means end.
	if err := spliceQuestions(quiz, model.AnchorRef{}, []uuid.UUID{q[2]}); err != nil {
		t.Fatalf("splice failed: %v", err)
	}
	sequenceEquals(t, quiz.QuestionIDs, []uuid.UUID{q[0], q[1], q[2]})
}

func TestSpliceAfterQuestion(t *testing.T) {
	q := ids(4)
	quiz := &model.Quiz{QuestionIDs: []uuid.UUID{q[0], q[1]}}

	anchor := model.AnchorRef{Kind: model.AnchorAfterQuestion, TargetID: &q[0]}
	if err := spliceQuestions(quiz, anchor, []uuid.UUID{q[2], q[3]}); err != nil {
		t.Fatalf("splice failed: %v", err)
	}
	sequenceEquals(t, quiz.QuestionIDs, []uuid.UUID{q[0], q[2], q[3], q[1]})
}

func TestSpliceAfterUnknownQuestionAppends(t *testing.T) {
	q := ids(3)
	missing := uuid.New()
	quiz := &model.Quiz{QuestionIDs: []uuid.UUID{q[0], q[1]}}

	anchor := model.AnchorRef{Kind: model.AnchorAfterQuestion, TargetID: &missing}
	if err := spliceQuestions(quiz, anchor, []uuid.UUID{q[2]}); err != nil {
		t.Fatalf("splice failed: %v", err)
	}
	sequenceEquals(t, quiz.QuestionIDs, []uuid.UUID{q[0], q[1], q[2]})
}

func TestSpliceSkipsAlreadyPresent(t *testing.T) {
	q := ids(3)
	quiz := &model.Quiz{QuestionIDs: []uuid.UUID{q[0], q[1]}}

	// q0 is present, so only q2 lands; a fully-duplicate batch is a no-op.
	if err := spliceQuestions(quiz, model.AnchorRef{Kind: model.AnchorEnd}, []uuid.UUID{q[0], q[2]}); err != nil {
		t.Fatalf("splice failed: %v", err)
	}
	sequenceEquals(t, quiz.QuestionIDs, []uuid.UUID{q[0], q[1], q[2]})

	if err := spliceQuestions(quiz, model.AnchorRef{Kind: model.AnchorEnd}, []uuid.UUID{q[0], q[1]}); err != nil {
		t.Fatalf("splice failed: %v", err)
	}
	sequenceEquals(t, quiz.QuestionIDs, []uuid.UUID{q[0], q[1], q[2]})
}

func TestSpliceBeforeSectionRepointsAnchor(t *testing.T) {
	q := ids(4)
	sectionID := uuid.New()
	quiz := &model.Quiz{
		QuestionIDs: []uuid.UUID{q[0], q[1]},
		Sections: []model.Section{
			{ID: sectionID, Title: "Part B", StartQuestionID: &q[1]},
		},
	}

	anchor := model.AnchorRef{Kind: model.AnchorSection, TargetID: &sectionID}
	if err := spliceQuestions(quiz, anchor, []uuid.UUID{q[2], q[3]}); err != nil {
		t.Fatalf("splice failed: %v", err)
	}

	// New questions precede the section's old start, and the section now
	// begins at the first inserted question so its heading still covers them.
	sequenceEquals(t, quiz.QuestionIDs, []uuid.UUID{q[0], q[2], q[3], q[1]})
	if got := quiz.Sections[0].StartQuestionID; got == nil || *got != q[2] {
		t.Fatalf("section should repoint to first inserted id, got %v", got)
	}
}

func TestSpliceIntoTrailingSectionAppends(t *testing.T) {
	q := ids(3)
	sectionID := uuid.New()
	quiz := &model.Quiz{
		QuestionIDs: []uuid.UUID{q[0], q[1]},
		Sections: []model.Section{
			{ID: sectionID, Title: "Extras", StartQuestionID: nil},
		},
	}

	anchor := model.AnchorRef{Kind: model.AnchorSection, TargetID: &sectionID}
	if err := spliceQuestions(quiz, anchor, []uuid.UUID{q[2]}); err != nil {
		t.Fatalf("splice failed: %v", err)
	}

	sequenceEquals(t, quiz.QuestionIDs, []uuid.UUID{q[0], q[1], q[2]})
	if quiz.Sections[0].StartQuestionID != nil {
		t.Fatal("trailing section should keep its nil anchor")
	}
}

func TestSpliceUnknownSectionRejected(t *testing.T) {
	missing := uuid.New()
	quiz := &model.Quiz{QuestionIDs: ids(2)}

	anchor := model.AnchorRef{Kind: model.AnchorSection, TargetID: &missing}
	err := spliceQuestions(quiz, anchor, ids(1))
	if !errors.Is(err, ErrInvalidAnchor) {
		t.Fatalf("expected ErrInvalidAnchor, got %v", err)
	}
}

func TestSpliceRejectsUnknownKind(t *testing.T) {
	quiz := &model.Quiz{}
	err := spliceQuestions(quiz, model.AnchorRef{Kind: "between"}, ids(1))
	if !errors.Is(err, ErrInvalidAnchor) {
		t.Fatalf("expected ErrInvalidAnchor, got %v", err)
	}
}

func TestPickRandomExcludesUsedQuestions(t *testing.T) {
	pool := make([]model.Question, 5)
	for i := range pool {
		pool[i] = model.Question{ID: uuid.New()}
	}
	sequence := []uuid.UUID{pool[0].ID, pool[1].ID}

	rng := rand.New(rand.NewSource(42))
	picked := pickRandom(pool, sequence, 10, rng)

	if len(picked) != 3 {
		t.Fatalf("expected the 3 unused questions, got %d", len(picked))
	}
	seen := map[uuid.UUID]struct{}{}
	for _, id := range picked {
		if id == pool[0].ID || id == pool[1].ID {
			t.Fatal("picked a question already in the sequence")
		}
		if _, dup := seen[id]; dup {
			t.Fatal("picked the same question twice")
		}
		seen[id] = struct{}{}
	}
}

func TestPickRandomHonorsCount(t *testing.T) {
	pool := make([]model.Question, 8)
	for i := range pool {
		pool[i] = model.Question{ID: uuid.New()}
	}

	rng := rand.New(rand.NewSource(7))
	picked := pickRandom(pool, nil, 3, rng)
	if len(picked) != 3 {
		t.Fatalf("expected 3 picks, got %d", len(picked))
	}
}

func TestPickRandomEmptyPool(t *testing.T) {
	pool := []model.Question{{ID: uuid.New()}}
	sequence := []uuid.UUID{pool[0].ID}

	rng := rand.New(rand.NewSource(1))
	if picked := pickRandom(pool, sequence, 2, rng); picked != nil {
		t.Fatalf("expected nil for an exhausted pool, got %v", picked)
	}
	if picked := pickRandom(nil, nil, 2, rng); picked != nil {
		t.Fatalf("expected nil for an empty pool, got %v", picked)
	}
}
