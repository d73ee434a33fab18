package service

import (
	"github.com/google/uuid"

	"github.com/quizdesk/quizdesk-backend/internal/model"
)

// ResolveQuestions turns a quiz's ordered id list into the ordered question
// slice students actually see. The id list is the single source of order;
// ids with no live question are dropped without shifting the survivors'
// relative order, and duplicated ids resolve independently — each occurrence
// is its own slot with its own answer.
func ResolveQuestions(quiz *model.Quiz, byID map[uuid.UUID]*model.Question) []model.Question {
	resolved := make([]model.Question, 0, len(quiz.QuestionIDs))
	for _, id := range quiz.QuestionIDs {
		q, ok := byID[id]
		if !ok {
			continue
		}
		resolved = append(resolved, *q)
	}
	return resolved
}

// SectionStartIndex maps a section to its anchor's position in the resolved
// slice. A nil or dangling anchor yields -1: the section exists but currently
// marks no position.
func SectionStartIndex(section *model.Section, questions []model.Question) int {
	if section.StartQuestionID == nil {
		return -1
	}
	for i := range questions {
		if questions[i].ID == *section.StartQuestionID {
			return i
		}
	}
	return -1
}
