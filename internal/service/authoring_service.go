package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdesk/quizdesk-backend/internal/model"
	"github.com/quizdesk/quizdesk-backend/internal/repository"
)

// Domain Errors
var (
	ErrNoEligibleQuestions = errors.New("no eligible questions in the requested scope")
	ErrUnknownQuestions    = errors.New("one or more question ids do not exist")
	ErrInvalidAnchor       = errors.New("anchor does not reference anything in this quiz")
	ErrUnknownSection      = errors.New("section does not exist in this quiz")
)

// AuthoringService mutates a quiz's ordered question sequence and its section
// headings. All operations load the quiz document, rewrite the sequence in
// memory, and persist the whole document back — the ordered id list is the
// single source of order.
type AuthoringService struct {
	quizRepo     *repository.QuizRepository
	questionRepo *repository.QuestionRepository
	quizService  *QuizService
	rng          *rand.Rand
	log          zerolog.Logger
}

// NewAuthoringService creates a new AuthoringService. rng backs random
// question selection; pass a seeded source in tests.
func NewAuthoringService(
	quizRepo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	quizService *QuizService,
	rng *rand.Rand,
	log zerolog.Logger,
) *AuthoringService {
	return &AuthoringService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		quizService:  quizService,
		rng:          rng,
		log:          log.With().Str("component", "authoring_service").Logger(),
	}
}

// InsertQuestions splices the given question ids into the quiz's sequence at
// the anchor position. Ids already present in the sequence are skipped, so a
// single bulk add never introduces duplicates (duplicates across separate
// operations remain legal). All ids must reference live questions.
func (s *AuthoringService) InsertQuestions(ctx context.Context, quizID uuid.UUID, anchor model.AnchorRef, ids []uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	existing, err := s.questionRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check question ids: %w", err)
	}
	if len(existing) != len(uniqueIDs(ids)) {
		return nil, ErrUnknownQuestions
	}

	if err := spliceQuestions(quiz, anchor, ids); err != nil {
		return nil, err
	}
	return s.saveQuiz(ctx, quiz)
}

// InsertRandom draws count previously-unused questions from the scope (one
// course, or all courses when courseID is nil) and splices them at the
// anchor. The draw is a uniform sample without replacement; when the pool is
// smaller than count the whole pool is used.
func (s *AuthoringService) InsertRandom(ctx context.Context, quizID uuid.UUID, anchor model.AnchorRef, count int, courseID *uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	var pool []model.Question
	if courseID != nil {
		pool, err = s.questionRepo.ListByCourse(ctx, *courseID)
	} else {
		pool, err = s.questionRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}

	picked := pickRandom(pool, quiz.QuestionIDs, count, s.rng)
	if len(picked) == 0 {
		return nil, ErrNoEligibleQuestions
	}

	if err := spliceQuestions(quiz, anchor, picked); err != nil {
		return nil, err
	}
	return s.saveQuiz(ctx, quiz)
}

// RemoveQuestion deletes every occurrence of the question id from the
// sequence and drops its point override. A section anchored to the removed
// question keeps its now-dangling anchor: the heading simply stops matching a
// position until the author re-anchors it.
func (s *AuthoringService) RemoveQuestion(ctx context.Context, quizID, questionID uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	kept := quiz.QuestionIDs[:0]
	for _, id := range quiz.QuestionIDs {
		if id != questionID {
			kept = append(kept, id)
		}
	}
	quiz.QuestionIDs = kept
	delete(quiz.QuestionPoints, questionID)

	return s.saveQuiz(ctx, quiz)
}

// AddSection appends a new section heading whose anchor is computed from the
// current sequence: sequence-start anchors to the first question (nil when
// the sequence is empty), sequence-end is a trailing section with no anchor,
// and after-question anchors to the question immediately following the
// target (nil when the target is last or absent).
func (s *AuthoringService) AddSection(ctx context.Context, quizID uuid.UUID, title string, shuffle bool, anchor model.AnchorRef) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	var start *uuid.UUID
	switch anchor.Kind {
	case model.AnchorStart:
		if len(quiz.QuestionIDs) > 0 {
			id := quiz.QuestionIDs[0]
			start = &id
		}
	case model.AnchorEnd, "":
		start = nil
	case model.AnchorAfterQuestion:
		if anchor.TargetID == nil {
			return nil, ErrInvalidAnchor
		}
		for i, id := range quiz.QuestionIDs {
			if id == *anchor.TargetID && i+1 < len(quiz.QuestionIDs) {
				next := quiz.QuestionIDs[i+1]
				start = &next
				break
			}
		}
	default:
		return nil, ErrInvalidAnchor
	}

	quiz.Sections = append(quiz.Sections, model.Section{
		ID:              uuid.New(),
		Title:           title,
		StartQuestionID: start,
		Shuffle:         shuffle,
	})
	return s.saveQuiz(ctx, quiz)
}

// RemoveSection deletes a section heading. The question sequence is left
// untouched; only the heading disappears.
func (s *AuthoringService) RemoveSection(ctx context.Context, quizID, sectionID uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	kept := quiz.Sections[:0]
	for _, section := range quiz.Sections {
		if section.ID != sectionID {
			kept = append(kept, section)
		}
	}
	if len(kept) == len(quiz.Sections) {
		return nil, ErrUnknownSection
	}
	quiz.Sections = kept

	return s.saveQuiz(ctx, quiz)
}

// SetQuestionPoints writes or clears a per-question point override.
func (s *AuthoringService) SetQuestionPoints(ctx context.Context, quizID, questionID uuid.UUID, points *float64) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if points == nil {
		delete(quiz.QuestionPoints, questionID)
	} else {
		if quiz.QuestionPoints == nil {
			quiz.QuestionPoints = map[uuid.UUID]float64{}
		}
		quiz.QuestionPoints[questionID] = *points
	}
	return s.saveQuiz(ctx, quiz)
}

func (s *AuthoringService) saveQuiz(ctx context.Context, quiz *model.Quiz) (*model.Quiz, error) {
	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}
	s.quizService.InvalidateQuizCache(ctx, quiz.ID)
	return quiz, nil
}

// spliceQuestions inserts newIDs into the quiz sequence at the anchor
// position, skipping any id already present. When the anchor is a section
// with a live start question, the new ids land immediately before it and the
// section is repointed to the first inserted id, so the heading keeps
// preceding its intended content.
func spliceQuestions(quiz *model.Quiz, anchor model.AnchorRef, newIDs []uuid.UUID) error {
	present := make(map[uuid.UUID]struct{}, len(quiz.QuestionIDs))
	for _, id := range quiz.QuestionIDs {
		present[id] = struct{}{}
	}

	toInsert := make([]uuid.UUID, 0, len(newIDs))
	for _, id := range newIDs {
		if _, ok := present[id]; ok {
			continue
		}
		present[id] = struct{}{}
		toInsert = append(toInsert, id)
	}
	if len(toInsert) == 0 {
		return nil
	}

	pos := len(quiz.QuestionIDs)
	var section *model.Section

	switch anchor.Kind {
	case model.AnchorStart:
		pos = 0
	case model.AnchorEnd, "":
		pos = len(quiz.QuestionIDs)
	case model.AnchorAfterQuestion:
		if anchor.TargetID == nil {
			return ErrInvalidAnchor
		}
		// Unknown target falls through to append.
		for i, id := range quiz.QuestionIDs {
			if id == *anchor.TargetID {
				pos = i + 1
				break
			}
		}
	case model.AnchorSection:
		if anchor.TargetID == nil {
			return ErrInvalidAnchor
		}
		for i := range quiz.Sections {
			if quiz.Sections[i].ID == *anchor.TargetID {
				section = &quiz.Sections[i]
				break
			}
		}
		if section == nil {
			return ErrInvalidAnchor
		}
		if section.StartQuestionID != nil {
			for i, id := range quiz.QuestionIDs {
				if id == *section.StartQuestionID {
					pos = i
					break
				}
			}
		}
		// A trailing section (nil anchor) appends and stays trailing; a
		// section with a live anchor adopts the first inserted question.
		if section.StartQuestionID != nil {
			first := toInsert[0]
			section.StartQuestionID = &first
		}
	default:
		return ErrInvalidAnchor
	}

	seq := make([]uuid.UUID, 0, len(quiz.QuestionIDs)+len(toInsert))
	seq = append(seq, quiz.QuestionIDs[:pos]...)
	seq = append(seq, toInsert...)
	seq = append(seq, quiz.QuestionIDs[pos:]...)
	quiz.QuestionIDs = seq
	return nil
}

// pickRandom samples up to count questions from pool, excluding any id
// already in the sequence. The sample is uniform without replacement.
func pickRandom(pool []model.Question, sequence []uuid.UUID, count int, rng *rand.Rand) []uuid.UUID {
	used := make(map[uuid.UUID]struct{}, len(sequence))
	for _, id := range sequence {
		used[id] = struct{}{}
	}

	eligible := make([]uuid.UUID, 0, len(pool))
	for i := range pool {
		if _, ok := used[pool[i].ID]; ok {
			continue
		}
		eligible = append(eligible, pool[i].ID)
	}
	if len(eligible) == 0 || count <= 0 {
		return nil
	}

	rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if count < len(eligible) {
		eligible = eligible[:count]
	}
	return eligible
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
