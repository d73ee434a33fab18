package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/quizdesk/quizdesk-backend/internal/config"
	"github.com/quizdesk/quizdesk-backend/internal/database"
	"github.com/quizdesk/quizdesk-backend/internal/logger"
	"github.com/quizdesk/quizdesk-backend/internal/model"
	"github.com/quizdesk/quizdesk-backend/internal/repository"
	"github.com/quizdesk/quizdesk-backend/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	courseRepo := repository.NewCourseRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)

	courseService := service.NewCourseService(courseRepo, log)
	questionService := service.NewQuestionService(questionRepo, log)
	quizService := service.NewQuizService(quizRepo, questionRepo, rdb, log)
	studentService := service.NewStudentService(studentRepo, log)
	authoringService := service.NewAuthoringService(
		quizRepo, questionRepo, quizService,
		rand.New(rand.NewSource(time.Now().UnixNano())), log)

	fmt.Println("=== Seeding demo course, questions, quiz, and students ===")

	course, err := courseService.Create(ctx, &model.CreateCourseRequest{
		Name:        "Introduction to Networks",
		ShortCode:   "NET101",
		Description: "Fundamentals of computer networking.",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create course")
	}
	fmt.Printf("Created course %s (%s)\n", course.Name, course.ID)

	questionIDs := make([]uuid.UUID, 0, 10)
	for i := 1; i <= 10; i++ {
		feedback := fmt.Sprintf("Review chapter %d for the underlying concept.", (i%4)+1)
		q, err := questionService.Create(ctx, &model.CreateQuestionRequest{
			CourseID: course.ID,
			Text:     fmt.Sprintf("Sample networking question #%d: which option is correct?", i),
			Options: []string{
				"Option A", "Option B", "Option C", "Option D",
			},
			CorrectOption: i % 4,
			Points:        float64(1 + i%3),
			Feedback:      &feedback,
		})
		if err != nil {
			log.Fatal().Err(err).Int("n", i).Msg("Failed to create question")
		}
		questionIDs = append(questionIDs, q.ID)
	}
	fmt.Printf("Created %d questions\n", len(questionIDs))

	quiz, err := quizService.Create(ctx, &model.CreateQuizRequest{
		CourseID:    course.ID,
		Title:       "Networks Midterm",
		Description: "Covers the first half of the course.",
		DurationMin: 30,
		MaxGrade:    100,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create quiz")
	}

	quiz, err = authoringService.InsertQuestions(ctx, quiz.ID,
		model.AnchorRef{Kind: model.AnchorEnd}, questionIDs[:8])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to insert questions")
	}

	quiz, err = authoringService.AddSection(ctx, quiz.ID, "Fundamentals", false,
		model.AnchorRef{Kind: model.AnchorStart})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add section")
	}
	quiz, err = authoringService.AddSection(ctx, quiz.ID, "Applied", false,
		model.AnchorRef{Kind: model.AnchorAfterQuestion, TargetID: &questionIDs[3]})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add section")
	}

	review := model.ReviewOptions{
		ShowMarks:          true,
		ShowWhetherCorrect: true,
		ShowRightAnswer:    true,
		ShowFeedback:       true,
	}
	if _, err := quizService.Update(ctx, quiz.ID, &model.UpdateQuizRequest{Review: &review}); err != nil {
		log.Fatal().Err(err).Msg("Failed to enable review options")
	}
	fmt.Printf("Created quiz %s with %d questions and %d sections\n",
		quiz.Title, len(quiz.QuestionIDs), len(quiz.Sections))

	for i := 1; i <= 5; i++ {
		s, err := studentService.Create(ctx, &model.CreateStudentRequest{
			Email:       fmt.Sprintf("student%02d@example.edu", i),
			DisplayName: fmt.Sprintf("Demo Student %02d", i),
			CourseIDs:   []uuid.UUID{course.ID},
		})
		if err != nil {
			log.Fatal().Err(err).Int("n", i).Msg("Failed to create student")
		}
		fmt.Printf("Created student %s (%s)\n", s.DisplayName, s.ID)
	}

	fmt.Println("=== Seeding complete ===")
}
