package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/quizdesk/quizdesk-backend/internal/engine"
	"github.com/quizdesk/quizdesk-backend/internal/middleware"
	"github.com/quizdesk/quizdesk-backend/internal/service"
	ws "github.com/quizdesk/quizdesk-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// AttemptStreamHandler runs live quiz attempts over WebSocket. Each
// connection owns one engine instance: the socket carries cursor moves and
// answer selections in, and countdown ticks and the final result out.
type AttemptStreamHandler struct {
	attemptService *service.AttemptService
	quizService    *service.QuizService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewAttemptStreamHandler creates a new AttemptStreamHandler.
func NewAttemptStreamHandler(
	attemptService *service.AttemptService,
	quizService *service.QuizService,
	log zerolog.Logger,
	allowedOrigins []string,
) *AttemptStreamHandler {
	return &AttemptStreamHandler{
		attemptService: attemptService,
		quizService:    quizService,
		log:            log.With().Str("component", "attempt_stream_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// attemptSession serializes writes to one connection: the read loop and the
// countdown ticker both produce frames.
type attemptSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *attemptSession) write(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ws.WriteTyped(s.conn, v)
}

func (s *attemptSession) writeError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = ws.WriteError(s.conn, msg)
}

// Stream godoc
// WS /ws/v1/student/quizzes/:quiz_id/attempt
// Upgrades to WebSocket and runs a single timed attempt end to end.
func (h *AttemptStreamHandler) Stream(c *gin.Context) {
	studentID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	session := &attemptSession{conn: conn}
	ctx := c.Request.Context()

	_, _, err = h.attemptService.Admit(ctx, quizID, studentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotEnrolled):
			session.writeError("not enrolled in this quiz's course")
		case errors.Is(err, service.ErrAlreadyAttempted):
			session.writeError("quiz already attempted")
		case errors.Is(err, pgx.ErrNoRows):
			session.writeError("quiz not found")
		default:
			h.log.Error().Err(err).Msg("Admission check failed")
			session.writeError("admission check failed")
		}
		return
	}

	quiz, questions, err := h.quizService.ResolveQuiz(ctx, quizID)
	if err != nil {
		h.log.Error().Err(err).Str("quiz_id", quizID.String()).Msg("Quiz resolution failed")
		session.writeError("failed to load quiz")
		return
	}

	eng := engine.New(*quiz, questions, studentID, h.attemptService)
	if err := eng.Start(); err != nil {
		if errors.Is(err, engine.ErrNoQuestions) {
			session.writeError("quiz has no questions")
		} else {
			session.writeError("failed to start attempt")
		}
		return
	}

	wsLog := h.log.With().
		Str("student_id", studentID.String()).
		Str("quiz_id", quizID.String()).
		Logger()
	wsLog.Info().Msg("Attempt started")

	_ = session.write(ws.StartedResponse{
		Event:            ws.EventStarted,
		QuestionCount:    len(questions),
		RemainingSeconds: int(eng.Remaining().Seconds()),
	})

	done := make(chan struct{})
	var closeOnce sync.Once
	finish := func() {
		closeOnce.Do(func() { close(done) })
	}
	defer finish()

	// Countdown ticker: recomputes remaining time from wall clock once per
	// second and fires the expiry submission the moment it crosses zero.
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				remaining, expired := eng.Tick()
				if expired {
					wsLog.Info().Msg("Time expired, auto-submitting")
					if h.submit(context.Background(), session, wsLog, eng) {
						finish()
						conn.Close()
					}
					continue
				}
				if eng.State() != engine.StateInProgress {
					continue
				}
				_ = session.write(ws.TickResponse{
					Event:            ws.EventTick,
					RemainingSeconds: int(remaining.Seconds()),
				})
			}
		}
	}()

	for {
		raw, err := ws.ReadRaw(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			session.writeError("malformed payload")
			continue
		}

		switch envelope.Action {
		case ws.ActionSelect:
			h.handleSelect(session, eng, raw)
		case ws.ActionSeek:
			h.handleSeek(session, eng, raw)
		case ws.ActionSubmit:
			if h.submit(ctx, session, wsLog, eng) {
				return
			}
		case ws.ActionPing:
			_ = session.write(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			session.writeError("unknown action: " + string(envelope.Action))
		}
	}
}

func (h *AttemptStreamHandler) handleSelect(session *attemptSession, eng *engine.Attempt, raw []byte) {
	var req ws.SelectRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		session.writeError("malformed select payload")
		return
	}

	if err := eng.Select(req.Option); err != nil {
		session.writeError(selectErrMessage(err))
		return
	}
	h.ackState(session, eng)
}

func (h *AttemptStreamHandler) handleSeek(session *attemptSession, eng *engine.Attempt, raw []byte) {
	var req ws.SeekRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		session.writeError("malformed seek payload")
		return
	}

	if err := eng.Seek(req.Index); err != nil {
		session.writeError(selectErrMessage(err))
		return
	}
	h.ackState(session, eng)
}

func (h *AttemptStreamHandler) ackState(session *attemptSession, eng *engine.Attempt) {
	_ = session.write(ws.StateResponse{
		Event:   ws.EventState,
		Cursor:  eng.Cursor(),
		Answers: eng.Answers(),
	})
}

// submit drives the engine's submission routine and reports the outcome.
// Returns true when the attempt is persisted and the stream should end; a
// persistence failure leaves the engine retryable and keeps the stream open.
func (h *AttemptStreamHandler) submit(ctx context.Context, session *attemptSession, wsLog zerolog.Logger, eng *engine.Attempt) bool {
	attempt, err := eng.Submit(ctx)
	if err != nil {
		wsLog.Error().Err(err).Msg("Submission persist failed")
		session.writeError("submission not saved, please retry")
		return false
	}

	wsLog.Info().
		Float64("score", attempt.Score).
		Float64("total_points", attempt.TotalPoints).
		Msg("Attempt submitted")

	_ = session.write(ws.SubmittedResponse{
		Event:       ws.EventSubmitted,
		AttemptID:   attempt.ID.String(),
		Score:       attempt.Score,
		TotalPoints: attempt.TotalPoints,
		Percentage:  attempt.Percentage(),
	})
	return true
}

func selectErrMessage(err error) string {
	switch {
	case errors.Is(err, engine.ErrAttemptClosed):
		return "attempt is already finished"
	case errors.Is(err, engine.ErrCursorOutOfRange):
		return "cursor out of range"
	case errors.Is(err, engine.ErrOptionOutOfRange):
		return "option out of range"
	default:
		return "invalid request"
	}
}
