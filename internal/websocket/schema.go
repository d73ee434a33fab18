package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSelect Action = "select"
	ActionSeek   Action = "seek"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// SelectRequest records an option choice for the question at the cursor.
type SelectRequest struct {
	Action Action `json:"action"`
	Option int    `json:"option"`
}

// SeekRequest moves the cursor to an absolute question index.
type SeekRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventStarted   Event = "started"
	EventTick      Event = "tick"
	EventState     Event = "state"
	EventSubmitted Event = "submitted"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// StartedResponse opens the attempt: the countdown length and question count.
type StartedResponse struct {
	Event            Event `json:"event"`
	QuestionCount    int   `json:"question_count"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

// TickResponse carries the recomputed countdown, once per second.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

// StateResponse acknowledges a select or seek with the resulting state.
type StateResponse struct {
	Event   Event `json:"event"`
	Cursor  int   `json:"cursor"`
	Answers []int `json:"answers"`
}

// SubmittedResponse closes the attempt with the persisted result.
type SubmittedResponse struct {
	Event       Event   `json:"event"`
	AttemptID   string  `json:"attempt_id"`
	Score       float64 `json:"score"`
	TotalPoints float64 `json:"total_points"`
	Percentage  int     `json:"percentage"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
