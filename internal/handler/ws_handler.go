package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/southeastwestnorth/tanzimapp/internal/exam"
	"github.com/southeastwestnorth/tanzimapp/internal/service"
	ws "github.com/southeastwestnorth/tanzimapp/internal/websocket"
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

// WSHandler streams the countdown and accepts live answer traffic for one
// session over a WebSocket.
type WSHandler struct {
	quizService *service.QuizService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(quizService *service.QuizService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		quizService: quizService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// TimerStream godoc
// WS /ws/v1/sessions/:id/timer
// Pushes a tick event once per second with the remaining budget; pushes
// expired + graded events and closes when the budget hits zero. Accepts
// answer, submit, and ping actions from the client. All writes happen on
// this goroutine — gorilla connections allow only one writer.
func (h *WSHandler) TimerStream(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	now := time.Now()
	if _, _, err := h.quizService.Clock(id, now); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", id.String()).Logger()
	wsLog.Info().Msg("Timer stream connected")

	// Reader goroutine funnels client messages into the select loop. It
	// exits when the deferred Close above fails its blocking read, or when
	// done is closed while it sits on a channel send — Close only unblocks
	// reads, not a message already waiting for the writer loop.
	msgs := make(chan ws.Request)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			var msg ws.Request
			if err := ws.ReadJSON(conn, &msg); err != nil {
				readErr <- err
				close(msgs)
				return
			}
			select {
			case msgs <- msg:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			remaining, status, err := h.quizService.Clock(id, now)
			if err != nil {
				_ = ws.WriteError(conn, "session discarded")
				return
			}
			if status == exam.StatusExpired {
				h.finish(conn, wsLog, id, now, true)
				return
			}
			if status.Terminal() {
				// Submitted through the HTTP surface; nothing left to tick.
				h.finish(conn, wsLog, id, now, false)
				return
			}
			if err := ws.WriteTyped(conn, ws.TickEvent{Event: ws.EventTick, RemainingSeconds: remaining.Seconds()}); err != nil {
				wsLog.Debug().Msg("Tick write failed, closing")
				return
			}

		case msg, open := <-msgs:
			if !open {
				err := <-readErr
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if done := h.handleMessage(conn, wsLog, id, msg); done {
				return
			}
		}
	}
}

// handleMessage dispatches one client action. Returns true when the stream
// should close.
func (h *WSHandler) handleMessage(conn *websocket.Conn, wsLog zerolog.Logger, id uuid.UUID, msg ws.Request) bool {
	now := time.Now()

	switch msg.Action {
	case ws.ActionPing:
		_ = ws.WriteTyped(conn, ws.PongEvent{Event: ws.EventPong})
		return false

	case ws.ActionAnswer:
		remaining, err := h.quizService.RecordAnswer(id, msg.Index, msg.Selected, now)
		if err != nil {
			if errors.Is(err, exam.ErrDeadlinePassed) {
				h.finish(conn, wsLog, id, now, true)
				return true
			}
			_ = ws.WriteError(conn, err.Error())
			return false
		}
		_ = ws.WriteTyped(conn, ws.AnsweredEvent{
			Event:            ws.EventAnswered,
			Index:            msg.Index,
			RemainingSeconds: remaining.Seconds(),
		})
		return false

	case ws.ActionSubmit:
		result, err := h.quizService.Submit(id, now)
		if err != nil {
			_ = ws.WriteError(conn, err.Error())
			return false
		}
		_ = ws.WriteTyped(conn, gradedEvent(result))
		wsLog.Info().Msg("Submitted over timer stream")
		return true

	default:
		wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		_ = ws.WriteError(conn, "unknown action: "+string(msg.Action))
		return false
	}
}

// finish announces expiry (when observed here) and delivers the graded
// summary before the stream closes.
func (h *WSHandler) finish(conn *websocket.Conn, wsLog zerolog.Logger, id uuid.UUID, now time.Time, expired bool) {
	if expired {
		_ = ws.WriteTyped(conn, ws.ExpiredEvent{Event: ws.EventExpired})
		wsLog.Info().Msg("Deadline reached on timer stream")
	}
	result, err := h.quizService.Result(id, now)
	if err != nil {
		_ = ws.WriteError(conn, err.Error())
		return
	}
	_ = ws.WriteTyped(conn, gradedEvent(result))
}

func gradedEvent(result *service.ResultView) ws.GradedEvent {
	return ws.GradedEvent{
		Event:       ws.EventGraded,
		EndedBy:     result.EndedBy,
		Score:       result.Score,
		Total:       result.Total,
		Percentage:  result.Percentage,
		LetterGrade: result.LetterGrade,
	}
}
