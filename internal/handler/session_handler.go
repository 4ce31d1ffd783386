package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/southeastwestnorth/tanzimapp/internal/exam"
	"github.com/southeastwestnorth/tanzimapp/internal/model"
	"github.com/southeastwestnorth/tanzimapp/internal/response"
	"github.com/southeastwestnorth/tanzimapp/internal/service"
	"github.com/southeastwestnorth/tanzimapp/internal/validator"
)

// SessionHandler handles quiz session lifecycle endpoints.
type SessionHandler struct {
	quizService *service.QuizService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(quizService *service.QuizService) *SessionHandler {
	return &SessionHandler{quizService: quizService}
}

// CreateSession godoc
// POST /api/v1/sessions
// Starts a new session over the requested (or default) bank. The bank is
// loaded fresh and may be shuffled; the countdown starts immediately.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.quizService.CreateSession(req, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoBank):
			response.Fail(c, http.StatusBadRequest, response.ErrBankRequired)
		case errors.Is(err, service.ErrBankNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrBankNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": view})
}

// GetSession godoc
// GET /api/v1/sessions/:id
// Returns the session snapshot: status, remaining seconds, recorded answers,
// and the answer-stripped questions so a reloading client can rebuild.
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	view, err := h.quizService.State(id, time.Now())
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// RecordAnswer godoc
// PUT /api/v1/sessions/:id/answers/:index
// Records, overwrites, or clears (null selected) a single answer.
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionOutOfRange)
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	remaining, err := h.quizService.RecordAnswer(id, index, req.Selected, time.Now())
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"index":             index,
		"remaining_seconds": remaining.Seconds(),
	})
}

// Submit godoc
// POST /api/v1/sessions/:id/submit
// Finishes the session explicitly and returns the graded result. A submit
// preempts the deadline; a second submit is rejected rather than re-graded.
func (h *SessionHandler) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.quizService.Submit(id, time.Now())
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Expire godoc
// POST /api/v1/sessions/:id/expire
// Invoked by a client that observed the countdown reach zero. Rejected while
// budget remains.
func (h *SessionHandler) Expire(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.quizService.Expire(id, time.Now())
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Restart godoc
// POST /api/v1/sessions/:id/restart
// Discards the session and starts a fresh one over a newly loaded copy of
// the same bank, under a new session ID.
func (h *SessionHandler) Restart(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	view, err := h.quizService.Restart(id, time.Now())
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": view})
}

// Result godoc
// GET /api/v1/sessions/:id/result
// Returns the graded result of a finished session.
func (h *SessionHandler) Result(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	result, err := h.quizService.Result(id, time.Now())
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Report godoc
// GET /api/v1/sessions/:id/result/report.pdf
// Streams the missed-question review as a PDF. A failing generator degrades
// to 503 — the core result flow is unaffected.
func (h *SessionHandler) Report(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	data, err := h.quizService.Report(id, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrNotFinished) {
			failSession(c, err)
			return
		}
		response.Fail(c, http.StatusServiceUnavailable, response.ErrReportUnavailable)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="quiz-review.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// sessionID parses the :id path parameter, failing the request on bad input.
func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failSession maps service and domain errors onto HTTP codes.
func failSession(c *gin.Context, err error) {
	var transition *exam.InvalidTransitionError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrNotFinished):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotDone)
	case errors.Is(err, service.ErrStillRunning):
		response.Fail(c, http.StatusConflict, response.ErrDeadlineNotPassed)
	case errors.Is(err, exam.ErrOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrQuestionOutOfRange)
	case errors.Is(err, exam.ErrDeadlinePassed):
		response.Fail(c, http.StatusConflict, response.ErrDeadlinePassed)
	case errors.As(err, &transition):
		response.Fail(c, http.StatusConflict, response.ErrSessionFinished)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
