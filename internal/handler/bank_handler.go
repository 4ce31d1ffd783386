package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/southeastwestnorth/tanzimapp/internal/bank"
	"github.com/southeastwestnorth/tanzimapp/internal/response"
	"github.com/southeastwestnorth/tanzimapp/internal/service"
)

// BankHandler handles question bank registry endpoints.
type BankHandler struct {
	quizService    *service.QuizService
	maxUploadBytes int64
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(quizService *service.QuizService, maxUploadBytes int64) *BankHandler {
	return &BankHandler{
		quizService:    quizService,
		maxUploadBytes: maxUploadBytes,
	}
}

// ListBanks godoc
// GET /api/v1/banks
// Returns all registered question banks with their row statistics.
func (h *BankHandler) ListBanks(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"banks": h.quizService.Banks()})
}

// UploadBank godoc
// POST /api/v1/banks
// Registers an uploaded .csv or .xlsx question bank. The file is trial-parsed
// so unusable sources are rejected here, with the failing column or row
// situation explained, rather than at session creation.
func (h *BankHandler) UploadBank(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	if fileHeader.Size > h.maxUploadBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	format, err := bank.FormatForPath(fileHeader.Filename)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		base := filepath.Base(fileHeader.Filename)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer f.Close()

	source, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if int64(len(source)) > h.maxUploadBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	stored, err := h.quizService.RegisterBank(name, format, source)
	if err != nil {
		var missing *bank.MissingColumnError
		switch {
		case errors.As(err, &missing):
			response.FailWithDetail(c, http.StatusBadRequest, response.ErrMissingColumn, missing.Error())
		case errors.Is(err, bank.ErrEmptySource):
			response.Fail(c, http.StatusBadRequest, response.ErrEmptySource)
		default:
			response.FailWithDetail(c, http.StatusBadRequest, response.ErrInvalidPayload, err.Error())
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"bank": gin.H{
			"name":         stored.Name,
			"format":       string(stored.Format),
			"questions":    stored.Questions,
			"dropped_rows": stored.Dropped,
		},
	})
}
