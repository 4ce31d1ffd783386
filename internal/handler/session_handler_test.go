package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/southeastwestnorth/tanzimapp/internal/bank"
	"github.com/southeastwestnorth/tanzimapp/internal/config"
	"github.com/southeastwestnorth/tanzimapp/internal/handler"
	"github.com/southeastwestnorth/tanzimapp/internal/response"
	"github.com/southeastwestnorth/tanzimapp/internal/router"
	"github.com/southeastwestnorth/tanzimapp/internal/service"
	"github.com/southeastwestnorth/tanzimapp/internal/store"
	"github.com/southeastwestnorth/tanzimapp/internal/validator"
)

const quizCSV = `Question,Option A,Option B,Option C,Correct Answer
What is H2O?,Water,Salt,Sugar,Water
Largest planet?,Mars,Jupiter,Venus,Jupiter
`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	cfg := &config.Config{
		GinMode:         gin.TestMode,
		DefaultBank:     "sample",
		SecondsPerQuest: 60,
		MaxUploadBytes:  1 << 20,
		GradeScale:      []config.GradeBand{{MinPercent: 50, Letter: "Pass"}},
		FallbackGrade:   "F",
	}

	banks := store.NewBankStore(zerolog.Nop())
	if _, err := banks.Put("sample", bank.FormatCSV, []byte(quizCSV)); err != nil {
		t.Fatal(err)
	}

	svc := service.NewQuizService(cfg, banks, store.NewSessionStore(), zerolog.Nop())
	return router.SetupRouter(&router.Handlers{
		Bank:    handler.NewBankHandler(svc, cfg.MaxUploadBytes),
		Session: handler.NewSessionHandler(svc),
		WS:      handler.NewWSHandler(svc, zerolog.Nop(), nil),
	}, cfg)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, w.Body.String())
	}
	return resp
}

func createSession(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions", `{}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: status %d, body %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	session := resp.Data.(map[string]interface{})["session"].(map[string]interface{})
	return session["id"].(string)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	id := createSession(t, r)

	// Answer question 0 correctly.
	w := doJSON(t, r, http.MethodPut, "/api/v1/sessions/"+id+"/answers/0", `{"selected":"Water"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("record answer: status %d, body %s", w.Code, w.Body.String())
	}

	// The snapshot reflects the recorded answer.
	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get session: status %d", w.Code)
	}
	session := decode(t, w).Data.(map[string]interface{})["session"].(map[string]interface{})
	if got := session["answered_count"].(float64); got != 1 {
		t.Errorf("answered_count = %v, want 1", got)
	}
	if got := session["status"].(string); got != "IN_PROGRESS" {
		t.Errorf("status = %s, want IN_PROGRESS", got)
	}

	// Submit and check the graded result.
	w = doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/submit", "")
	if w.Code != http.StatusOK {
		t.Fatalf("submit: status %d, body %s", w.Code, w.Body.String())
	}
	result := decode(t, w).Data.(map[string]interface{})["result"].(map[string]interface{})
	if got := result["score"].(float64); got != 1 {
		t.Errorf("score = %v, want 1", got)
	}
	if got := result["ended_by"].(string); got != "submitted" {
		t.Errorf("ended_by = %s, want submitted", got)
	}
	if got := result["letter_grade"].(string); got != "Pass" {
		t.Errorf("letter_grade = %s, want Pass", got)
	}

	// A second submit conflicts instead of re-grading.
	w = doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/submit", "")
	if w.Code != http.StatusConflict {
		t.Errorf("second submit: status %d, want 409", w.Code)
	}
	if code := decode(t, w).Error.Code; code != response.ErrSessionFinished {
		t.Errorf("error code = %s, want %s", code, response.ErrSessionFinished)
	}

	// The PDF report is available once finished.
	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id+"/result/report.pdf", "")
	if w.Code != http.StatusOK {
		t.Fatalf("report: status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %s, want application/pdf", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("report body is not a PDF document")
	}
}

func TestGetSession_Errors(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/sessions/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed id: status %d, want 400", w.Code)
	}
	if code := decode(t, w).Error.Code; code != response.ErrInvalidID {
		t.Errorf("error code = %s, want %s", code, response.ErrInvalidID)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/6f1d4f3e-5c3a-4f61-9f6f-62a4a1f7b9aa", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status %d, want 404", w.Code)
	}
}

func TestCreateSession_Validation(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions", `{"duration_seconds":3}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	resp := decode(t, w)
	if resp.Error.Code != response.ErrValidation {
		t.Errorf("error code = %s, want %s", resp.Error.Code, response.ErrValidation)
	}
	if _, ok := resp.Error.Fields["duration_seconds"]; !ok {
		t.Errorf("missing field detail, got %v", resp.Error.Fields)
	}
}

func TestCreateSession_UnknownBank(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions", `{"bank":"missing"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
	if code := decode(t, w).Error.Code; code != response.ErrBankNotFound {
		t.Errorf("error code = %s, want %s", code, response.ErrBankNotFound)
	}
}

func TestExpire_Conflict(t *testing.T) {
	r := newTestRouter(t)
	id := createSession(t, r)

	// The countdown has barely started; expiry is not observable yet.
	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/expire", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", w.Code)
	}
	if code := decode(t, w).Error.Code; code != response.ErrDeadlineNotPassed {
		t.Errorf("error code = %s, want %s", code, response.ErrDeadlineNotPassed)
	}
}

func TestRestartOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	id := createSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/restart", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("restart: status %d, body %s", w.Code, w.Body.String())
	}
	fresh := decode(t, w).Data.(map[string]interface{})["session"].(map[string]interface{})
	if fresh["id"].(string) == id {
		t.Error("restart reused the old session ID")
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+id, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("old session: status %d, want 404", w.Code)
	}
}

func TestListBanks(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/banks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	banks := decode(t, w).Data.(map[string]interface{})["banks"].([]interface{})
	if len(banks) != 1 {
		t.Fatalf("banks = %d, want 1", len(banks))
	}
	info := banks[0].(map[string]interface{})
	if info["name"].(string) != "sample" {
		t.Errorf("bank name = %v, want sample", info["name"])
	}
	if info["questions"].(float64) != 2 {
		t.Errorf("questions = %v, want 2", info["questions"])
	}
}

func TestUploadBank(t *testing.T) {
	r := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "physics.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(quizCSV)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/banks", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("upload: status %d, body %s", w.Code, w.Body.String())
	}

	// The uploaded bank is immediately usable for sessions.
	w2 := doJSON(t, r, http.MethodPost, "/api/v1/sessions", `{"bank":"physics"}`)
	if w2.Code != http.StatusCreated {
		t.Errorf("session on uploaded bank: status %d, body %s", w2.Code, w2.Body.String())
	}
}

func TestUploadBank_MissingColumn(t *testing.T) {
	r := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "bad.csv")
	part.Write([]byte("A,B,C\n1,2,3\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/banks", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	if code := decode(t, w).Error.Code; code != response.ErrMissingColumn {
		t.Errorf("error code = %s, want %s", code, response.ErrMissingColumn)
	}
}
