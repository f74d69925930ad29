package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jacobclarklds/openlings-chess-app/app/models"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T, session ModelSession) (*gin.Engine, *LessonService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := newTestService(session)
	return NewRouter(svc), svc
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &funcSession{})
	w := doJSON(router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health returned %d", w.Code)
	}
}

func TestCreateLessonEndpoint(t *testing.T) {
	final := lessonJSON(t, validLesson())
	router, svc := newTestRouter(t, &funcSession{send: func(_ context.Context, _ string, _ []models.ToolResult) (ModelReply, error) {
		return ModelReply{Text: final}, nil
	}})

	body := fmt.Sprintf(`{"pgn": %q, "user_elo": 1400}`, testPGN)
	w := doJSON(router, http.MethodPost, "/lessons", body)
	if w.Code != http.StatusAccepted {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" || resp.Status != string(models.JobGenerating) {
		t.Fatalf("unexpected response: %+v", resp)
	}

	job := waitForTerminal(t, svc, resp.JobID)
	if job.Status != models.JobCompleted {
		t.Fatalf("job ended %s: %s", job.Status, job.ErrorMessage)
	}

	w = doJSON(router, http.MethodGet, "/lessons/"+resp.JobID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status returned %d", w.Code)
	}
	var polled models.LessonJob
	if err := json.Unmarshal(w.Body.Bytes(), &polled); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if polled.Status != models.JobCompleted || polled.Lesson == nil {
		t.Fatalf("polled job wrong: %+v", polled)
	}
}

func TestCreateLessonEndpointRejects(t *testing.T) {
	router, _ := newTestRouter(t, &funcSession{})

	// Missing required pgn field.
	w := doJSON(router, http.MethodPost, "/lessons", `{"user_elo": 1400}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing pgn returned %d", w.Code)
	}

	// PGN that does not parse.
	w = doJSON(router, http.MethodPost, "/lessons", `{"pgn": "not a game"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad pgn returned %d: %s", w.Code, w.Body.String())
	}
}

func TestGetLessonStatusNotFound(t *testing.T) {
	router, _ := newTestRouter(t, &funcSession{})
	w := doJSON(router, http.MethodGet, "/lessons/does-not-exist", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown job returned %d", w.Code)
	}
}

func TestDeleteLessonEndpoint(t *testing.T) {
	final := lessonJSON(t, validLesson())
	router, svc := newTestRouter(t, &funcSession{send: func(_ context.Context, _ string, _ []models.ToolResult) (ModelReply, error) {
		return ModelReply{Text: final}, nil
	}})

	id, err := svc.CreateLesson(models.LessonRequest{PGN: testPGN})
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}
	waitForTerminal(t, svc, id)

	w := doJSON(router, http.MethodDelete, "/lessons/"+id, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", w.Code)
	}

	w = doJSON(router, http.MethodDelete, "/lessons/"+id, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete returned %d", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/lessons/"+id, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status after delete returned %d", w.Code)
	}
}
