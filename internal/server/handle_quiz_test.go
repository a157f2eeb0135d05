package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPresentDefaultsToRoomAffinity(t *testing.T) {
	r, _ := setupGame(t)

	// No body at all: the hall's history affinity picks the question.
	req := httptest.NewRequest(http.MethodPost, "/api/quiz/present", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp PresentResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Question == nil || resp.Question.QuestionID != "q1" {
		t.Fatalf("expected the history question, got %+v", resp.Question)
	}
	if resp.Question.Token == "" {
		t.Error("expected a validation token")
	}
	if resp.Question.TimeLimitMS <= 0 {
		t.Errorf("expected a positive time limit, got %d", resp.Question.TimeLimitMS)
	}
}

func TestPresentNeverLeaksTheKey(t *testing.T) {
	r, _ := setupGame(t)

	body, _ := json.Marshal(PresentRequest{QuestionID: "q1"})
	req := httptest.NewRequest(http.MethodPost, "/api/quiz/present", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	raw := w.Body.String()
	for _, leak := range []string{"correctAnswer", "correctIndex", "nonce"} {
		if strings.Contains(raw, leak) {
			t.Errorf("presentation leaks %s: %s", leak, raw)
		}
	}
}

func TestPresentErrors(t *testing.T) {
	r, sess := setupGame(t)

	post := func(body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/quiz/present", strings.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"questionId":"nope"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown question: expected 404, got %d: %s", w.Code, w.Body.String())
	}
	var errResp errorBody
	json.NewDecoder(w.Body).Decode(&errResp)
	if errResp.Kind != "unknown_question" {
		t.Errorf("expected unknown_question, got %q", errResp.Kind)
	}

	w = post(`{"category":"geography"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown category: expected 404, got %d", w.Code)
	}
	json.NewDecoder(w.Body).Decode(&errResp)
	if errResp.Kind != "unknown_category" {
		t.Errorf("expected unknown_category, got %q", errResp.Kind)
	}

	answerCorrectly(t, r, sess, "q1")
	w = post(`{"questionId":"q1"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("answered question: expected 409, got %d", w.Code)
	}
	json.NewDecoder(w.Body).Decode(&errResp)
	if errResp.Kind != "already_answered" {
		t.Errorf("expected already_answered, got %q", errResp.Kind)
	}

	w = post(`{"questionId":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad body: expected 400, got %d", w.Code)
	}
}

func TestPresentPoolExhausted(t *testing.T) {
	r, sess := setupGame(t)

	answerCorrectly(t, r, sess, "q1")
	answerCorrectly(t, r, sess, "q2")

	req := httptest.NewRequest(http.MethodPost, "/api/quiz/present", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	var errResp errorBody
	json.NewDecoder(w.Body).Decode(&errResp)
	if errResp.Kind != "no_questions_available" {
		t.Errorf("expected no_questions_available, got %q", errResp.Kind)
	}
}

func TestAnswerWithoutActiveQuestion(t *testing.T) {
	r, _ := setupGame(t)

	body, _ := json.Marshal(AnswerRequest{AnswerIndex: 0})
	req := httptest.NewRequest(http.MethodPost, "/api/quiz/answer", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	var errResp errorBody
	json.NewDecoder(w.Body).Decode(&errResp)
	if errResp.Kind != "no_active_question" {
		t.Errorf("expected no_active_question, got %q", errResp.Kind)
	}
}

func TestWrongAnswerConsumesQuestion(t *testing.T) {
	r, sess := setupGame(t)

	body, _ := json.Marshal(PresentRequest{QuestionID: "q1"})
	req := httptest.NewRequest(http.MethodPost, "/api/quiz/present", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var pres PresentResponse
	json.NewDecoder(w.Body).Decode(&pres)

	q, _ := sess.Catalog.Question("q1")
	wrong := 0
	for i, a := range pres.Question.Answers {
		if a != q.Answers[q.CorrectAnswer] {
			wrong = i
			break
		}
	}

	body, _ = json.Marshal(AnswerRequest{AnswerIndex: wrong})
	req = httptest.NewRequest(http.MethodPost, "/api/quiz/answer", bytes.NewReader(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp AnswerResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.Resolved || resp.Resolution == nil {
		t.Fatalf("expected a resolution, got %+v", resp)
	}
	if resp.Resolution.Correct || resp.Resolution.PointsEarned != 0 {
		t.Errorf("expected a scoreless wrong resolution, got %+v", resp.Resolution)
	}
	if resp.Resolution.Nonce == "" {
		t.Error("expected the commitment nonce to be revealed")
	}
	if resp.Progress.Score != 0 {
		t.Errorf("a wrong answer must not score, got %d", resp.Progress.Score)
	}

	// Wrong or not, the question is spent.
	body, _ = json.Marshal(PresentRequest{QuestionID: "q1"})
	req = httptest.NewRequest(http.MethodPost, "/api/quiz/present", bytes.NewReader(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 re-presenting a spent question, got %d", w.Code)
	}
}

func TestSkipFlow(t *testing.T) {
	r, sess := setupGame(t)

	// Nothing active yet.
	req := httptest.NewRequest(http.MethodPost, "/api/quiz/skip", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp SkipResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Skipped {
		t.Fatal("expected skip to be a no-op while idle")
	}

	body, _ := json.Marshal(PresentRequest{QuestionID: "q1"})
	req = httptest.NewRequest(http.MethodPost, "/api/quiz/present", bytes.NewReader(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("present: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/quiz/skip", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.Skipped {
		t.Fatal("expected the skip to land")
	}

	// The skipped question comes back.
	answerCorrectly(t, r, sess, "q1")
}

func TestHint(t *testing.T) {
	r, _ := setupGame(t)

	req := httptest.NewRequest(http.MethodGet, "/api/quiz/hint", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp HintResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Hint == "" {
		t.Fatal("expected a generic hint while idle")
	}

	body, _ := json.Marshal(PresentRequest{QuestionID: "q1"})
	req = httptest.NewRequest(http.MethodPost, "/api/quiz/present", bytes.NewReader(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodGet, "/api/quiz/hint", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Hint != "Think thirds." {
		t.Errorf("expected the question's hint, got %q", resp.Hint)
	}
}
