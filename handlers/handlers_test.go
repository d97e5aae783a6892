package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quizapp/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidation()
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		error  string
	}{
		{services.NewValidationError("email", `"email" must be a valid email`), http.StatusBadRequest, "Validation error"},
		{services.ErrAlreadyExists, http.StatusBadRequest, "User already exists"},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{services.ErrMissingToken, http.StatusUnauthorized, "Access token required"},
		{services.ErrInvalidToken, http.StatusForbidden, "Invalid token"},
		{services.ErrQuestionNotFound, http.StatusNotFound, "Question not found"},
		{fmt.Errorf("wrapped: %w", services.ErrQuestionNotFound), http.StatusNotFound, "Question not found"},
		{services.ErrResultNotFound, http.StatusNotFound, "No results found"},
		{services.ErrNoQuestionsAvailable, http.StatusNotFound, "No questions available"},
		{services.ErrRateLimited, http.StatusTooManyRequests, "Too many requests"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.error, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err, "Failed to do the thing")

			assert.Equal(t, tt.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.error, body["error"])
			assert.NotEmpty(t, body["message"])
			assert.NotContains(t, body["message"], "pq:")
		})
	}
}

func TestQuestionIDParam(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3", "1.5", "99999999999"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		_, ok := questionIDParam(c)
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	id, ok := questionIDParam(c)
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)
}

type stubQuiz struct {
	QuizTaker
	got services.Submission
}

func (s *stubQuiz) Submit(_ context.Context, _ uint, sub services.Submission) (*services.ResultSummary, error) {
	s.got = sub
	return &services.ResultSummary{ID: 5, Score: 100, TotalQuestions: 1, CorrectAnswers: 1, TimeTaken: sub.TimeTaken}, nil
}

func TestSubmitQuizBindsCamelCaseBody(t *testing.T) {
	stub := &stubQuiz{}
	h := NewQuizHandler(stub)

	r := gin.New()
	r.POST("/submit", func(c *gin.Context) { c.Set("user_id", uint(3)) }, h.SubmitQuiz)

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{"answers":[{"questionId":1,"answer":"A"}],"timeTaken":20}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []services.Answer{{QuestionID: 1, Answer: "A"}}, stub.got.Answers)
	assert.JSONEq(t, `{
		"message": "Quiz submitted successfully",
		"result": {"id": 5, "score": 100, "totalQuestions": 1, "correctAnswers": 1, "timeTaken": 20}
	}`, w.Body.String())
}

func TestFeedHandler(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Hour)
	hub := services.NewResultHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	allow := func(origin string) bool { return origin == "" || origin == "http://localhost:5173" }
	h := NewFeedHandler(tokens, hub, allow)

	r := gin.New()
	r.GET("/feed", h.Connect)
	srv := httptest.NewServer(r)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?token=bogus", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	token, err := tokens.Issue(11, "feed@example.com")
	require.NoError(t, err)

	header := http.Header{"Origin": {"http://evil.example"}}
	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?token="+token, header)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Authorization": {"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount(11) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.PublishResult(11, services.ResultSummary{ID: 1, Score: 75})
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"result_submitted"`)
	assert.Contains(t, string(data), `"score":75`)
}
