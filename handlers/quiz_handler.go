package handlers

import (
	"context"
	"net/http"

	"quizapp/models"
	"quizapp/services"

	"github.com/gin-gonic/gin"
)

type QuizTaker interface {
	StartQuiz(ctx context.Context) ([]models.QuestionPublicView, error)
	Submit(ctx context.Context, userID uint, sub services.Submission) (*services.ResultSummary, error)
	Results(ctx context.Context, userID uint) ([]models.QuizResult, error)
	BestResult(ctx context.Context, userID uint) (*models.QuizResult, error)
}

type QuizHandler struct {
	quizService QuizTaker
}

func NewQuizHandler(quizService QuizTaker) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
	}
}

func (h *QuizHandler) StartQuiz(c *gin.Context) {
	questions, err := h.quizService.StartQuiz(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to start quiz")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Quiz started successfully",
		"questions": questions,
	})
}

func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, services.ErrMissingToken, "")
		return
	}

	var req services.Submission
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err, "Failed to submit quiz")
		return
	}

	result, err := h.quizService.Submit(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to submit quiz")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Quiz submitted successfully",
		"result":  result,
	})
}

func (h *QuizHandler) GetResults(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, services.ErrMissingToken, "")
		return
	}

	results, err := h.quizService.Results(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve results")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Results retrieved successfully",
		"results": results,
	})
}

func (h *QuizHandler) GetBestResult(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, services.ErrMissingToken, "")
		return
	}

	result, err := h.quizService.BestResult(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve best result")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Best result retrieved successfully",
		"result":  result,
	})
}
