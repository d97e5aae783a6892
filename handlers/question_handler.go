package handlers

import (
	"context"
	"net/http"
	"strconv"

	"quizapp/models"
	"quizapp/services"

	"github.com/gin-gonic/gin"
)

type QuestionManager interface {
	List(ctx context.Context) ([]models.Question, error)
	Create(ctx context.Context, userID uint, in services.QuestionInput) (*models.Question, error)
	Update(ctx context.Context, id uint, patch services.QuestionPatch) (*models.Question, error)
	Delete(ctx context.Context, id uint) error
}

type QuestionHandler struct {
	questionService QuestionManager
}

func NewQuestionHandler(questionService QuestionManager) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

func (h *QuestionHandler) GetAll(c *gin.Context) {
	questions, err := h.questionService.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve questions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Questions retrieved successfully",
		"questions": questions,
	})
}

func (h *QuestionHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, services.ErrMissingToken, "")
		return
	}

	var req services.QuestionInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err, "Failed to create question")
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to create question")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Question created successfully",
		"question": question,
	})
}

func (h *QuestionHandler) Update(c *gin.Context) {
	questionID, ok := questionIDParam(c)
	if !ok {
		return
	}

	var req services.QuestionPatch
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err, "Failed to update question")
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), questionID, req)
	if err != nil {
		respondError(c, err, "Failed to update question")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Question updated successfully",
		"question": question,
	})
}

func (h *QuestionHandler) Delete(c *gin.Context) {
	questionID, ok := questionIDParam(c)
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), questionID); err != nil {
		respondError(c, err, "Failed to delete question")
		return
	}

	c.Status(http.StatusNoContent)
}

func questionIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		abort(c, http.StatusBadRequest, "Invalid question ID", "Question ID must be a valid number")
		return 0, false
	}
	return uint(id), true
}
