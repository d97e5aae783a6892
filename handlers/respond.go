package handlers

import (
	"errors"
	"log"
	"net/http"

	"quizapp/services"

	"github.com/gin-gonic/gin"
)

// respondError writes err as a JSON {error, message} body. fallback is the
// message shown when err is unexpected; the real error is only logged.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		abort(c, http.StatusBadRequest, "Validation error", verr.Message)
	case errors.Is(err, services.ErrValidation):
		abort(c, http.StatusBadRequest, "Validation error", err.Error())
	case errors.Is(err, services.ErrAlreadyExists):
		abort(c, http.StatusBadRequest, "User already exists", "A user with this email already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		abort(c, http.StatusUnauthorized, "Invalid credentials", "Email or password is incorrect")
	case errors.Is(err, services.ErrMissingToken):
		abort(c, http.StatusUnauthorized, "Access token required", "No authorization token provided")
	case errors.Is(err, services.ErrInvalidToken):
		abort(c, http.StatusForbidden, "Invalid token", "The provided token is invalid or expired")
	case errors.Is(err, services.ErrQuestionNotFound):
		abort(c, http.StatusNotFound, "Question not found", "The specified question does not exist")
	case errors.Is(err, services.ErrUserNotFound):
		abort(c, http.StatusNotFound, "User not found", "The user for this token no longer exists")
	case errors.Is(err, services.ErrResultNotFound):
		abort(c, http.StatusNotFound, "No results found", "You have not completed any quizzes yet")
	case errors.Is(err, services.ErrNoQuestionsAvailable):
		abort(c, http.StatusNotFound, "No questions available", "There are no questions available for the quiz")
	case errors.Is(err, services.ErrNotFound):
		abort(c, http.StatusNotFound, "Not found", "The requested resource does not exist")
	case errors.Is(err, services.ErrRateLimited):
		abort(c, http.StatusTooManyRequests, "Too many requests", "Too many requests from this IP, please try again later.")
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		abort(c, http.StatusInternalServerError, "Internal server error", fallback)
	}
}

func abort(c *gin.Context, status int, errorText, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   errorText,
		"message": message,
	})
}

// currentUserID reads the identity set by the auth middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok && id != 0
}
