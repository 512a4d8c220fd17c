package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sportrent/internal/models"
	"sportrent/internal/repository"
	"sportrent/internal/validation"
)

type messageRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
}

func (h HandlerSet) CreateMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var errs []validation.FieldError
	if strings.TrimSpace(req.FullName) == "" {
		errs = append(errs, validation.FieldError{Field: "fullName", Message: "Full name is required"})
	}
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, validation.FieldError{Field: "email", Message: "Email is required"})
	} else if !validation.ValidEmail(req.Email) {
		errs = append(errs, validation.FieldError{Field: "email", Message: "Email is invalid"})
	}
	if strings.TrimSpace(req.Subject) == "" {
		errs = append(errs, validation.FieldError{Field: "subject", Message: "Subject is required"})
	}
	if strings.TrimSpace(req.Content) == "" {
		errs = append(errs, validation.FieldError{Field: "content", Message: "Message content is required"})
	}
	if validationFailed(c, errs) {
		return
	}

	if _, err := h.stores.Messages.Create(c.Request.Context(), models.Message{
		FullName: req.FullName,
		Email:    req.Email,
		Subject:  req.Subject,
		Content:  req.Content,
	}); err != nil {
		h.log.Error().Err(err).Msg("create message failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Message sent"})
}

func (h HandlerSet) ListMessages(c *gin.Context) {
	messages, err := h.stores.Messages.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list messages failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h HandlerSet) DeleteMessage(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
		return
	}

	if err := h.stores.Messages.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
			return
		}
		h.log.Error().Err(err).Msg("delete message failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}
