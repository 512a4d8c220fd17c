package handlers

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sportrent/internal/models"
	"sportrent/internal/repository"
	"sportrent/internal/validation"
)

type reviewRequest struct {
	FullName string `json:"fullName"`
	Rating   *int   `json:"rating"`
	Comment  string `json:"comment"`
}

func (h HandlerSet) CreateReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var errs []validation.FieldError
	if strings.TrimSpace(req.FullName) == "" {
		errs = append(errs, validation.FieldError{Field: "fullName", Message: "Full name is required"})
	}
	if req.Rating == nil {
		errs = append(errs, validation.FieldError{Field: "rating", Message: "Rating is required"})
	} else if *req.Rating < 1 || *req.Rating > 5 {
		errs = append(errs, validation.FieldError{Field: "rating", Message: "Rating must be between 1 and 5"})
	}
	if validationFailed(c, errs) {
		return
	}

	if _, err := h.stores.Reviews.Create(c.Request.Context(), models.Review{
		FullName: req.FullName,
		Rating:   *req.Rating,
		Comment:  req.Comment,
	}); err != nil {
		h.log.Error().Err(err).Msg("create review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review added"})
}

func (h HandlerSet) ListReviews(c *gin.Context) {
	reviews, err := h.stores.Reviews.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list reviews failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":       reviews,
		"averageRating": averageRating(reviews),
	})
}

// averageRating is the arithmetic mean rounded to one decimal; the divisor
// defaults to 1 so an empty list yields 0 instead of dividing by zero.
func averageRating(reviews []models.Review) float64 {
	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	divisor := len(reviews)
	if divisor == 0 {
		divisor = 1
	}
	return math.Round(float64(sum)/float64(divisor)*10) / 10
}

func (h HandlerSet) AdminListReviews(c *gin.Context) {
	reviews, err := h.stores.Reviews.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list reviews failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (h HandlerSet) DeleteReview(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
		return
	}

	if err := h.stores.Reviews.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Review not found"})
			return
		}
		h.log.Error().Err(err).Msg("delete review failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
