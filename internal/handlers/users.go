package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sportrent/internal/media/sniffer"
	"sportrent/internal/middleware"
	"sportrent/internal/models"
	"sportrent/internal/repository"
	"sportrent/internal/security"
	"sportrent/internal/service"
	"sportrent/internal/validation"
)

func (h HandlerSet) Me(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	user, err := h.stores.Users.GetByID(c.Request.Context(), callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.log.Error().Err(err).Msg("load user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

type profileRequest struct {
	FullName    string `json:"fullName"`
	UserName    string `json:"userName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	errs := validation.ValidateProfile(validation.ProfileInput{
		FullName:    req.FullName,
		UserName:    req.UserName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if validationFailed(c, errs) {
		return
	}

	user, err := h.stores.Users.UpdateProfile(c.Request.Context(), callerID, repository.ProfileUpdate{
		FullName:    req.FullName,
		UserName:    req.UserName,
		Email:       strings.TrimSpace(strings.ToLower(req.Email)),
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.log.Error().Err(err).Msg("update profile failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

type passwordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All password fields are required"})
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"message": "New passwords do not match"})
		return
	}

	user, err := h.stores.Users.GetByID(c.Request.Context(), callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.log.Error().Err(err).Msg("load user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if !security.VerifyPassword(req.OldPassword, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Old password is incorrect"})
		return
	}

	hash, err := security.HashPassword(req.NewPassword, h.cfg.Security.BcryptCost)
	if err != nil {
		h.log.Error().Err(err).Msg("hash password failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if err := h.stores.Users.UpdatePassword(c.Request.Context(), callerID, hash); err != nil {
		h.log.Error().Err(err).Msg("update password failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (h HandlerSet) ChangeAvatar(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Avatar file is required"})
		return
	}

	filename, err := h.uploadService.Save(c.Request.Context(), header)
	if err != nil {
		if errors.Is(err, sniffer.ErrUnsupportedType) || errors.Is(err, service.ErrFileTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("store avatar failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	user, err := h.stores.Users.GetByID(c.Request.Context(), callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.log.Error().Err(err).Msg("load user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	// Drop the previous avatar from disk unless it is the stock default or an
	// external URL.
	if old := user.ProfilePicture; old != models.DefaultProfilePicture && strings.Contains(old, "/uploads/") {
		if err := h.uploadService.Remove(old); err != nil {
			h.log.Warn().Err(err).Str("file", old).Msg("remove old avatar failed")
		}
	}

	url := h.absoluteImageURL(filename)
	if err := h.stores.Users.UpdateAvatar(c.Request.Context(), callerID, url); err != nil {
		h.log.Error().Err(err).Msg("update avatar failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profilePicture": url})
}

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	users, err := h.stores.Users.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, toUserResponse(user))
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) DeleteAccount(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}
	h.deleteUserCascade(c, callerID)
}

func (h HandlerSet) AdminDeleteUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}
	h.deleteUserCascade(c, id)
}

// deleteUserCascade removes the user's reservations first, then the account.
// The two steps are independent; a crash in between leaves orphaned state the
// read paths already tolerate.
func (h HandlerSet) deleteUserCascade(c *gin.Context, id primitive.ObjectID) {
	removed, err := h.stores.Reservations.DeleteByUser(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Msg("delete user reservations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if err := h.stores.Users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.log.Error().Err(err).Msg("delete user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	h.log.Info().Str("user_id", id.Hex()).Int64("reservations_removed", removed).Msg("account deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
