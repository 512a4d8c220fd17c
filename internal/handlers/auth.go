package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sportrent/internal/models"
	"sportrent/internal/service"
	"sportrent/internal/validation"
)

type signupRequest struct {
	FullName    string `json:"fullName"`
	UserName    string `json:"userName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	AdminKey    string `json:"adminKey"`
}

type userResponse struct {
	ID             string `json:"id"`
	UserName       string `json:"userName"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profilePicture"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:             user.ID.Hex(),
		UserName:       user.UserName,
		FullName:       user.FullName,
		Email:          user.Email,
		PhoneNumber:    user.PhoneNumber,
		Role:           string(user.Role),
		ProfilePicture: user.ProfilePicture,
	}
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	errs := validation.ValidateSignup(validation.SignupInput{
		FullName:    req.FullName,
		UserName:    req.UserName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Role:        req.Role,
	})
	if validationFailed(c, errs) {
		return
	}

	// The admin-creation key may arrive as a header or in the body.
	adminKey := c.GetHeader("X-Admin-Key")
	if adminKey == "" {
		adminKey = req.AdminKey
	}

	_, err := h.authService.Signup(c.Request.Context(), service.SignupInput{
		FullName:    req.FullName,
		UserName:    req.UserName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Role:        req.Role,
		AdminKey:    adminKey,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrUserNameTaken):
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		case errors.Is(err, service.ErrAdminKeyInvalid):
			c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		default:
			h.log.Error().Err(err).Msg("signup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var errs []validation.FieldError
	if req.Email == "" {
		errs = append(errs, validation.FieldError{Field: "email", Message: "Email is required"})
	} else if !validation.ValidEmail(req.Email) {
		errs = append(errs, validation.FieldError{Field: "email", Message: "Please provide a valid email address"})
	}
	if req.Password == "" {
		errs = append(errs, validation.FieldError{Field: "password", Message: "Password is required"})
	}
	if validationFailed(c, errs) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   result.Token,
		"user":    toUserResponse(result.User),
		"message": "Logged in successfully",
	})
}
