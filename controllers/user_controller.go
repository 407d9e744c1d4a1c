package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/middleware"
	"github.com/kendall-kelly/campus-requests-api/services"
	"go.uber.org/zap"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name  string `json:"name" binding:"omitempty,max=255"`
	Email string `json:"email" binding:"omitempty,email"`
}

// CreateUser handles POST /api/v1/users - creates the caller's profile from Auth0 userinfo.
// The role comes from the token's role claim and defaults to student.
func (ctl *Controller) CreateUser(c *gin.Context) {
	auth0ID, ok := currentSubject(c)
	if !ok {
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondCode(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	userInfo, err := ctl.UserInfo.GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		ctl.logger().Warn("userinfo lookup failed", zap.String("auth0_id", auth0ID), zap.Error(err))
		var infoErr *services.UserInfoError
		if errors.As(err, &infoErr) && infoErr.Rejected() {
			respondCode(c, http.StatusUnauthorized, "INVALID_TOKEN", "Auth0 rejected the access token")
			return
		}
		respondCode(c, http.StatusInternalServerError, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	switch {
	case userInfo.Email == "":
		respondCode(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	case userInfo.Name == "":
		respondCode(c, http.StatusBadRequest, "MISSING_NAME", "Name not provided by Auth0")
		return
	}

	user, err := ctl.Users.CreateProfile(c.Request.Context(), auth0ID, services.ProfileInput{
		Name:  userInfo.Name,
		Email: userInfo.Email,
	}, middleware.GetClaimedRole(c))
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetMyProfile handles GET /api/v1/users/me
func (ctl *Controller) GetMyProfile(c *gin.Context) {
	auth0ID, ok := currentSubject(c)
	if !ok {
		return
	}

	user, err := ctl.Users.FindByAuth0ID(c.Request.Context(), auth0ID)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateMyProfile handles PUT /api/v1/users/me. Empty fields are left unchanged.
func (ctl *Controller) UpdateMyProfile(c *gin.Context) {
	auth0ID, ok := currentSubject(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request data", err)
		return
	}

	user, err := ctl.Users.UpdateProfile(c.Request.Context(), auth0ID, services.ProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
