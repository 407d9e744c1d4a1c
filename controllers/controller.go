package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/middleware"
	"github.com/kendall-kelly/campus-requests-api/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Controller holds the services the HTTP handlers delegate to
type Controller struct {
	DB            *gorm.DB
	Users         *services.UserDirectory
	Catalog       *services.RequestCatalog
	Requests      *services.RequestService
	Query         *services.RequestQuery
	Notifications *services.NotificationService
	Receipts      services.ReceiptStore
	UserInfo      services.UserInfoProvider
	Logger        *zap.Logger
}

func (ctl *Controller) logger() *zap.Logger {
	if ctl.Logger == nil {
		return zap.NewNop()
	}
	return ctl.Logger
}

var errorStatus = map[services.ErrorKind]int{
	services.KindValidation: http.StatusBadRequest,
	services.KindPolicy:     http.StatusForbidden,
	services.KindNotFound:   http.StatusNotFound,
	services.KindForbidden:  http.StatusForbidden,
	services.KindConflict:   http.StatusConflict,
	services.KindStorage:    http.StatusInternalServerError,
	services.KindInternal:   http.StatusInternalServerError,
}

// respondError writes err using the standard error envelope
func (ctl *Controller) respondError(c *gin.Context, err error) {
	var appErr *services.AppError
	if !errors.As(err, &appErr) {
		appErr = services.NewInternalError("Internal server error", err)
	}

	status, ok := errorStatus[appErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		ctl.logger().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", appErr.Code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

func respondValidation(c *gin.Context, message string, err error) {
	body := gin.H{
		"code":    services.CodeValidation,
		"message": message,
	}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondCode writes an error envelope that does not come from a service
func respondCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// currentActor returns the actor resolved by middleware.ResolveActor
func currentActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		respondCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
	}
	return actor, ok
}

// currentSubject returns the JWT subject for routes that run before a profile exists
func currentSubject(c *gin.Context) (string, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return "", false
	}
	return auth0ID, true
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondCode(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
