package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/middleware"
	"github.com/kendall-kelly/campus-requests-api/services"
	"github.com/kendall-kelly/campus-requests-api/utils"
	"go.uber.org/zap"
)

// ListMyRequests handles GET /api/v1/student-requests - lists the caller's requests
func (ctl *Controller) ListMyRequests(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	views, err := ctl.Query.ListOwn(c.Request.Context(), actor)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    views,
	})
}

// SubmitRequest handles POST /api/v1/student-requests - submits a request with its receipt.
// The form is read leniently; every field is validated by the service after the
// submission rules have run.
func (ctl *Controller) SubmitRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	input := services.SubmitInput{
		RequestTypeID: formUint(c, "request_type_id"),
		Count:         formInt(c, "count"),
		StudentID:     c.PostForm("student_id"),
		StudentNameAr: c.PostForm("student_name_ar"),
		StudentNameEn: c.PostForm("student_name_en"),
		Department:    c.PostForm("department"),
		Channel:       middleware.GetChannel(c),
	}

	if fileHeader, err := c.FormFile("receipt_image"); err == nil {
		data, err := utils.ReadUploadedFile(fileHeader)
		if err != nil {
			ctl.logger().Error("failed to read receipt upload", zap.Error(err))
			respondCode(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to read uploaded receipt")
			return
		}
		input.Receipt = &services.Receipt{Filename: fileHeader.Filename, Data: data}
	}

	req, err := ctl.Requests.Submit(c.Request.Context(), actor, input)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    ctl.Query.View(c.Request.Context(), req, false),
	})
}

// DeleteMyRequest handles DELETE /api/v1/student-requests/:id - withdraws a pending request
func (ctl *Controller) DeleteMyRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctl.Requests.DeleteOwn(c.Request.Context(), actor, id); err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Request deleted successfully",
	})
}

// ListRequestTypes handles GET /api/v1/requests - the catalog visible to the caller's role
func (ctl *Controller) ListRequestTypes(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	types, err := ctl.Catalog.ListForRole(c.Request.Context(), actor.Role)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    types,
	})
}

// formUint returns 0 for a missing or malformed value
func formUint(c *gin.Context, key string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(c.PostForm(key)), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// formInt returns 0 for a missing or malformed value
func formInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.PostForm(key)))
	if err != nil {
		return 0
	}
	return v
}
