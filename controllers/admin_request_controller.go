package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/services"
)

// AcceptRequestBody is the payload for approving a request
type AcceptRequestBody struct {
	DeliveryDate string `json:"delivery_date" binding:"required"`
}

// RejectRequestBody is the payload for rejecting a request
type RejectRequestBody struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// ChangeRoleBody is the payload for moving a user between roles
type ChangeRoleBody struct {
	Role string `json:"role" binding:"required,oneof=student graduate"`
}

// ListRequests handles GET /api/v1/admin/student-requests?status= - requests by status
func (ctl *Controller) ListRequests(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	views, err := ctl.Query.ListByStatus(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    views,
	})
}

// GetPendingRequest handles GET /api/v1/admin/student-requests/pending/:id
func (ctl *Controller) GetPendingRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := ctl.Query.GetPending(c.Request.Context(), actor, id)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view,
	})
}

// AcceptRequest handles PATCH /api/v1/admin/student-requests/:id/accept
func (ctl *Controller) AcceptRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var body AcceptRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidation(c, "Invalid request data", err)
		return
	}

	req, err := ctl.Requests.Approve(c.Request.Context(), actor, id, body.DeliveryDate)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ctl.Query.View(c.Request.Context(), req, true),
	})
}

// RejectRequest handles PATCH /api/v1/admin/student-requests/:id/reject
func (ctl *Controller) RejectRequest(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var body RejectRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidation(c, "Invalid request data", err)
		return
	}

	req, err := ctl.Requests.Reject(c.Request.Context(), actor, id, body.Reason)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ctl.Query.View(c.Request.Context(), req, true),
	})
}

// ExportRequests handles GET /api/v1/admin/student-requests/export?status= - xlsx download
func (ctl *Controller) ExportRequests(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	workbook, filename, err := ctl.Query.Export(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	defer func() { _ = workbook.Close() }()

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		ctl.respondError(c, services.NewInternalError("Failed to write export", err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// GetDashboard handles GET /api/v1/admin/dashboard - request counts per status
func (ctl *Controller) GetDashboard(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	stats, err := ctl.Query.Stats(c.Request.Context(), actor)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// ChangeUserRole handles PATCH /api/v1/admin/users/:id/role
func (ctl *Controller) ChangeUserRole(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var body ChangeRoleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidation(c, "Invalid request data", err)
		return
	}

	user, err := ctl.Users.ChangeRole(c.Request.Context(), actor, id, body.Role)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
