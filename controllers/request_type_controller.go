package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/services"
)

// RequestTypeBody is the payload for creating or updating a catalog entry
type RequestTypeBody struct {
	Name        string   `json:"name" binding:"omitempty,max=255"`
	UnitPrice   *float64 `json:"unit_price" binding:"omitempty,gte=0"`
	Description *string  `json:"description"`
}

func (b RequestTypeBody) input() services.RequestTypeInput {
	return services.RequestTypeInput{
		Name:        b.Name,
		UnitPrice:   b.UnitPrice,
		Description: b.Description,
	}
}

// AdminListRequestTypes handles GET /api/v1/admin/request-types
func (ctl *Controller) AdminListRequestTypes(c *gin.Context) {
	types, err := ctl.Catalog.List(c.Request.Context())
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    types,
	})
}

// GetRequestType handles GET /api/v1/admin/request-types/:id
func (ctl *Controller) GetRequestType(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	rt, err := ctl.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    rt,
	})
}

// CreateRequestType handles POST /api/v1/admin/request-types
func (ctl *Controller) CreateRequestType(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var body RequestTypeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidation(c, "Invalid request data", err)
		return
	}

	rt, err := ctl.Catalog.Create(c.Request.Context(), actor, body.input())
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    rt,
	})
}

// UpdateRequestType handles PUT /api/v1/admin/request-types/:id
func (ctl *Controller) UpdateRequestType(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var body RequestTypeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidation(c, "Invalid request data", err)
		return
	}

	rt, err := ctl.Catalog.Update(c.Request.Context(), actor, id, body.input())
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    rt,
	})
}

// DeleteRequestType handles DELETE /api/v1/admin/request-types/:id
func (ctl *Controller) DeleteRequestType(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctl.Catalog.Delete(c.Request.Context(), actor, id); err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Request type deleted successfully",
	})
}
