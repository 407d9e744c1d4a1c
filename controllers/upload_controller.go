package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/services"
	"github.com/kendall-kelly/campus-requests-api/utils"
)

// GetReceipt handles GET /api/v1/receipts/:filename - serves a receipt to its owner or an admin
func (ctl *Controller) GetReceipt(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	filename := c.Param("filename")

	// Prevent directory traversal
	if !utils.IsSafeFilename(filename) {
		respondCode(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	if !utils.IsAllowedReceiptFormat(filename) {
		respondCode(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only image receipts are supported")
		return
	}

	path := services.ReceiptPath(filename)
	req, err := ctl.Query.FindByReceipt(c.Request.Context(), path)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	if req.UserID != actor.ID && !actor.IsAdmin() {
		ctl.respondError(c, services.NewForbiddenError(services.CodeForbidden, "You do not have permission to view this receipt"))
		return
	}

	data, err := ctl.Receipts.Get(c.Request.Context(), path)
	if err != nil {
		if errors.Is(err, services.ErrReceiptNotFound) {
			respondCode(c, http.StatusNotFound, "FILE_NOT_FOUND", "Receipt not found")
			return
		}
		ctl.respondError(c, services.NewStorageError("Failed to read receipt", err))
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
