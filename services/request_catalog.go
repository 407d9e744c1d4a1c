package services

import (
	"context"
	"errors"
	"strings"

	"github.com/kendall-kelly/campus-requests-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequestTypeInput is the editable part of a catalog entry
type RequestTypeInput struct {
	Name        string
	UnitPrice   *float64
	Description *string
}

// RequestCatalog reads and maintains the request type catalog
type RequestCatalog struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRequestCatalog creates a catalog backed by db
func NewRequestCatalog(db *gorm.DB, logger *zap.Logger) *RequestCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestCatalog{db: db, logger: logger}
}

// Get returns a live catalog entry. Soft-deleted entries are not found.
func (c *RequestCatalog) Get(ctx context.Context, id uint) (*models.RequestType, error) {
	var rt models.RequestType
	if err := c.db.WithContext(ctx).First(&rt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(CodeRequestTypeNotFound, "Request type", id)
		}
		return nil, NewInternalError("Failed to load request type", err)
	}
	return &rt, nil
}

// List returns every live catalog entry ordered by name
func (c *RequestCatalog) List(ctx context.Context) ([]models.RequestType, error) {
	var types []models.RequestType
	if err := c.db.WithContext(ctx).Order("name ASC").Find(&types).Error; err != nil {
		return nil, NewInternalError("Failed to list request types", err)
	}
	return types, nil
}

// ListForRole returns the entries a role may see. Students never see
// graduation certificates and graduates see nothing else.
func (c *RequestCatalog) ListForRole(ctx context.Context, role string) ([]models.RequestType, error) {
	types, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	switch role {
	case models.RoleStudent:
		return filterTypes(types, func(rt *models.RequestType) bool {
			return !MatchesName(rt, GraduationCertificateKeyword)
		}), nil
	case models.RoleGraduate:
		return filterTypes(types, func(rt *models.RequestType) bool {
			return MatchesName(rt, GraduationCertificateKeyword)
		}), nil
	default:
		return types, nil
	}
}

func filterTypes(types []models.RequestType, keep func(*models.RequestType) bool) []models.RequestType {
	out := make([]models.RequestType, 0, len(types))
	for i := range types {
		if keep(&types[i]) {
			out = append(out, types[i])
		}
	}
	return out
}

// Create adds a catalog entry
func (c *RequestCatalog) Create(ctx context.Context, actor Actor, in RequestTypeInput) (*models.RequestType, error) {
	if err := Authorize(actor, CapabilityManageCatalog); err != nil {
		return nil, err
	}
	if in.UnitPrice == nil {
		return nil, NewValidationError("Invalid request type", map[string]string{"unit_price": "is required"})
	}
	if err := validateRequestType(in.Name, *in.UnitPrice); err != nil {
		return nil, err
	}

	rt := models.RequestType{
		Name:      strings.TrimSpace(in.Name),
		UnitPrice: *in.UnitPrice,
	}
	if in.Description != nil {
		rt.Description = *in.Description
	}

	if err := c.db.WithContext(ctx).Create(&rt).Error; err != nil {
		return nil, NewInternalError("Failed to create request type", err)
	}

	c.logger.Info("request type created", zap.Uint("request_type_id", rt.ID), zap.Uint("admin_id", actor.ID))
	return &rt, nil
}

// Update changes the provided fields of a catalog entry.
// Existing requests keep the price they were submitted with.
func (c *RequestCatalog) Update(ctx context.Context, actor Actor, id uint, in RequestTypeInput) (*models.RequestType, error) {
	if err := Authorize(actor, CapabilityManageCatalog); err != nil {
		return nil, err
	}

	rt, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := rt.Name
	if in.Name != "" {
		name = in.Name
	}
	price := rt.UnitPrice
	if in.UnitPrice != nil {
		price = *in.UnitPrice
	}
	if err := validateRequestType(name, price); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":       strings.TrimSpace(name),
		"unit_price": price,
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}

	if err := c.db.WithContext(ctx).Model(rt).Updates(updates).Error; err != nil {
		return nil, NewInternalError("Failed to update request type", err)
	}

	return c.Get(ctx, id)
}

// Delete soft-deletes a catalog entry so historical requests still resolve it
func (c *RequestCatalog) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := Authorize(actor, CapabilityManageCatalog); err != nil {
		return err
	}

	result := c.db.WithContext(ctx).Delete(&models.RequestType{}, id)
	if result.Error != nil {
		return NewInternalError("Failed to delete request type", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError(CodeRequestTypeNotFound, "Request type", id)
	}

	c.logger.Info("request type deleted", zap.Uint("request_type_id", id), zap.Uint("admin_id", actor.ID))
	return nil
}

func validateRequestType(name string, price float64) error {
	details := map[string]string{}
	name = strings.TrimSpace(name)
	if name == "" {
		details["name"] = "is required"
	} else if len(name) > 255 {
		details["name"] = "must be at most 255 characters"
	}
	if price < 0 {
		details["unit_price"] = "must be zero or greater"
	}
	if len(details) > 0 {
		return NewValidationError("Invalid request type", details)
	}
	return nil
}
