package services

import (
	"context"
	"errors"
	"strings"

	"github.com/kendall-kelly/campus-requests-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProfileInput holds the fields a user may set on their own profile
type ProfileInput struct {
	Name  string
	Email string
}

// UserDirectory resolves authenticated identities to portal users
type UserDirectory struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserDirectory creates a directory backed by db
func NewUserDirectory(db *gorm.DB, logger *zap.Logger) *UserDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserDirectory{db: db, logger: logger}
}

// FindByAuth0ID returns the user for a JWT subject
func (d *UserDirectory) FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &AppError{
				Kind:    KindNotFound,
				Code:    CodeUserNotFound,
				Message: "User profile not found. Please create a profile first.",
			}
		}
		return nil, NewInternalError("Failed to load user", err)
	}
	return &user, nil
}

// ResolveActor returns the actor for a JWT subject
func (d *UserDirectory) ResolveActor(ctx context.Context, auth0ID string) (Actor, error) {
	user, err := d.FindByAuth0ID(ctx, auth0ID)
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: user.ID, Role: user.Role}, nil
}

// CreateProfile registers a user for the given JWT subject
func (d *UserDirectory) CreateProfile(ctx context.Context, auth0ID string, in ProfileInput, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleStudent
	}
	if !models.IsValidRole(role) {
		return nil, NewValidationError("Invalid role", map[string]string{"role": "must be student, graduate or admin"})
	}

	user := models.User{
		Auth0ID: auth0ID,
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Role:    role,
	}
	if err := d.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, NewConflictError("USER_EXISTS", "A user with this Auth0 ID or email already exists")
		}
		return nil, NewInternalError("Failed to create user", err)
	}

	d.logger.Info("user profile created", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return &user, nil
}

// UpdateProfile changes the caller's name or email
func (d *UserDirectory) UpdateProfile(ctx context.Context, auth0ID string, in ProfileInput) (*models.User, error) {
	user, err := d.FindByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name := strings.TrimSpace(in.Name); name != "" {
		updates["name"] = name
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		updates["email"] = email
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := d.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, NewConflictError("EMAIL_EXISTS", "A user with this email already exists")
		}
		return nil, NewInternalError("Failed to update user profile", err)
	}

	return d.FindByAuth0ID(ctx, auth0ID)
}

// ChangeRole moves a user between the student and graduate roles
func (d *UserDirectory) ChangeRole(ctx context.Context, admin Actor, userID uint, role string) (*models.User, error) {
	if err := Authorize(admin, CapabilityManageUsers); err != nil {
		return nil, err
	}
	if role != models.RoleStudent && role != models.RoleGraduate {
		return nil, NewValidationError("Invalid role", map[string]string{"role": "must be student or graduate"})
	}

	var user models.User
	if err := d.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(CodeUserNotFound, "User", userID)
		}
		return nil, NewInternalError("Failed to load user", err)
	}
	if user.Role == models.RoleAdmin {
		return nil, NewForbiddenError(CodeForbidden, "The role of an admin cannot be changed")
	}

	if err := d.db.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
		return nil, NewInternalError("Failed to update user role", err)
	}
	user.Role = role

	d.logger.Info("user role changed",
		zap.Uint("user_id", user.ID),
		zap.String("role", role),
		zap.Uint("admin_id", admin.ID),
	)
	return &user, nil
}
