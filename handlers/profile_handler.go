package handlers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/abujafor1924/newmilikoz/internal/errs"
	"github.com/abujafor1924/newmilikoz/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	DB        *gorm.DB
	UploadDir string
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{DB: db, UploadDir: "./uploads/profile_pictures"}
}

func (h *ProfileHandler) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("user_id").(uint)
	if !ok || userID == 0 {
		return nil, errs.Unauthorized("invalid user session")
	}

	var user models.User
	if err := h.DB.Preload("Profile").First(&user, userID).Error; err != nil {
		return nil, errs.NotFound("user not found")
	}
	return &user, nil
}

// GetProfile - GET /api/auth/profile
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"id":              user.ID,
		"name":            user.Name,
		"email":           user.Email,
		"phone":           user.Phone,
		"role":            user.Role,
		"is_verified":     user.IsVerified,
		"location":        user.Profile.Location,
		"bio":             user.Profile.Bio,
		"profile_picture": user.Profile.ProfilePicture,
	})
}

// UpdateProfileRequest defines the mutable profile fields
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Bio      string `json:"bio"`
}

// UpdateProfile - PUT /api/auth/profile
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}

	if req.Name != "" {
		if err := h.DB.Model(user).Update("name", req.Name).Error; err != nil {
			return errs.Internal("could not update user", err)
		}
	}

	profileUpdates := map[string]interface{}{
		"location": req.Location,
		"bio":      req.Bio,
	}
	if err := h.DB.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).
		Updates(profileUpdates).Error; err != nil {
		return errs.Internal("could not update profile", err)
	}

	return c.JSON(fiber.Map{"message": "Profile updated"})
}

// UploadProfilePicture - POST /api/auth/profile/picture
func (h *ProfileHandler) UploadProfilePicture(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("picture")
	if err != nil {
		return errs.Validation("picture file is required")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return errs.Validation("unsupported image format")
	}

	filename := fmt.Sprintf("%d_%d%s", user.ID, time.Now().UnixNano(), ext)
	dst := filepath.Join(h.UploadDir, filename)
	if err := c.SaveFile(file, dst); err != nil {
		return errs.Internal("could not save file", err)
	}

	url := "/uploads/profile_pictures/" + filename
	if err := h.DB.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).
		Update("profile_picture", url).Error; err != nil {
		return errs.Internal("could not update profile", err)
	}

	return c.JSON(fiber.Map{"message": "Picture uploaded", "profile_picture": url})
}
