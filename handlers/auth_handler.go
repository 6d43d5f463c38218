package handlers

import (
	"time"

	"github.com/abujafor1924/newmilikoz/internal/errs"
	"github.com/abujafor1924/newmilikoz/internal/mailer"
	"github.com/abujafor1924/newmilikoz/models"
	"github.com/abujafor1924/newmilikoz/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB     *gorm.DB
	Mailer mailer.Mailer
	Log    zerolog.Logger
}

func NewAuthHandler(db *gorm.DB, m mailer.Mailer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Mailer: m, Log: log}
}

// RegisterRequest defines the payload for registration
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// LoginRequest defines the payload for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}

	if req.Email == "" || req.Name == "" || req.Phone == "" || req.Role == "" || req.Password == "" {
		return errs.Validation("all fields are required")
	}
	if req.Role != "user" && req.Role != "provider" {
		return errs.Validation("role must be user or provider")
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return errs.Conflict("email already exists")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return errs.Internal("could not hash password", err)
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		Password: hashedPassword,
		Profile:  models.UserProfile{},
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return errs.Conflict("user already exists")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"phone":   user.Phone,
		"role":    user.Role,
		"message": "User registered successfully",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}
	if req.Email == "" || req.Password == "" {
		return errs.Validation("email and password are required")
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return errs.Unauthorized("invalid email or password")
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		return errs.Unauthorized("invalid email or password")
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return errs.Internal("could not sign token", err)
	}

	return c.JSON(fiber.Map{
		"token":   token,
		"message": "User login successful",
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// ResetRequest carries the email for the OTP request and confirm steps.
type ResetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// RequestPasswordReset - POST /api/auth/reset-password
// Issues a 4-digit code valid for five minutes and mails it out.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}
	if req.Email == "" {
		return errs.Validation("email is required")
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return errs.NotFound("user with this email does not exist")
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return errs.Internal("could not generate OTP", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"password_reset_otp":            otp,
		"password_reset_otp_created_at": now,
	}
	if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
		return errs.Internal("could not store OTP", err)
	}

	if err := h.Mailer.SendOTP(user.Email, otp); err != nil {
		h.Log.Error().Err(err).Str("email", user.Email).Msg("failed to send OTP mail")
		return errs.Internal("could not send OTP", err)
	}

	return c.JSON(fiber.Map{"message": "OTP has been sent to your email"})
}

// VerifyOTP - POST /api/auth/verify-otp
// A verified code is consumed and replaced with a reset token for the
// confirm step.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}
	if req.Email == "" || req.OTP == "" {
		return errs.Validation("email and otp are required")
	}

	var user models.User
	if err := h.DB.Where("email = ? AND password_reset_otp = ?", req.Email, req.OTP).
		First(&user).Error; err != nil {
		return errs.Validation("invalid OTP or email")
	}

	if utils.IsOTPExpired(user.PasswordResetOTPCreatedAt) {
		return errs.Validation("OTP has expired")
	}

	updates := map[string]interface{}{
		"password_reset_token":          uuid.NewString()[:8],
		"password_reset_otp":            "",
		"password_reset_otp_created_at": nil,
	}
	if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
		return errs.Internal("could not verify OTP", err)
	}

	return c.JSON(fiber.Map{
		"message": "OTP has been successfully verified. You can now reset your password",
	})
}

// ConfirmPasswordReset - POST /api/auth/confirm-reset-password
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Validation("invalid input")
	}
	if req.Email == "" || req.NewPassword == "" {
		return errs.Validation("email and new password are required")
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return errs.NotFound("user with this email does not exist")
	}
	if user.PasswordResetToken == "" {
		return errs.Validation("OTP verification is required first")
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return errs.Internal("could not hash password", err)
	}

	updates := map[string]interface{}{
		"password":             hashedPassword,
		"password_reset_token": "",
	}
	if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
		return errs.Internal("could not reset password", err)
	}

	return c.JSON(fiber.Map{"message": "Password has been reset successfully"})
}
