package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abujafor1924/newmilikoz/middleware"
	"github.com/abujafor1924/newmilikoz/models"
	"github.com/abujafor1924/newmilikoz/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordingMailer captures issued codes instead of sending mail.
type recordingMailer struct {
	lastEmail string
	lastOTP   string
}

func (m *recordingMailer) SendOTP(email, otp string) error {
	m.lastEmail = email
	m.lastOTP = otp
	return nil
}

var authDBSeq int

func newAuthTestApp(t *testing.T) (*fiber.App, *gorm.DB, *recordingMailer) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	authDBSeq++
	dsn := fmt.Sprintf("file:authtest%d?mode=memory&cache=shared", authDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.UserProfile{}))

	mail := &recordingMailer{}
	h := NewAuthHandler(db, mail, zerolog.Nop())
	profile := NewProfileHandler(db)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zerolog.Nop())})
	auth := app.Group("/api/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/reset-password", h.RequestPasswordReset)
	auth.Post("/verify-otp", h.VerifyOTP)
	auth.Post("/confirm-reset-password", h.ConfirmPasswordReset)
	auth.Get("/profile", utils.AuthMiddleware, profile.GetProfile)

	return app, db, mail
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	app, db, _ := newAuthTestApp(t)

	resp, body := postJSON(t, app, "/api/auth/register", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"phone":    "+8801700000001",
		"role":     "user",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice@example.com", body["email"])

	// The profile row is created alongside the user
	var profiles int64
	db.Model(&models.UserProfile{}).Count(&profiles)
	assert.Equal(t, int64(1), profiles)

	// Duplicate email is rejected
	resp, _ = postJSON(t, app, "/api/auth/register", map[string]string{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"phone":    "+8801700000002",
		"role":     "user",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Missing fields are rejected
	resp, _ = postJSON(t, app, "/api/auth/register", map[string]string{"email": "x@y.z"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Login with the right password
	resp, body = postJSON(t, app, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	// Wrong password
	resp, _ = postJSON(t, app, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Token works against the guarded profile endpoint
	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	profResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, profResp.StatusCode)

	// And the endpoint is closed without one
	req = httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	profResp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, profResp.StatusCode)
}

func TestAuth_PasswordResetFlow(t *testing.T) {
	app, db, mail := newAuthTestApp(t)

	_, _ = postJSON(t, app, "/api/auth/register", map[string]string{
		"name":     "Bob",
		"email":    "bob@example.com",
		"phone":    "+8801700000003",
		"role":     "provider",
		"password": "oldpass",
	})

	// Unknown email
	resp, _ := postJSON(t, app, "/api/auth/reset-password", map[string]string{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Issue the code
	resp, _ = postJSON(t, app, "/api/auth/reset-password", map[string]string{
		"email": "bob@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, mail.lastOTP, 4)
	assert.Equal(t, "bob@example.com", mail.lastEmail)

	// Wrong code
	resp, _ = postJSON(t, app, "/api/auth/verify-otp", map[string]string{
		"email": "bob@example.com",
		"otp":   "0000",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Confirm before verification is refused
	resp, _ = postJSON(t, app, "/api/auth/confirm-reset-password", map[string]string{
		"email":        "bob@example.com",
		"new_password": "newpass",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Right code
	resp, _ = postJSON(t, app, "/api/auth/verify-otp", map[string]string{
		"email": "bob@example.com",
		"otp":   mail.lastOTP,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The code is consumed
	resp, _ = postJSON(t, app, "/api/auth/verify-otp", map[string]string{
		"email": "bob@example.com",
		"otp":   mail.lastOTP,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Confirm the new password
	resp, _ = postJSON(t, app, "/api/auth/confirm-reset-password", map[string]string{
		"email":        "bob@example.com",
		"new_password": "newpass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = postJSON(t, app, "/api/auth/login", map[string]string{
		"email":    "bob@example.com",
		"password": "newpass",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = postJSON(t, app, "/api/auth/login", map[string]string{
		"email":    "bob@example.com",
		"password": "oldpass",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Reset token cleared after use
	var user models.User
	require.NoError(t, db.Where("email = ?", "bob@example.com").First(&user).Error)
	assert.Empty(t, user.PasswordResetToken)
}

func TestAuth_ExpiredOTPRejected(t *testing.T) {
	app, db, mail := newAuthTestApp(t)

	_, _ = postJSON(t, app, "/api/auth/register", map[string]string{
		"name":     "Carol",
		"email":    "carol@example.com",
		"phone":    "+8801700000004",
		"role":     "user",
		"password": "secret123",
	})
	_, _ = postJSON(t, app, "/api/auth/reset-password", map[string]string{
		"email": "carol@example.com",
	})

	// Age the code past its window
	stale := time.Now().Add(-utils.OTPTTL - time.Minute)
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "carol@example.com").
		Update("password_reset_otp_created_at", stale).Error)

	resp, body := postJSON(t, app, "/api/auth/verify-otp", map[string]string{
		"email": "carol@example.com",
		"otp":   mail.lastOTP,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fmt.Sprint(body["message"]), "expired")
}
