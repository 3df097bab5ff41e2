package user

import (
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/bakery-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-that-is-long-enough-for-tests",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost: 4, // keep hashing fast in tests
		},
	}
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying connection: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&User{}, &Address{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	return NewService(db, testConfig()), db
}

func registerReq() *RegisterRequest {
	return &RegisterRequest{
		Email:           "mai@example.com",
		Password:        "Baguette#2026",
		ConfirmPassword: "Baguette#2026",
		FirstName:       "Mai",
		LastName:        "Nguyen",
		Phone:           "0901234567",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Register(registerReq())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected token pair on registration")
	}
	if resp.User.Password != "" {
		t.Error("expected password hash to be blanked in auth responses")
	}
	if resp.User.IsAdmin {
		t.Error("new accounts must not be admins")
	}

	login, err := svc.Login(&LoginRequest{Email: "mai@example.com", Password: "Baguette#2026"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("expected same user, got %d and %d", login.User.ID, resp.User.ID)
	}

	if _, err := svc.Login(&LoginRequest{Email: "mai@example.com", Password: "wrong"}); err == nil {
		t.Error("expected login failure with wrong password")
	}
}

func TestRegisterRejectsDuplicateAndMismatch(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Register(registerReq()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(registerReq()); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected duplicate email rejection, got %v", err)
	}

	mismatched := registerReq()
	mismatched.Email = "other@example.com"
	mismatched.ConfirmPassword = "Different#2026"
	if _, err := svc.Register(mismatched); err == nil || !strings.Contains(err.Error(), "do not match") {
		t.Errorf("expected password mismatch rejection, got %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Register(registerReq())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	refreshed, err := svc.RefreshToken(resp.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Error("expected fresh token pair")
	}

	if _, err := svc.RefreshToken("not-a-token"); err == nil {
		t.Error("expected rejection of malformed refresh token")
	}

	// An access token is not accepted as a refresh token
	if _, err := svc.RefreshToken(resp.AccessToken); err == nil {
		t.Error("expected rejection of access token used for refresh")
	}
}

func TestRefreshTokenDeactivatedUser(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Register(registerReq())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.DeactivateUser(resp.User.ID); err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}

	if _, err := svc.RefreshToken(resp.RefreshToken); err == nil {
		t.Error("expected refresh to fail for deactivated account")
	}
	if _, err := svc.Login(&LoginRequest{Email: "mai@example.com", Password: "Baguette#2026"}); err == nil {
		t.Error("expected login to fail for deactivated account")
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Register(registerReq())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.ChangePassword(resp.User.ID, "wrong", "NewSecret#2026"); err == nil {
		t.Error("expected rejection with wrong current password")
	}

	if err := svc.ChangePassword(resp.User.ID, "Baguette#2026", "NewSecret#2026"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := svc.Login(&LoginRequest{Email: "mai@example.com", Password: "NewSecret#2026"}); err != nil {
		t.Errorf("expected login with new password, got %v", err)
	}
}

func TestUpdateProfileStripsProtectedFields(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Register(registerReq())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	updated, err := svc.UpdateProfile(resp.User.ID, map[string]interface{}{
		"first_name": "Linh",
		"is_admin":   true,
		"password":   "sneaky",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if updated.FirstName != "Linh" {
		t.Errorf("expected first name updated, got %q", updated.FirstName)
	}
	if updated.IsAdmin {
		t.Error("is_admin must not be settable through profile updates")
	}

	if _, err := svc.Login(&LoginRequest{Email: "mai@example.com", Password: "Baguette#2026"}); err != nil {
		t.Errorf("password must be untouched by profile updates, login failed: %v", err)
	}
}
