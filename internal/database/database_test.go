package database

import (
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"wardrobe/internal/apperr"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	return db
}

type stubResetSender struct {
	email string
	code  string
	err   error
}

func (s *stubResetSender) SendPasswordResetEmail(email, code string) error {
	s.email = email
	s.code = code
	return s.err
}

func TestAccountCreationAndAuthentication(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	dob := "1990-05-14"
	account, err := CreateAccount(db, "Jane", "Doe", "jane@example.com", "password123", &dob)
	if err != nil {
		t.Fatal("Failed to create account:", err)
	}

	if account.UserID == 0 {
		t.Error("Expected a generated user id")
	}

	if account.Email != "jane@example.com" {
		t.Errorf("Expected email 'jane@example.com', got %s", account.Email)
	}

	if account.Password != "" {
		t.Error("Returned account should not carry the password")
	}

	authAccount, err := AuthenticateAccount(db, "jane@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to authenticate account:", err)
	}

	if authAccount.UserID != account.UserID {
		t.Errorf("Expected user ID %d, got %d", account.UserID, authAccount.UserID)
	}

	if authAccount.Password != "" {
		t.Error("Authenticated account should not carry the password")
	}

	_, err = AuthenticateAccount(db, "jane@example.com", "wrongpassword")
	if !errors.Is(err, apperr.ErrInvalidCreds) {
		t.Errorf("Expected invalid credentials error, got %v", err)
	}

	_, err = AuthenticateAccount(db, "nobody@example.com", "password123")
	if !errors.Is(err, apperr.ErrNoAccount) {
		t.Errorf("Expected no account error, got %v", err)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := CreateAccount(db, "Jane", "Doe", "", "password123", nil)
	if err == nil {
		t.Fatal("Expected account creation to fail without email")
	}
	if apperr.From(err).Kind != apperr.Validation {
		t.Errorf("Expected validation error, got %v", err)
	}

	_, err = CreateAccount(db, "Jane", "Doe", "jane@example.com", "", nil)
	if err == nil {
		t.Fatal("Expected account creation to fail without password")
	}
}

func TestDuplicateEmailConflict(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := CreateAccount(db, "Jane", "Doe", "jane@example.com", "password123", nil); err != nil {
		t.Fatal("Failed to create account:", err)
	}

	_, err := CreateAccount(db, "Janet", "Doe", "jane@example.com", "otherpassword", nil)
	if !errors.Is(err, apperr.ErrEmailTaken) {
		t.Errorf("Expected email taken error, got %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM accounts WHERE email = ?", "jane@example.com").Scan(&count); err != nil {
		t.Fatal("Failed to count accounts:", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 account after duplicate rejection, got %d", count)
	}
}

func TestFindAccountByField(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	created, err := CreateAccount(db, "Jane", "Doe", "jane@example.com", "password123", nil)
	if err != nil {
		t.Fatal("Failed to create account:", err)
	}

	account, err := FindAccountByField(db, "userId", created.UserID, []string{"userId", "firstName", "lastName", "email"})
	if err != nil {
		t.Fatal("Failed to find account by user id:", err)
	}

	if account.FirstName != "Jane" || account.LastName != "Doe" {
		t.Errorf("Expected Jane Doe, got %s %s", account.FirstName, account.LastName)
	}

	_, err = FindAccountByField(db, "email", "nobody@example.com", []string{"userId"})
	if !errors.Is(err, apperr.ErrNoAccount) {
		t.Errorf("Expected no account error, got %v", err)
	}

	_, err = FindAccountByField(db, "email; DROP TABLE accounts", "jane@example.com", []string{"userId"})
	if err == nil {
		t.Error("Expected unknown field to be rejected")
	}

	_, err = FindAccountByField(db, "email", "jane@example.com", []string{"created_at"})
	if err == nil {
		t.Error("Expected unknown projection field to be rejected")
	}

	_, err = FindAccountByField(db, "email", "", []string{"userId"})
	if err == nil {
		t.Error("Expected empty value to be rejected")
	}
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := CreateAccount(db, "Jane", "Doe", "jane@example.com", "oldpassword", nil); err != nil {
		t.Fatal("Failed to create account:", err)
	}

	err := ChangePassword(db, "jane@example.com", "wrongpassword", "newpassword")
	if !errors.Is(err, apperr.ErrInvalidCreds) {
		t.Errorf("Expected invalid credentials error, got %v", err)
	}

	if _, err := AuthenticateAccount(db, "jane@example.com", "oldpassword"); err != nil {
		t.Error("Original password should still work after a rejected change:", err)
	}

	if err := ChangePassword(db, "jane@example.com", "oldpassword", "newpassword"); err != nil {
		t.Fatal("Failed to change password:", err)
	}

	if _, err := AuthenticateAccount(db, "jane@example.com", "newpassword"); err != nil {
		t.Error("New password should authenticate:", err)
	}

	if _, err := AuthenticateAccount(db, "jane@example.com", "oldpassword"); err == nil {
		t.Error("Old password should no longer authenticate")
	}

	if err := ChangePassword(db, "jane@example.com", "", "x"); err == nil {
		t.Error("Expected missing old password to be rejected")
	}
}

func TestUpdateAccountFieldsSkipsProtected(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	created, err := CreateAccount(db, "Jane", "Doe", "jane@example.com", "password123", nil)
	if err != nil {
		t.Fatal("Failed to create account:", err)
	}

	err = UpdateAccountFields(db, "jane@example.com",
		[]string{"userId", "firstName", "password"},
		[]interface{}{9999, "Janet", "plaintext"})
	if err != nil {
		t.Fatal("Failed to update account fields:", err)
	}

	account, err := FindAccountByField(db, "email", "jane@example.com", []string{"userId", "firstName"})
	if err != nil {
		t.Fatal("Failed to find account:", err)
	}

	if account.UserID != created.UserID {
		t.Errorf("Protected userId changed: expected %d, got %d", created.UserID, account.UserID)
	}
	if account.FirstName != "Janet" {
		t.Errorf("Expected first name 'Janet', got %s", account.FirstName)
	}

	if _, err := AuthenticateAccount(db, "jane@example.com", "password123"); err != nil {
		t.Error("Password should be untouched by protected-field update:", err)
	}

	err = UpdateAccountFields(db, "jane@example.com", []string{"is_admin"}, []interface{}{true})
	if err == nil {
		t.Error("Expected unknown field to be rejected")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := CreateAccount(db, "Jane", "Doe", "jane@example.com", "oldpassword", nil); err != nil {
		t.Fatal("Failed to create account:", err)
	}

	sender := &stubResetSender{}
	if err := GeneratePasswordReset(db, sender, "jane@example.com"); err != nil {
		t.Fatal("Failed to generate password reset:", err)
	}

	if sender.email != "jane@example.com" {
		t.Errorf("Expected reset email sent to jane@example.com, got %s", sender.email)
	}
	if len(sender.code) != 64 {
		t.Errorf("Expected 64 char hex code, got %d chars", len(sender.code))
	}

	account, err := GetResetCode(db, "jane@example.com")
	if err != nil {
		t.Fatal("Failed to get reset code:", err)
	}

	if account.ResetCode == nil || *account.ResetCode != sender.code {
		t.Error("Stored reset code should match the dispatched code")
	}
	if account.ResetExpiresAt == nil || !account.ResetExpiresAt.After(time.Now()) {
		t.Error("Reset code should expire in the future")
	}

	if err := ChangePassword(db, "jane@example.com", "oldpassword", "newpassword"); err != nil {
		t.Fatal("Failed to change password:", err)
	}

	account, err = GetResetCode(db, "jane@example.com")
	if err != nil {
		t.Fatal("Failed to get reset code:", err)
	}
	if account.ResetCode != nil {
		t.Error("Reset code should be cleared after a password change")
	}
}

func TestPasswordResetSendFailure(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := CreateAccount(db, "Jane", "Doe", "jane@example.com", "password123", nil); err != nil {
		t.Fatal("Failed to create account:", err)
	}

	sender := &stubResetSender{err: errors.New("mailgun unavailable")}
	err := GeneratePasswordReset(db, sender, "jane@example.com")
	if err == nil {
		t.Fatal("Expected reset generation to fail when the email cannot be sent")
	}
	if apperr.From(err).Kind != apperr.Server {
		t.Errorf("Expected server error, got %v", err)
	}
}

func TestSessionManagement(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	account, err := CreateAccount(db, "Jane", "Doe", "jane@example.com", "password123", nil)
	if err != nil {
		t.Fatal("Failed to create account:", err)
	}

	session, err := CreateSession(db, account.UserID, time.Hour)
	if err != nil {
		t.Fatal("Failed to create session:", err)
	}

	if len(session.ID) == 0 {
		t.Error("Session ID should not be empty")
	}

	validated, err := ValidateSession(db, session.ID, time.Hour)
	if err != nil {
		t.Fatal("Failed to validate session:", err)
	}

	if validated.UserID != account.UserID {
		t.Errorf("Expected user ID %d, got %d", account.UserID, validated.UserID)
	}

	if err := DeleteSession(db, session.ID); err != nil {
		t.Fatal("Failed to delete session:", err)
	}

	if _, err := ValidateSession(db, session.ID, time.Hour); err == nil {
		t.Error("Expected session validation to fail after deletion")
	}
}

func TestCSRFTokenIsSingleUse(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	account, err := CreateAccount(db, "Jane", "Doe", "jane@example.com", "password123", nil)
	if err != nil {
		t.Fatal("Failed to create account:", err)
	}

	token, err := CreateCSRFToken(db, account.UserID)
	if err != nil {
		t.Fatal("Failed to create CSRF token:", err)
	}

	if err := ValidateCSRFToken(db, token.Token, account.UserID); err != nil {
		t.Fatal("Failed to validate CSRF token:", err)
	}

	if err := ValidateCSRFToken(db, token.Token, account.UserID); err == nil {
		t.Error("Expected second validation of the same token to fail")
	}
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}
