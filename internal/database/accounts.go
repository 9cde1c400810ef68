package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"wardrobe/internal/apperr"
	"wardrobe/internal/logger"
	"wardrobe/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const resetCodeTTL = 24 * time.Hour

// accountColumns whitelists the externally addressable fields and maps them
// to their columns. Anything else in a field list is rejected.
var accountColumns = map[string]string{
	"userId":     "user_id",
	"firstName":  "first_name",
	"lastName":   "last_name",
	"email":      "email",
	"password":   "password",
	"dob":        "dob",
	"reset_code": "reset_code",
	"expires_at": "expires_at",
}

// protectedFields may never be written through UpdateAccountFields.
var protectedFields = map[string]bool{
	"userId":   true,
	"password": true,
}

// ResetSender delivers the password reset email for GeneratePasswordReset.
type ResetSender interface {
	SendPasswordResetEmail(email, code string) error
}

// CreateAccount registers a new account. Only email and password are
// required. The password is stored as a bcrypt hash; the returned account
// never carries it. A duplicate email surfaces as a conflict, enforced by
// the unique constraint rather than a lookup-then-insert check.
func CreateAccount(db *sql.DB, firstName, lastName, email, password string, dob *string) (*models.Account, error) {
	if email == "" || password == "" {
		return nil, apperr.Undefined("Email and password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.ErrCreateAccount.WithCause(err)
	}

	query := `
		INSERT INTO accounts (first_name, last_name, email, password, dob)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query, firstName, lastName, email, string(hash), dob)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, apperr.ErrEmailTaken
		}
		return nil, apperr.ErrCreateAccount.WithCause(err)
	}

	logger.Info("Account created", "email", email)

	// Re-fetch the canonical record so the caller sees the assigned id.
	return FindAccountByField(db, "email", email, []string{"userId", "email", "firstName", "lastName", "dob"})
}

// FindAccountByField retrieves the first account whose column matches value,
// with only the requested fields populated.
func FindAccountByField(db *sql.DB, field string, value interface{}, fields []string) (*models.Account, error) {
	if field == "" || value == nil || len(fields) == 0 {
		return nil, apperr.Undefined("Field, value, and fields")
	}
	if s, ok := value.(string); ok && s == "" {
		return nil, apperr.Undefined("Field, value, and fields")
	}

	whereCol, ok := accountColumns[field]
	if !ok {
		return nil, apperr.Undefined("A known account field")
	}

	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		col, ok := accountColumns[f]
		if !ok {
			return nil, apperr.Undefined("A known account field")
		}
		cols = append(cols, col)
	}

	query := fmt.Sprintf("SELECT %s FROM accounts WHERE %s = ? LIMIT 1",
		strings.Join(cols, ", "), whereCol)

	account := &models.Account{}
	var (
		firstName, lastName, dob, resetCode sql.NullString
		expiresAt                           sql.NullTime
	)

	dests := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		switch f {
		case "userId":
			dests = append(dests, &account.UserID)
		case "firstName":
			dests = append(dests, &firstName)
		case "lastName":
			dests = append(dests, &lastName)
		case "email":
			dests = append(dests, &account.Email)
		case "password":
			dests = append(dests, &account.Password)
		case "dob":
			dests = append(dests, &dob)
		case "reset_code":
			dests = append(dests, &resetCode)
		case "expires_at":
			dests = append(dests, &expiresAt)
		}
	}

	err := db.QueryRow(query, value).Scan(dests...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNoAccount
		}
		return nil, apperr.ErrAccountInfo.WithCause(err)
	}

	if firstName.Valid {
		account.FirstName = firstName.String
	}
	if lastName.Valid {
		account.LastName = lastName.String
	}
	if dob.Valid {
		account.DOB = &dob.String
	}
	if resetCode.Valid {
		account.ResetCode = &resetCode.String
	}
	if expiresAt.Valid {
		account.ResetExpiresAt = &expiresAt.Time
	}

	return account, nil
}

// AuthenticateAccount verifies the email/password pair and returns the
// account without its credential.
func AuthenticateAccount(db *sql.DB, email, password string) (*models.Account, error) {
	account, err := FindAccountByField(db, "email", email, []string{"userId", "email", "firstName", "lastName", "password"})
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, apperr.ErrInvalidCreds
	}

	account.Password = ""
	return account, nil
}

// ChangePassword replaces the stored hash after verifying the old password,
// and clears any pending reset code.
func ChangePassword(db *sql.DB, email, oldPassword, newPassword string) error {
	if email == "" || oldPassword == "" || newPassword == "" {
		return apperr.BadRequest("change password")
	}

	account, err := FindAccountByField(db, "email", email, []string{"email", "password"})
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(oldPassword)); err != nil {
		return apperr.ErrInvalidCreds
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.ErrServer.WithCause(err)
	}

	query := `UPDATE accounts SET password = ?, reset_code = NULL, updated_at = CURRENT_TIMESTAMP WHERE email = ?`
	if _, err := db.Exec(query, string(hash), email); err != nil {
		return apperr.ErrDBConn.WithCause(err)
	}

	logger.Info("Password changed", "email", email)
	return nil
}

// UpdateAccountFields applies field/value pairs positionally. Protected
// fields (userId, password) are silently skipped along with their values.
func UpdateAccountFields(db *sql.DB, email string, fields []string, values []interface{}) error {
	if email == "" || len(fields) == 0 || len(values) == 0 || len(fields) != len(values) {
		return apperr.BadRequest("update user fields")
	}

	setClauses := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(values)+1)

	for i, f := range fields {
		if protectedFields[f] {
			continue
		}
		col, ok := accountColumns[f]
		if !ok {
			return apperr.BadRequest("update user fields")
		}
		setClauses = append(setClauses, col+" = ?")
		args = append(args, values[i])
	}

	if len(setClauses) == 0 {
		return nil
	}

	args = append(args, email)
	query := fmt.Sprintf("UPDATE accounts SET %s, updated_at = CURRENT_TIMESTAMP WHERE email = ?",
		strings.Join(setClauses, ", "))

	if _, err := db.Exec(query, args...); err != nil {
		return apperr.ErrDBConn.WithCause(err)
	}

	logger.Debug("Account fields updated", "email", email, "fields", strings.Join(fields, ","))
	return nil
}

// GeneratePasswordReset stores a fresh opaque reset code expiring in 24
// hours and dispatches it to the address via sender.
func GeneratePasswordReset(db *sql.DB, sender ResetSender, email string) error {
	if email == "" {
		return apperr.Undefined("email")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return apperr.ErrServer.WithCause(err)
	}
	code := hex.EncodeToString(buf)

	expiresAt := time.Now().Add(resetCodeTTL)
	if err := UpdateAccountFields(db, email, []string{"reset_code", "expires_at"}, []interface{}{code, expiresAt}); err != nil {
		return err
	}

	if err := sender.SendPasswordResetEmail(email, code); err != nil {
		logger.Error("Failed to send password reset email", "email", email, "error", err)
		return apperr.ErrServer.WithCause(err)
	}

	logger.Info("Password reset generated", "email", email)
	return nil
}

// GetResetCode returns the pending reset code and its expiry for an account.
func GetResetCode(db *sql.DB, email string) (*models.Account, error) {
	return FindAccountByField(db, "email", email, []string{"reset_code", "expires_at"})
}
