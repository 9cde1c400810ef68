package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"wardrobe/internal/apperr"
	"wardrobe/internal/database"
	"wardrobe/internal/logger"

	"github.com/gin-gonic/gin"
)

type forgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

func handleForgotPassword(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	svc := getServices(c)

	var req forgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil || req.Email == "" {
		respondError(c, apperr.BadRequest("start a password reset"))
		return
	}

	if err := database.GeneratePasswordReset(db, svc.Email, req.Email); err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Password reset initiated", "email", req.Email)
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

type resetPasswordRequest struct {
	Email       string `json:"email" form:"email"`
	Code        string `json:"code" form:"code"`
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

func handleResetPassword(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	var req resetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, apperr.BadRequest("reset a password"))
		return
	}
	if req.Email == "" || req.Code == "" || req.OldPassword == "" || req.NewPassword == "" {
		respondError(c, apperr.BadRequest("reset a password"))
		return
	}

	account, err := database.GetResetCode(db, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	// The code is single use and time boxed. A stale or wrong code looks
	// the same to the caller as bad credentials.
	if account.ResetCode == nil || *account.ResetCode != req.Code {
		respondError(c, apperr.ErrInvalidCreds)
		return
	}
	if account.ResetExpiresAt != nil && time.Now().After(*account.ResetExpiresAt) {
		respondError(c, apperr.ErrInvalidCreds)
		return
	}

	if err := database.ChangePassword(db, req.Email, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Password reset completed", "email", req.Email)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully changed user password"})
}
