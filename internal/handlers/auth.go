package handlers

import (
	"database/sql"
	"net/http"

	"wardrobe/internal/apperr"
	"wardrobe/internal/config"
	"wardrobe/internal/database"
	"wardrobe/internal/logger"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	FirstName string `json:"firstName" form:"firstName"`
	LastName  string `json:"lastName" form:"lastName"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	DOB       string `json:"dob" form:"dob"`
}

func handleRegister(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, apperr.BadRequest("register a user"))
		return
	}

	var dob *string
	if req.DOB != "" {
		dob = &req.DOB
	}

	account, err := database.CreateAccount(db, req.FirstName, req.LastName, req.Email, req.Password, dob)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Account registered", "userid", account.UserID)
	c.JSON(http.StatusOK, account)
}

type loginRequest struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	NoRedirect string `json:"NO_REDIRECT" form:"NO_REDIRECT"`
}

func handleLogin(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)
	cfg := c.MustGet("config").(*config.Config)

	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, apperr.BadRequest("log in"))
		return
	}

	account, err := database.AuthenticateAccount(db, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := database.CreateSession(db, account.UserID, cfg.SessionDuration)
	if err != nil {
		logger.Error("Failed to create session", "error", err)
		respondError(c, apperr.ErrServer)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("session_id", session.ID, int(cfg.SessionDuration.Seconds()), "/", "", !cfg.IsDevelopment(), true)

	logger.Info("User logged in", "userid", account.UserID)

	if req.NoRedirect != "" {
		c.String(http.StatusOK, "Authenticated")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func handleLogout(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	sessionCookie, err := c.Cookie("session_id")
	if err == nil {
		if err := database.DeleteSession(db, sessionCookie); err != nil {
			logger.Warn("Failed to delete session", "error", err)
		}
	}

	c.SetCookie("session_id", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
