package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"wardrobe/internal/apperr"
	"wardrobe/internal/database"

	"github.com/gin-gonic/gin"
)

var profileFields = []string{"userId", "firstName", "lastName", "email", "dob"}

func handleProfile(c *gin.Context) {
	db := c.MustGet("db").(*sql.DB)

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		respondError(c, apperr.Undefined("UserId"))
		return
	}

	account, err := database.FindAccountByField(db, "userId", userID, profileFields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}
