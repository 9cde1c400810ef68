package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"wardrobe/internal/apperr"
	"wardrobe/internal/logger"
	"wardrobe/internal/models"

	"github.com/gin-gonic/gin"
)

// Form controls that ride along with the clothing fields but describe
// nothing about the garment itself.
var ignoredFormKeys = map[string]bool{
	"submit":     true,
	"csrf_token": true,
	"UserId":     true,
}

func handleGetWardrobe(c *gin.Context) {
	svc := getServices(c)

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		respondError(c, apperr.BadRequest("retrieve a wardrobe"))
		return
	}

	w, err := svc.Wardrobe.GetWardrobe(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !w.Exists {
		c.JSON(http.StatusOK, gin.H{"error": "There are no items in this wardrobe."})
		return
	}
	c.JSON(http.StatusOK, w)
}

func handleAddClothing(c *gin.Context) {
	svc := getServices(c)

	var (
		userID int
		fields models.ItemFields
		err    error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		userID, fields, err = parseClothingForm(c)
	} else {
		userID, fields, err = parseClothingJSON(c)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := svc.Wardrobe.AddItem(c.Request.Context(), userID, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	// Image upload is best effort. The item is already saved, so a
	// storage failure only loses the picture.
	if fileHeader, ferr := c.FormFile("fileToUpload"); ferr == nil {
		f, ferr := fileHeader.Open()
		if ferr != nil {
			logger.Warn("Failed to open uploaded image", "error", ferr)
		} else {
			contentType := fileHeader.Header.Get("Content-Type")
			if uerr := svc.Images.PutImage(c.Request.Context(), item.ID, contentType, f); uerr != nil {
				logger.Warn("Failed to store clothing image", "error", uerr)
			}
			f.Close()
		}
	}

	c.JSON(http.StatusOK, item)
}

func parseClothingForm(c *gin.Context) (int, models.ItemFields, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return 0, nil, apperr.BadRequest("save a clothing item")
	}

	userID, err := strconv.Atoi(strings.TrimSpace(firstValue(form.Value["UserId"])))
	if err != nil {
		return 0, nil, apperr.BadRequest("save a clothing item")
	}

	fields := make(models.ItemFields)
	for key, values := range form.Value {
		if ignoredFormKeys[key] || len(values) == 0 {
			continue
		}
		if len(values) == 1 {
			fields[key] = models.StringValue(values[0])
		} else {
			fields[key] = models.ListValue(values)
		}
	}
	return userID, fields, nil
}

func parseClothingJSON(c *gin.Context) (int, models.ItemFields, error) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		return 0, nil, apperr.BadRequest("save a clothing item")
	}

	var userID int
	if idRaw, ok := raw["UserId"]; ok {
		if err := json.Unmarshal(idRaw, &userID); err != nil {
			return 0, nil, apperr.BadRequest("save a clothing item")
		}
	}

	fields := make(models.ItemFields)
	for key, value := range raw {
		if ignoredFormKeys[key] {
			continue
		}
		var fv models.FieldValue
		if err := json.Unmarshal(value, &fv); err != nil {
			return 0, nil, apperr.New(apperr.Validation, err.Error())
		}
		fields[key] = fv
	}
	return userID, fields, nil
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func handleUpdateClothing(c *gin.Context) {
	svc := getServices(c)
	userID := c.MustGet("user_id").(int)
	itemID := c.Param("id")

	var updates models.ItemFields
	if err := c.ShouldBindJSON(&updates); err != nil {
		respondError(c, apperr.BadRequest("update a clothing item"))
		return
	}
	// The identifier never changes once assigned.
	delete(updates, "ID")

	item, err := svc.Wardrobe.UpdateItem(c.Request.Context(), userID, itemID, updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func handleDeleteClothing(c *gin.Context) {
	svc := getServices(c)
	userID := c.MustGet("user_id").(int)
	itemID := c.Param("id")

	item, err := svc.Wardrobe.DeleteItem(c.Request.Context(), userID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func handleClothingImage(c *gin.Context) {
	svc := getServices(c)

	body, contentType, length, err := svc.Images.GetImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, length, contentType, body, nil)
}

func handleRecommendation(c *gin.Context) {
	svc := getServices(c)
	sessionUserID := c.MustGet("user_id").(int)

	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil || userID != sessionUserID {
		respondError(c, apperr.ErrInvalidCreds)
		return
	}

	rec, err := svc.Recommender.Recommend(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
