package handler

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pinmap/internal/app"
	"pinmap/internal/transport/http/middleware"
	"pinmap/internal/transport/http/response"
)

type PinHandler struct {
	pinService *app.PinService
}

// CreatePinRequest keeps rating raw so a fractional or quoted value is
// reported as a rating error rather than a generic decode failure.
// Username is optional here: with a token the author comes from the claims.
type CreatePinRequest struct {
	Username string          `json:"username"`
	Title    string          `json:"title" binding:"required"`
	Desc     string          `json:"desc" binding:"required"`
	Rating   json.RawMessage `json:"rating" binding:"required"`
	Lat      *float64        `json:"lat" binding:"required"`
	Long     *float64        `json:"long" binding:"required"`
}

func NewPinHandler(pinService *app.PinService) *PinHandler {
	return &PinHandler{pinService: pinService}
}

func (h *PinHandler) List(c *gin.Context) {
	pins, err := h.pinService.ListPins(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "list pins failed")
		return
	}
	response.OK(c, pins)
}

func (h *PinHandler) Create(c *gin.Context) {
	var req CreatePinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}

	author, ok := resolveAuthor(c, req.Username)
	if !ok {
		return
	}

	rating, ok := parseRating(req.Rating)
	if !ok {
		response.Validation(c, "rating", "rating must be an integer between 1 and 5")
		return
	}

	pin, err := h.pinService.CreatePin(c.Request.Context(), app.CreatePinInput{
		Username: author,
		Title:    req.Title,
		Desc:     req.Desc,
		Rating:   rating,
		Lat:      *req.Lat,
		Long:     *req.Long,
	})
	if err != nil {
		writeServiceError(c, err, "create pin failed")
		return
	}

	response.Created(c, pin)
}

// resolveAuthor picks the pin author. An authenticated caller is always the
// author; a body username naming someone else is refused.
func resolveAuthor(c *gin.Context, bodyUsername string) (string, bool) {
	tokenUsername := c.GetString(middleware.ContextUsernameKey)
	if tokenUsername == "" {
		return bodyUsername, true
	}
	if claimed := strings.TrimSpace(bodyUsername); claimed != "" && claimed != tokenUsername {
		response.Error(c, http.StatusForbidden, response.CodeAuthorMismatch, response.ReasonAuthorMismatch,
			"username does not match the authenticated user")
		return "", false
	}
	return tokenUsername, true
}

// parseRating accepts integral JSON numbers, including forms like 4.0.
// Strings such as "5" and null are refused.
func parseRating(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, false
	}
	if n, err := num.Int64(); err == nil {
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
