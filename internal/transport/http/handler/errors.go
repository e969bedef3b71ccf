package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"pinmap/internal/app"
	"pinmap/internal/transport/http/response"
)

// writeServiceError maps service errors onto the API error envelope.
// fallback is the message used for unexpected errors.
func writeServiceError(c *gin.Context, err error, fallback string) {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Validation(c, verr.Field, verr.Message)
	case errors.Is(err, app.ErrInvalidInput):
		response.Validation(c, "", err.Error())
	case errors.Is(err, app.ErrUsernameExists):
		response.Error(c, http.StatusBadRequest, response.CodeUsernameExists, response.ReasonDuplicateUsername, err.Error())
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, response.ReasonInvalidCredentials, err.Error())
	case errors.Is(err, app.ErrStoreUnavailable):
		slog.ErrorContext(c.Request.Context(), fallback, "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeStoreUnavailable, response.ReasonStoreUnavailable, fallback)
	default:
		slog.ErrorContext(c.Request.Context(), fallback, "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, response.ReasonInternal, fallback)
	}
}

// invalidPayload reports a bind failure. Binding rule failures keep the
// offending field so clients can highlight it. Decode errors carry none.
func invalidPayload(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		response.Validation(c, fe.Field(), bindingMessage(fe))
		return
	}
	response.Validation(c, "", "invalid request payload")
}

func bindingMessage(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return fmt.Sprintf("%s is required", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

var registerFieldNames sync.Once

// UseJSONFieldNames makes binding errors name fields by their json tag,
// so "lat" is reported rather than "Lat".
func UseJSONFieldNames() {
	registerFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
}
