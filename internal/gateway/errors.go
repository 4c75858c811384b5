package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/strubloid/neotalent-sub000/internal/apperr"
	"github.com/strubloid/neotalent-sub000/internal/models"
)

// ErrorHandler is the single boundary translating errors pushed onto the
// gin context into the uniform error envelope. Service errors are mapped
// exactly once, here; handlers only attach them with c.Error.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := buildErrorResponse(err, production)

		if status >= http.StatusInternalServerError {
			log.Printf(`{"level":"error","message":"Request failed","path":"%s","error":"%v"}`,
				c.Request.URL.Path, err)
		}

		c.JSON(status, body)
	}
}

// buildErrorResponse maps one error to its HTTP status and envelope.
func buildErrorResponse(err error, production bool) (int, models.ErrorResponse) {
	resp := models.ErrorResponse{
		Success:   false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var (
		validationErr *apperr.ValidationError
		authErr       *apperr.AuthError
		conflictErr   *apperr.ConflictError
		upstreamErr   *apperr.UpstreamError
		maxBytesErr   *http.MaxBytesError
		syntaxErr     *json.SyntaxError
		typeErr       *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &validationErr):
		resp.Error = "Validation failed"
		details := validationErr.Details
		if len(details) == 0 {
			details = []string{validationErr.Message}
		}
		resp.Details = details
		return http.StatusBadRequest, resp

	case errors.As(err, &authErr):
		resp.Error = authErr.Message
		status := authErr.Status
		if status == 0 {
			status = http.StatusUnauthorized
		}
		return status, resp

	case errors.As(err, &conflictErr):
		resp.Error = conflictErr.Message
		return http.StatusConflict, resp

	case errors.As(err, &upstreamErr):
		resp.Error = upstreamErr.Message
		resp.Code = upstreamErr.Code
		status := upstreamErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if !production && upstreamErr.Err != nil {
			resp.Details = map[string]string{"message": upstreamErr.Err.Error()}
		}
		return status, resp

	case errors.As(err, &maxBytesErr):
		resp.Error = "Request body too large"
		return http.StatusRequestEntityTooLarge, resp

	case errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF):
		resp.Error = "Invalid JSON in request body"
		return http.StatusBadRequest, resp

	default:
		resp.Error = "Internal server error"
		if !production {
			resp.Details = map[string]string{"message": err.Error()}
		}
		return http.StatusInternalServerError, resp
	}
}

// BodyLimit caps the request body size so oversized payloads surface as
// *http.MaxBytesError and map to 413.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
