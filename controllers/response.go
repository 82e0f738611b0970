package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"contact-intake-api/middleware"
	"contact-intake-api/services"
	"contact-intake-api/store"

	"github.com/gin-gonic/gin"
)

const (
	// keyMessage is the error key used by the admin and auth endpoints.
	keyMessage = "message"
	// keyError is the error key used by the public intake endpoint.
	keyError = "error"
)

const msgNotFound = "Solicitud no encontrada"

// statusForError maps a service or store error to an HTTP status.
func statusForError(err error) int {
	var ve *services.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidToken):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {success:false, <key>: message}. Server errors are
// logged and answered with fallback so internals never reach the client.
func respondError(c *gin.Context, logger *slog.Logger, key string, err error, fallback string) {
	status := statusForError(err)
	message := fallback

	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		message = ve.Message
	case status == http.StatusNotFound:
		message = msgNotFound
	case status == http.StatusRequestEntityTooLarge:
		message = "Payload too large"
	case status >= http.StatusInternalServerError:
		logger.ErrorContext(c.Request.Context(), "request failed",
			"request_id", middleware.RequestIDFromContext(c),
			"path", c.Request.URL.Path,
			"error", err,
		)
	}

	c.JSON(status, gin.H{"success": false, key: message})
}

// readFields decodes a flat JSON object or a url-encoded form into a field map.
func readFields(c *gin.Context) (map[string]any, error) {
	contentType := c.ContentType()
	if contentType == "application/x-www-form-urlencoded" {
		if err := c.Request.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		fields := make(map[string]any, len(c.Request.PostForm))
		for k, vs := range c.Request.PostForm {
			if len(vs) > 0 {
				fields[k] = vs[0]
			}
		}
		return fields, nil
	}

	body, err := c.GetRawData()
	if err != nil {
		return nil, bodyError(err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, bodyError(err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return &services.ValidationError{Message: "Formato de solicitud inválido"}
}

// successBody merges v's JSON object form with success:true.
func successBody(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	body := map[string]any{}
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("flatten response: %w", err)
	}
	body["success"] = true
	return body, nil
}
