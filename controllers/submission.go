// controllers/submission.go
package controllers

import (
	"log/slog"
	"net/http"

	"contact-intake-api/services"

	"github.com/gin-gonic/gin"
)

const msgSubmitted = "¡Gracias por tu solicitud! Nos pondremos en contacto contigo pronto."

// SubmissionController serves the public intake endpoint and the admin
// submission endpoints.
type SubmissionController struct {
	submissions *services.SubmissionService
	logger      *slog.Logger
}

func NewSubmissionController(submissions *services.SubmissionService, logger *slog.Logger) *SubmissionController {
	return &SubmissionController{submissions: submissions, logger: logger}
}

// SubmitForm handles POST /api/submit-form.
func (sc *SubmissionController) SubmitForm(c *gin.Context) {
	fields, err := readFields(c)
	if err != nil {
		respondError(c, sc.logger, keyError, err, "")
		return
	}

	id, err := sc.submissions.Submit(c.Request.Context(), fields)
	if err != nil {
		respondError(c, sc.logger, keyError, err,
			"Error al procesar tu solicitud. Por favor, inténtalo de nuevo más tarde.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      msgSubmitted,
		"submissionId": id,
	})
}
