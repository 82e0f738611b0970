// controllers/admin_submission.go
package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"contact-intake-api/middleware"
	"contact-intake-api/models"
	"contact-intake-api/services"

	"github.com/gin-gonic/gin"
)

// ListSubmissions handles GET /api/admin/submissions.
// Optional query: status (filters the page only), limit (1-100).
func (sc *SubmissionController) ListSubmissions(c *gin.Context) {
	opts := services.ListOptions{Status: models.Status(strings.TrimSpace(c.Query("status")))}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respondError(c, sc.logger, keyMessage, &services.ValidationError{Message: "Parámetro limit inválido"}, "")
			return
		}
		opts.Limit = limit
	}

	summary, err := sc.submissions.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, sc.logger, keyMessage, err, "Error al cargar las solicitudes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"total":       summary.Total,
		"completed":   summary.Completed,
		"pending":     summary.Pending,
		"urgent":      summary.Urgent,
		"submissions": summary.Submissions,
	})
}

// GetSubmission handles GET /api/admin/submissions/:id.
func (sc *SubmissionController) GetSubmission(c *gin.Context) {
	sub, err := sc.submissions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, sc.logger, keyMessage, err, "Error al cargar la solicitud")
		return
	}

	body, err := successBody(sub)
	if err != nil {
		respondError(c, sc.logger, keyMessage, err, "Error al cargar la solicitud")
		return
	}
	c.JSON(http.StatusOK, body)
}

// CompleteSubmission handles PUT /api/admin/submissions/:id/complete.
func (sc *SubmissionController) CompleteSubmission(c *gin.Context) {
	if err := sc.submissions.Complete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, sc.logger, keyMessage, err, "Error al actualizar la solicitud")
		return
	}
	sc.logger.InfoContext(c.Request.Context(), "admin completed submission",
		"id", c.Param("id"), "admin", adminName(c))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Solicitud actualizada correctamente"})
}

// DeleteSubmission handles DELETE /api/admin/submissions/:id.
func (sc *SubmissionController) DeleteSubmission(c *gin.Context) {
	if err := sc.submissions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, sc.logger, keyMessage, err, "Error al eliminar la solicitud")
		return
	}
	sc.logger.InfoContext(c.Request.Context(), "admin deleted submission",
		"id", c.Param("id"), "admin", adminName(c))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Solicitud eliminada correctamente"})
}

// adminName is the username of the verified token, if any.
func adminName(c *gin.Context) string {
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		return claims.Username
	}
	return ""
}
