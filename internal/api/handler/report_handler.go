package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

// ReportHandler serves dashboard and report data. Rendering is left to the
// client.
type ReportHandler struct {
	reports ports.ReportService
}

func NewReportHandler(reports ports.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Dashboard handles GET /api/v1/dashboard/summary.
//
// @Summary      Entity counts and grade averages
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.DashboardSummary
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/v1/dashboard/summary [get]
func (h *ReportHandler) Dashboard(c echo.Context) error {
	summary, err := h.reports.DashboardSummary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// GradeReport handles GET /api/v1/reports/grades.
//
// @Summary      Per-student grade report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        course_id  query     string  false  "Restrict to one course"
// @Param        period     query     string  false  "Restrict to one grading period"
// @Success      200        {object}  domain.GradeReport
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Router       /api/v1/reports/grades [get]
func (h *ReportHandler) GradeReport(c echo.Context) error {
	report, err := h.reports.GradeReport(c.Request().Context(), ports.ReportFilter{
		CourseID: strings.TrimSpace(c.QueryParam("course_id")),
		Period:   strings.TrimSpace(c.QueryParam("period")),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
