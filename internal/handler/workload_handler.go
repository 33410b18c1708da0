package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/campus-cms-api/internal/dto"
	appErrors "github.com/noah-isme/campus-cms-api/pkg/errors"
	"github.com/noah-isme/campus-cms-api/pkg/jobs"
	"github.com/noah-isme/campus-cms-api/pkg/response"
)

// RecalcJobType identifies workload recalculation jobs on the queue.
const RecalcJobType = "workload.recalculate"

type workloadService interface {
	Report(ctx context.Context, query dto.WorkloadQuery) (*dto.WorkloadReport, error)
	Export(ctx context.Context, query dto.WorkloadQuery, format string) ([]byte, string, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// WorkloadHandler exposes the faculty workload report endpoints.
type WorkloadHandler struct {
	service workloadService
	queue   jobEnqueuer
}

// NewWorkloadHandler constructs the handler.
func NewWorkloadHandler(service workloadService, queue jobEnqueuer) *WorkloadHandler {
	return &WorkloadHandler{service: service, queue: queue}
}

func workloadQueryFromRequest(c *gin.Context) (dto.WorkloadQuery, error) {
	semester, err := strconv.Atoi(c.Query("semester"))
	if err != nil {
		return dto.WorkloadQuery{}, appErrors.Clone(appErrors.ErrValidation, "semester must be an integer")
	}
	return dto.WorkloadQuery{
		Semester:     semester,
		AcademicYear: c.Query("academicYear"),
	}, nil
}

// Report godoc
// @Summary Faculty workload report for a period
// @Tags Workloads
// @Produce json
// @Param semester query int true "Semester (1-8)"
// @Param academicYear query string true "Academic year, e.g. 2025-2026"
// @Success 200 {object} response.Envelope
// @Router /workloads [get]
func (h *WorkloadHandler) Report(c *gin.Context) {
	query, err := workloadQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.service.Report(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Recalculate godoc
// @Summary Queue an asynchronous workload recalculation
// @Tags Workloads
// @Accept json
// @Produce json
// @Param payload body dto.WorkloadQuery true "Period to recalculate"
// @Success 202 {object} response.Envelope
// @Router /workloads/recalculate [post]
func (h *WorkloadHandler) Recalculate(c *gin.Context) {
	// Binding tags validate the period before the job is queued.
	var query dto.WorkloadQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if h.queue == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "workload queue unavailable"))
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    RecalcJobType,
		Payload: query,
	}
	if err := h.queue.Enqueue(job); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue recalculation"))
		return
	}
	response.Accepted(c, gin.H{"jobId": job.ID})
}

// Export godoc
// @Summary Download the workload report as CSV or PDF
// @Tags Workloads
// @Produce text/csv
// @Produce application/pdf
// @Param semester query int true "Semester (1-8)"
// @Param academicYear query string true "Academic year"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} byte
// @Router /workloads/export [get]
func (h *WorkloadHandler) Export(c *gin.Context) {
	query, err := workloadQueryFromRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.service.Export(c.Request.Context(), query, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("workloads-%d-%s.%s", query.Semester, query.AcademicYear, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
