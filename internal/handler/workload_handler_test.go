package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-cms-api/internal/dto"
	"github.com/noah-isme/campus-cms-api/pkg/jobs"
)

type workloadServiceMock struct {
	report  *dto.WorkloadReport
	payload []byte
	ctype   string
	err     error
	query   dto.WorkloadQuery
}

func (m *workloadServiceMock) Report(ctx context.Context, query dto.WorkloadQuery) (*dto.WorkloadReport, error) {
	m.query = query
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *workloadServiceMock) Export(ctx context.Context, query dto.WorkloadQuery, format string) ([]byte, string, error) {
	m.query = query
	if m.err != nil {
		return nil, "", m.err
	}
	return m.payload, m.ctype, nil
}

type enqueuerMock struct {
	jobs []jobs.Job
	err  error
}

func (m *enqueuerMock) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func TestWorkloadHandlerReport(t *testing.T) {
	svc := &workloadServiceMock{report: &dto.WorkloadReport{Semester: 3, AcademicYear: "2025-2026"}}
	handler := NewWorkloadHandler(svc, &enqueuerMock{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/workloads?semester=3&academicYear=2025-2026", nil)
	c.Request = req

	handler.Report(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, svc.query.Semester)
	assert.Equal(t, "2025-2026", svc.query.AcademicYear)
}

func TestWorkloadHandlerReportBadSemester(t *testing.T) {
	handler := NewWorkloadHandler(&workloadServiceMock{}, &enqueuerMock{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/workloads?semester=three", nil)
	c.Request = req

	handler.Report(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkloadHandlerRecalculateEnqueues(t *testing.T) {
	queue := &enqueuerMock{}
	handler := NewWorkloadHandler(&workloadServiceMock{}, queue)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.WorkloadQuery{Semester: 3, AcademicYear: "2025-2026"})
	req, _ := http.NewRequest(http.MethodPost, "/workloads/recalculate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Recalculate(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, RecalcJobType, queue.jobs[0].Type)

	query, ok := queue.jobs[0].Payload.(dto.WorkloadQuery)
	require.True(t, ok)
	assert.Equal(t, 3, query.Semester)
}

func TestWorkloadHandlerRecalculateRejectsBadPeriod(t *testing.T) {
	queue := &enqueuerMock{}
	handler := NewWorkloadHandler(&workloadServiceMock{}, queue)

	cases := []dto.WorkloadQuery{
		{Semester: 9, AcademicYear: "2025-2026"},
		{Semester: 3},
	}
	for _, tc := range cases {
		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body, _ := json.Marshal(tc)
		req, _ := http.NewRequest(http.MethodPost, "/workloads/recalculate", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req

		handler.Recalculate(c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Empty(t, queue.jobs)
}

func TestWorkloadHandlerExport(t *testing.T) {
	svc := &workloadServiceMock{payload: []byte("Faculty,Courses\n"), ctype: "text/csv"}
	handler := NewWorkloadHandler(svc, &enqueuerMock{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/workloads/export?semester=3&academicYear=2025-2026&format=csv", nil)
	c.Request = req

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "workloads-3-2025-2026.csv")
}
