package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-cms-api/internal/dto"
	"github.com/noah-isme/campus-cms-api/internal/models"
	"github.com/noah-isme/campus-cms-api/internal/repository"
	"github.com/noah-isme/campus-cms-api/pkg/clock"
	"github.com/noah-isme/campus-cms-api/pkg/config"
	appErrors "github.com/noah-isme/campus-cms-api/pkg/errors"
	"github.com/noah-isme/campus-cms-api/pkg/export"
)

type workloadStore interface {
	AggregateByFaculty(ctx context.Context) ([]repository.WorkloadAggregate, error)
	Upsert(ctx context.Context, record *models.WorkloadRecord) error
	ListByPeriod(ctx context.Context, semester int, academicYear string) ([]models.WorkloadRecord, error)
}

// WorkloadService aggregates faculty teaching loads per semester. Reports are
// recalculated asynchronously and served from cache.
type WorkloadService struct {
	records   workloadStore
	cache     *CacheService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	cfg       config.WorkloadConfig
	validator *validator.Validate
	clock     clock.Clock
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewWorkloadService wires the workload reporting dependencies.
func NewWorkloadService(
	records workloadStore,
	cache *CacheService,
	cfg config.WorkloadConfig,
	validate *validator.Validate,
	clk clock.Clock,
	logger *zap.Logger,
	metrics *MetricsService,
) *WorkloadService {
	if validate == nil {
		validate = validator.New()
	}
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OverloadHours <= 0 {
		cfg.OverloadHours = 20
	}
	if cfg.UnderloadHours < 0 {
		cfg.UnderloadHours = 0
	}
	return &WorkloadService{
		records:   records,
		cache:     cache,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		cfg:       cfg,
		validator: validate,
		clock:     clk,
		logger:    logger,
		metrics:   metrics,
	}
}

func workloadCacheKey(semester int, academicYear string) string {
	return fmt.Sprintf("workloads:%d:%s", semester, academicYear)
}

// Classify maps weekly contact hours onto a workload status.
func (s *WorkloadService) Classify(totalHoursWeek int) models.WorkloadStatus {
	switch {
	case totalHoursWeek > s.cfg.OverloadHours:
		return models.WorkloadOverloaded
	case totalHoursWeek < s.cfg.UnderloadHours:
		return models.WorkloadUnderload
	default:
		return models.WorkloadNormal
	}
}

// Recalculate rebuilds the workload records for a period from course data and
// invalidates the cached reports. Runs on the background queue.
func (s *WorkloadService) Recalculate(ctx context.Context, query dto.WorkloadQuery) error {
	if err := s.validator.Struct(query); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workload period")
	}

	aggregates, err := s.records.AggregateByFaculty(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate workloads")
	}

	now := s.clock.Now().UTC()
	for _, agg := range aggregates {
		record := &models.WorkloadRecord{
			FacultyID:      agg.FacultyID,
			FacultyName:    agg.FacultyName,
			Semester:       query.Semester,
			AcademicYear:   query.AcademicYear,
			TotalCourses:   agg.TotalCourses,
			TotalHoursWeek: agg.TotalHoursWeek,
			TotalStudents:  agg.TotalStudents,
			Status:         s.Classify(agg.TotalHoursWeek),
			CalculatedOn:   now,
		}
		if err := s.records.Upsert(ctx, record); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store workload record")
		}
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "workloads:*"); err != nil {
			s.logger.Warn("workload cache invalidation failed", zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordWorkloadRecalculation()
	}
	s.logger.Info("workload recalculation finished",
		zap.Int("semester", query.Semester),
		zap.String("academic_year", query.AcademicYear),
		zap.Int("faculties", len(aggregates)))
	return nil
}

// Report returns the stored workload records for a period, cache first.
func (s *WorkloadService) Report(ctx context.Context, query dto.WorkloadQuery) (*dto.WorkloadReport, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workload period")
	}

	key := workloadCacheKey(query.Semester, query.AcademicYear)
	if s.cache != nil {
		var cached dto.WorkloadReport
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	records, err := s.records.ListByPeriod(ctx, query.Semester, query.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workload records")
	}

	report := &dto.WorkloadReport{
		Semester:     query.Semester,
		AcademicYear: query.AcademicYear,
		GeneratedAt:  s.clock.Now().UTC(),
		Records:      records,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("workload cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return report, nil
}

// Export renders the workload report as CSV or PDF bytes. The returned string
// is the content type for the HTTP layer.
func (s *WorkloadService) Export(ctx context.Context, query dto.WorkloadQuery, format string) ([]byte, string, error) {
	report, err := s.Report(ctx, query)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Faculty", "Courses", "Hours/Week", "Students", "Status"},
	}
	for _, record := range report.Records {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Faculty":    record.FacultyName,
			"Courses":    strconv.Itoa(record.TotalCourses),
			"Hours/Week": strconv.Itoa(record.TotalHoursWeek),
			"Students":   strconv.Itoa(record.TotalStudents),
			"Status":     string(record.Status),
		})
	}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		title := fmt.Sprintf("Faculty Workload - Semester %d %s", report.Semester, report.AcademicYear)
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
