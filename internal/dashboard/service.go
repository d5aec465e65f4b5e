// Package dashboard answers the wage explorer's queries over a loaded
// snapshot: wage tables with statistics, salary classification, and region
// lookups. It is shared by the HTTP API and the wagectl terminal tool.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/h1b-wage-explorer/internal/dataset"
	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
	"github.com/couchcryptid/h1b-wage-explorer/internal/observability"
)

// Query kinds, used as metric labels and query event keys.
const (
	KindWages     = "wages"
	KindClassify  = "classify"
	KindRegionGeo = "region_geo"
)

// ErrTooManyRows rejects county-level detail over an unbounded record set.
var ErrTooManyRows = errors.New("too many rows for county detail; select a job role")

// Options tune a Service. Zero values select the defaults.
type Options struct {
	PageSize      int
	MaxDetailRows int
	// Geocoder resolves region centroids. Nil disables region lookups.
	Geocoder domain.Geocoder
	// Publisher receives a QueryEvent per answered query. Nil disables events.
	Publisher   EventPublisher
	EventBuffer int
}

const (
	defaultPageSize      = 100
	defaultMaxDetailRows = 100000
	defaultEventBuffer   = 256
)

// Service answers dashboard queries over one immutable snapshot.
type Service struct {
	snapshot *dataset.Snapshot
	engine   *domain.Engine
	geocoder domain.Geocoder
	events   *eventQueue
	logger   *slog.Logger
	metrics  *observability.Metrics

	pageSize      int
	maxDetailRows int
}

// New creates a Service over snapshot.
func New(snapshot *dataset.Snapshot, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.MaxDetailRows <= 0 {
		opts.MaxDetailRows = defaultMaxDetailRows
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}

	s := &Service{
		snapshot:      snapshot,
		engine:        domain.NewEngine(snapshot.Records),
		geocoder:      opts.Geocoder,
		logger:        logger,
		metrics:       metrics,
		pageSize:      opts.PageSize,
		maxDetailRows: opts.MaxDetailRows,
	}
	if opts.Publisher != nil {
		s.events = newEventQueue(opts.Publisher, opts.EventBuffer, logger, metrics)
	}

	metrics.SnapshotRecords.Set(float64(s.engine.Len()))
	metrics.DuplicateRecords.Set(float64(snapshot.Duplicates))
	if opts.Geocoder != nil {
		metrics.GeocodeEnabled.Set(1)
	} else {
		metrics.GeocodeEnabled.Set(0)
	}
	return s
}

// CheckReadiness returns nil once a non-empty snapshot is installed.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.engine.Len() == 0 {
		return errors.New("wage snapshot is empty")
	}
	return nil
}

// Run publishes query events until ctx is cancelled. It returns immediately
// when no publisher is configured.
func (s *Service) Run(ctx context.Context) error {
	if s.events == nil {
		return nil
	}
	return s.events.run(ctx)
}

// DatasetInfo describes the installed snapshot.
type DatasetInfo struct {
	Source     string    `json:"source"`
	Format     string    `json:"format"`
	Records    int       `json:"records"`
	Duplicates int       `json:"duplicates"`
	JobRoles   int       `json:"job_roles"`
	States     int       `json:"states"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Dataset reports where the snapshot came from and its size.
func (s *Service) Dataset() DatasetInfo {
	return DatasetInfo{
		Source:     s.snapshot.Source,
		Format:     string(s.snapshot.Format),
		Records:    s.engine.Len(),
		Duplicates: s.snapshot.Duplicates,
		JobRoles:   len(s.engine.JobRoles()),
		States:     len(s.engine.States()),
		LoadedAt:   s.snapshot.LoadedAt,
	}
}

// JobRoles returns the sorted job roles in the snapshot.
func (s *Service) JobRoles() []string {
	return s.engine.JobRoles()
}

// States returns the sorted state abbreviations in the snapshot.
func (s *Service) States() []string {
	return s.engine.States()
}

// WageRow is one wage record with its hourly equivalent.
type WageRow struct {
	domain.WageRecord
	HourlyWage float64 `json:"hourly_wage"`
}

// WageView is the answer to a wage query.
type WageView struct {
	Detail Detail `json:"detail"`
	// Total is the number of matching records; Rows holds at most Limit of them.
	Total     int                      `json:"total"`
	Truncated bool                     `json:"truncated"`
	Rows      []WageRow                `json:"rows"`
	Stats     domain.AggregateResult   `json:"stats"`
	States    []domain.StateAggregate  `json:"states"`
	Counties  []domain.CountyAggregate `json:"counties,omitempty"`
}

// Wages filters the snapshot and summarizes the matches. County detail
// without a job role is rejected with ErrTooManyRows when more than
// MaxDetailRows records match.
func (s *Service) Wages(ctx context.Context, req WageRequest) (WageView, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		s.observe(KindWages, "invalid", start)
		return WageView{}, err
	}
	if err := ctx.Err(); err != nil {
		s.observe(KindWages, "error", start)
		return WageView{}, err
	}
	if req.Detail == "" {
		req.Detail = DetailState
	}

	matched := s.engine.Filter(req.Criteria)
	s.metrics.ResultRows.Observe(float64(len(matched)))

	if req.Detail == DetailCounty && req.Criteria.JobRole == "" && len(matched) > s.maxDetailRows {
		s.observe(KindWages, "rejected", start)
		s.logger.Info("county detail rejected", "rows", len(matched), "max_detail_rows", s.maxDetailRows)
		return WageView{}, fmt.Errorf("%w: %d rows exceed %d", ErrTooManyRows, len(matched), s.maxDetailRows)
	}

	limit := s.limit(req.Limit)
	view := WageView{
		Detail:    req.Detail,
		Total:     len(matched),
		Truncated: len(matched) > limit,
		Rows:      make([]WageRow, 0, min(limit, len(matched))),
		Stats:     domain.Aggregate(matched),
		States:    domain.AggregateByState(matched),
	}
	for _, rec := range matched[:min(limit, len(matched))] {
		view.Rows = append(view.Rows, WageRow{WageRecord: rec, HourlyWage: rec.HourlyWage()})
	}
	if req.Detail == DetailCounty {
		view.Counties = domain.AggregateByCounty(matched)
	}

	s.observe(KindWages, "ok", start)
	s.publish(domain.QueryEvent{
		Kind:        KindWages,
		JobRole:     req.Criteria.JobRole,
		WageLevel:   levelLabel(req.Criteria.WageLevel),
		State:       req.Criteria.Region.State,
		County:      req.Criteria.Region.County,
		ResultCount: len(matched),
		QueriedAt:   domain.Now(),
	})
	return view, nil
}

// ClassificationView is the answer to a classification query.
type ClassificationView struct {
	AnnualSalary float64 `json:"annual_salary"`
	HourlySalary float64 `json:"hourly_salary"`
	// Total is the number of classified regions; Regions holds at most Limit.
	Total        int                          `json:"total"`
	Truncated    bool                         `json:"truncated"`
	Regions      []domain.RegionClassification `json:"regions"`
	Distribution []domain.LevelShare           `json:"distribution"`
	States       []domain.StateClassification  `json:"states"`
}

// Classify ranks the salary against the wage levels of every job role and
// region matching the request.
func (s *Service) Classify(ctx context.Context, req ClassifyRequest) (ClassificationView, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		s.observe(KindClassify, "invalid", start)
		return ClassificationView{}, err
	}
	if err := ctx.Err(); err != nil {
		s.observe(KindClassify, "error", start)
		return ClassificationView{}, err
	}

	salary := req.AnnualSalary()
	criteria := domain.FilterCriteria{JobRole: req.Criteria.JobRole, Region: req.Criteria.Region}
	matched := s.engine.Filter(criteria)
	s.metrics.ResultRows.Observe(float64(len(matched)))

	classified := domain.ClassifyByRegion(salary, matched)
	limit := s.limit(req.Limit)
	view := ClassificationView{
		AnnualSalary: salary,
		HourlySalary: domain.AnnualToHourly(salary),
		Total:        len(classified),
		Truncated:    len(classified) > limit,
		Regions:      classified[:min(limit, len(classified))],
		Distribution: domain.Distribution(classified),
		States:       domain.ClassificationByState(classified),
	}

	s.observe(KindClassify, "ok", start)
	s.publish(domain.QueryEvent{
		Kind:         KindClassify,
		JobRole:      criteria.JobRole,
		State:        criteria.Region.State,
		County:       criteria.Region.County,
		AnnualSalary: salary,
		ResultCount:  len(classified),
		QueriedAt:    domain.Now(),
	})
	return view, nil
}

// LocateRegion returns the map centroid of a region. It fails with
// domain.ErrGeocodingDisabled when no geocoder is configured.
func (s *Service) LocateRegion(ctx context.Context, region domain.Region) (domain.GeocodingResult, error) {
	start := time.Now()
	result, err := domain.LocateRegion(ctx, region, s.geocoder, s.logger)

	var invalid *domain.InvalidCriteriaError
	switch {
	case err == nil:
		s.observe(KindRegionGeo, "ok", start)
	case errors.As(err, &invalid):
		s.observe(KindRegionGeo, "invalid", start)
	case errors.Is(err, domain.ErrGeocodingDisabled), errors.Is(err, domain.ErrRegionNotFound):
		s.observe(KindRegionGeo, "rejected", start)
	default:
		s.observe(KindRegionGeo, "error", start)
	}
	return result, err
}

func (s *Service) limit(requested int) int {
	if requested <= 0 {
		return s.pageSize
	}
	return min(requested, s.maxDetailRows)
}

func (s *Service) observe(kind, outcome string, start time.Time) {
	s.metrics.QueriesTotal.WithLabelValues(kind, outcome).Inc()
	s.metrics.QueryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func (s *Service) publish(event domain.QueryEvent) {
	if s.events != nil {
		s.events.enqueue(event)
	}
}

func levelLabel(l domain.WageLevel) string {
	if l == domain.Unclassified {
		return ""
	}
	return l.String()
}
