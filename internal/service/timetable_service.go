package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/AHSANooo/Clashes-Detector/internal/dto"
	"github.com/AHSANooo/Clashes-Detector/internal/models"
	"github.com/AHSANooo/Clashes-Detector/internal/timetable"
	appErrors "github.com/AHSANooo/Clashes-Detector/pkg/errors"
)

const (
	gridCachePrefix  = "grid:"
	gridCachePattern = gridCachePrefix + "*"
)

// GridSource loads the timetable grid document.
type GridSource interface {
	ID() string
	Load(ctx context.Context) (*models.Document, error)
}

// TimetableConfig tunes the timetable service.
type TimetableConfig struct {
	MaxLeaves     int
	SearchTimeout time.Duration
	CacheTTL      time.Duration
	ProposalTTL   time.Duration
}

// TimetableService answers catalog, timetable, clash and optimisation queries
// against the cached grid document.
type TimetableService struct {
	source    GridSource
	engine    *timetable.Engine
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableConfig
	proposals *proposalStore
	fetches   singleflight.Group
}

// NewTimetableService wires the timetable dependencies.
func NewTimetableService(
	source GridSource,
	engine *timetable.Engine,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableConfig,
) *TimetableService {
	if engine == nil {
		engine = timetable.NewEngine(timetable.TimeParser{})
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	return &TimetableService{
		source:    source,
		engine:    engine,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		proposals: newProposalStore(cfg.ProposalTTL),
	}
}

// Document returns the grid, from cache when possible. Cache failures fall
// through to the source; concurrent misses share one fetch. The shared fetch
// ignores the caller's cancellation so one departing request cannot fail the others.
func (s *TimetableService) Document(ctx context.Context) (*models.Document, error) {
	key := gridCachePrefix + s.source.ID()

	var cached models.Document
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	value, err, shared := s.fetches.Do(key, func() (interface{}, error) {
		return s.fetch(context.WithoutCancel(ctx), key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("grid fetch shared", zap.String("key", key))
	}
	return value.(*models.Document), nil
}

func (s *TimetableService) fetch(ctx context.Context, key string) (*models.Document, error) {
	start := time.Now()
	doc, err := s.source.Load(ctx)
	duration := time.Since(start)
	s.metrics.ObserveGridFetch(s.source.ID(), err, duration)
	if err != nil {
		s.logger.Error("grid fetch failed", zap.String("source", s.source.ID()), zap.Error(err))
		return nil, sourceError(err)
	}

	_ = s.cache.Set(ctx, key, doc, s.cfg.CacheTTL)
	s.logger.Info("grid fetched",
		zap.String("source", s.source.ID()),
		zap.Int("sheets", len(doc.Sheets)),
		zap.Duration("duration", duration),
	)
	return doc, nil
}

// Refresh re-reads the grid from the source and replaces the cached copy.
func (s *TimetableService) Refresh(ctx context.Context) error {
	key := gridCachePrefix + s.source.ID()
	_, err, _ := s.fetches.Do(key, func() (interface{}, error) {
		return s.fetch(context.WithoutCancel(ctx), key)
	})
	return err
}

// Ready verifies the grid source can be read.
func (s *TimetableService) Ready(ctx context.Context) error {
	_, err := s.Document(ctx)
	return err
}

// Catalog lists every course, batch and department found in the grid.
func (s *TimetableService) Catalog(ctx context.Context) (*models.Catalog, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	catalog := s.engine.ExtractAllCourses(doc)
	return &catalog, nil
}

// Timetable returns the sessions of the selected courses together with the
// clashes of their normalised form.
func (s *TimetableService) Timetable(ctx context.Context, req dto.TimetableRequest) (*dto.TimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := resolveCourses(s.engine.ExtractAllCourses(doc), req.Courses)
	if err != nil {
		return nil, err
	}

	sessions := s.engine.TimetableForCourses(doc, courses)
	normalized := timetable.FilterValidSessions(sessions)
	clashes := s.engine.DetectClashes(normalized)
	s.metrics.ObserveClashes(len(clashes))

	return &dto.TimetableResponse{
		Courses:       courses,
		Sessions:      sessions,
		Normalized:    normalized,
		Clashes:       clashes,
		ClashMessages: formatClashes(clashes),
	}, nil
}

// BatchSessions returns every section's sessions for one batch. A batch
// missing from the legend yields an empty list.
func (s *TimetableService) BatchSessions(ctx context.Context, batch string) ([]models.Session, error) {
	if err := s.validator.Var(strings.TrimSpace(batch), "required"); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "batch is required")
	}
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.AllSessionsForBatch(doc, batch), nil
}

// Clashes detects clashes among caller supplied sessions, normalising first
// unless the request opts out.
func (s *TimetableService) Clashes(ctx context.Context, req dto.ClashRequest) (*dto.ClashResponse, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid clash payload")
	}
	sessions := s.SessionsFromInput(req.Sessions)
	if req.Normalize == nil || *req.Normalize {
		sessions = timetable.FilterValidSessions(sessions)
	}
	clashes := s.engine.DetectClashes(sessions)
	s.metrics.ObserveClashes(len(clashes))
	return &dto.ClashResponse{Sessions: sessions, Clashes: clashes, Messages: formatClashes(clashes)}, nil
}

// Optimize searches the sections of the requested batches for the assignment
// with the fewest clashes, then the smallest gaps.
func (s *TimetableService) Optimize(ctx context.Context, req dto.OptimizeRequest) (*dto.OptimizeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimisation payload")
	}
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}

	var pool []models.Session
	for _, batch := range req.Batches {
		pool = append(pool, s.engine.AllSessionsForBatch(doc, batch)...)
	}

	searchCtx := ctx
	if s.cfg.SearchTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, s.cfg.SearchTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.engine.FindOptimalSchedule(searchCtx, pool, req.Courses, req.Excluded, timetable.SearchOptions{MaxLeaves: s.cfg.MaxLeaves})
	s.metrics.ObserveSearch(result.Leaves, result.Truncated, err, time.Since(start))
	if err != nil {
		return nil, searchError(err, result)
	}
	if result.Truncated {
		s.logger.Warn("schedule search truncated",
			zap.Strings("courses", req.Courses),
			zap.Int("leaves", result.Leaves),
		)
	}

	id := uuid.NewString()
	s.proposals.Save(id, result)
	return &dto.OptimizeResponse{
		ProposalID:         id,
		ScheduleAssignment: result,
		ClashMessages:      formatClashes(result.Clashes),
	}, nil
}

// Proposal returns a recent optimisation result.
func (s *TimetableService) Proposal(id string) (models.ScheduleAssignment, bool) {
	return s.proposals.Get(id)
}

// InvalidateCache drops every cached grid document.
func (s *TimetableService) InvalidateCache(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx, gridCachePattern); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to invalidate cache")
	}
	return nil
}

// SessionsFromInput converts caller sessions, parsing their time slots with
// the service time parser.
func (s *TimetableService) SessionsFromInput(inputs []dto.SessionInput) []models.Session {
	parser := s.engine.Parser()
	sessions := make([]models.Session, 0, len(inputs))
	for i, in := range inputs {
		kind := models.SessionKind(in.Kind)
		if kind == "" {
			kind = models.SessionKindLecture
			if strings.Contains(strings.ToLower(in.CourseName), "lab") {
				kind = models.SessionKindLab
			}
		}
		slot := strings.TrimSpace(in.TimeSlot)
		start, end := parser.Parse(slot)
		sessions = append(sessions, models.Session{
			ID:           fmt.Sprintf("input-%d", i),
			Day:          in.Day,
			TimeSlot:     slot,
			Room:         in.Room,
			Kind:         kind,
			CourseName:   strings.TrimSpace(in.CourseName),
			Section:      strings.TrimSpace(in.Section),
			Batch:        in.Batch,
			StartMinutes: start,
			EndMinutes:   end,
		})
	}
	return sessions
}

func resolveCourses(catalog models.Catalog, refs []dto.CourseRef) ([]models.Course, error) {
	byID := make(map[string]models.Course, len(catalog.Courses))
	for _, course := range catalog.Courses {
		byID[course.ID] = course
	}

	seen := make(map[string]bool, len(refs))
	courses := make([]models.Course, 0, len(refs))
	for _, ref := range refs {
		var course models.Course
		if ref.ID != "" {
			found, ok := byID[ref.ID]
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %q not found", ref.ID))
			}
			course = found
		} else {
			course = courseByName(catalog, ref)
		}
		if seen[course.ID] {
			continue
		}
		seen[course.ID] = true
		courses = append(courses, course)
	}
	return courses, nil
}

// courseByName prefers the catalog entry, keeping its casing, and otherwise
// builds the course from the reference.
func courseByName(catalog models.Catalog, ref dto.CourseRef) models.Course {
	name := strings.TrimSpace(ref.Name)
	section := strings.ToUpper(strings.TrimSpace(ref.Section))
	batch := strings.TrimSpace(ref.Batch)
	for _, course := range catalog.Courses {
		if strings.EqualFold(course.Name, name) && strings.EqualFold(course.Batch, batch) && strings.EqualFold(course.Section, section) {
			return course
		}
	}
	dept := timetable.DepartmentFromBatch(batch)
	return models.Course{
		ID:         timetable.CourseID(name, dept, section, batch),
		Name:       name,
		Department: dept,
		Section:    section,
		Batch:      batch,
	}
}

func formatClashes(clashes []models.Clash) []string {
	messages := make([]string, 0, len(clashes))
	for _, clash := range clashes {
		messages = append(messages, timetable.FormatClash(clash))
	}
	return messages
}

func sourceError(err error) error {
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, "timetable source timed out")
	default:
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, appErrors.ErrUnavailable.Message)
	}
}

func searchError(err error, result models.ScheduleAssignment) error {
	switch {
	case errors.Is(err, timetable.ErrNoSections):
		return appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, result.Message)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, "schedule search stopped before any assignment was scored")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "schedule search failed")
	}
}
