package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AHSANooo/Clashes-Detector/internal/dto"
	"github.com/AHSANooo/Clashes-Detector/internal/models"
	"github.com/AHSANooo/Clashes-Detector/internal/repository"
	appErrors "github.com/AHSANooo/Clashes-Detector/pkg/errors"
)

const fixtureBatch = "BS-CS (2023)"

var fixtureColor = models.ColorSignature(0.8, 0.2, 0.1)

func csCell(text string) models.Cell {
	return models.Cell{Text: text, Color: fixtureColor}
}

func fixtureSheet(day string, body ...[]models.Cell) models.Sheet {
	rows := [][]models.Cell{
		{{Text: day}},
		{{Text: "Legend"}, csCell(fixtureBatch)},
		{},
		{},
		{{Text: "Room"}, {Text: "8:30-9:50"}, {Text: "10:00-11:20"}},
	}
	return models.Sheet{Name: day, Rows: append(rows, body...)}
}

func fixtureDocument() *models.Document {
	return &models.Document{Sheets: []models.Sheet{
		fixtureSheet("Monday",
			[]models.Cell{{Text: "CS-1"}, csCell("Algorithms (CS-A)"), csCell("Networks (CS-A)")},
			[]models.Cell{{Text: "CS-2"}, csCell("Algorithms (CS-B)"), csCell("Networks (CS-B)")},
		),
		fixtureSheet("Tuesday",
			[]models.Cell{{Text: "CS-1"}, csCell("Algorithms (CS-A)")},
			[]models.Cell{{Text: "CS-2"}, csCell("Networks (CS-B)")},
		),
	}}
}

type stubSource struct {
	doc   *models.Document
	err   error
	loads int32
	delay time.Duration
}

func (s *stubSource) ID() string { return "stub" }

func (s *stubSource) Load(ctx context.Context) (*models.Document, error) {
	atomic.AddInt32(&s.loads, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

func newTestTimetableService(source GridSource, cfg TimetableConfig) *TimetableService {
	cache := NewCacheService(repository.NewMemoryCacheRepository(nil), nil, time.Hour, nil, true)
	return NewTimetableService(source, nil, cache, NewMetricsService(), nil, nil, cfg)
}

func TestTimetableServiceCatalog(t *testing.T) {
	svc := newTestTimetableService(&stubSource{doc: fixtureDocument()}, TimetableConfig{})

	catalog, err := svc.Catalog(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{fixtureBatch}, catalog.Batches)
	assert.Equal(t, []string{"CS"}, catalog.Departments)
	require.Len(t, catalog.Courses, 4)
	assert.Equal(t, "Algorithms", catalog.Courses[0].Name)
	assert.Equal(t, "A", catalog.Courses[0].Section)
}

func TestTimetableServiceCachesDocument(t *testing.T) {
	source := &stubSource{doc: fixtureDocument()}
	svc := newTestTimetableService(source, TimetableConfig{})
	ctx := context.Background()

	_, err := svc.Catalog(ctx)
	require.NoError(t, err)
	_, err = svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&source.loads))

	require.NoError(t, svc.InvalidateCache(ctx))
	_, err = svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&source.loads))
}

func TestTimetableServiceRefreshReplacesCachedDocument(t *testing.T) {
	source := &stubSource{doc: fixtureDocument()}
	svc := newTestTimetableService(source, TimetableConfig{})
	ctx := context.Background()

	_, err := svc.Catalog(ctx)
	require.NoError(t, err)

	source.doc = &models.Document{Sheets: fixtureDocument().Sheets[:1]}
	require.NoError(t, svc.Refresh(ctx))
	assert.Equal(t, int32(2), atomic.LoadInt32(&source.loads))

	doc, err := svc.Document(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Sheets, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&source.loads), "served from the refreshed cache")
}

func TestTimetableServiceSharesConcurrentFetches(t *testing.T) {
	source := &stubSource{doc: fixtureDocument(), delay: 50 * time.Millisecond}
	svc := NewTimetableService(source, nil, nil, nil, nil, nil, TimetableConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Document(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Less(t, atomic.LoadInt32(&source.loads), int32(5))
}

func TestTimetableServiceSharedFetchSurvivesCallerCancel(t *testing.T) {
	source := &stubSource{doc: fixtureDocument(), delay: 50 * time.Millisecond}
	svc := NewTimetableService(source, nil, nil, nil, nil, nil, TimetableConfig{})

	leaderCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.Document(leaderCtx)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	doc, err := svc.Document(context.Background())
	wg.Wait()

	require.NoError(t, err, "a waiting caller is not failed by the leader's cancellation")
	assert.Len(t, doc.Sheets, len(fixtureDocument().Sheets))
}

func TestTimetableServiceSourceFailure(t *testing.T) {
	svc := newTestTimetableService(&stubSource{err: errors.New("connection refused")}, TimetableConfig{})

	_, err := svc.Catalog(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnavailable.Code, appErrors.FromError(err).Code)

	svc = newTestTimetableService(&stubSource{err: context.DeadlineExceeded}, TimetableConfig{})
	_, err = svc.Catalog(context.Background())
	assert.Equal(t, appErrors.ErrTimeout.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceTimetable(t *testing.T) {
	svc := newTestTimetableService(&stubSource{doc: fixtureDocument()}, TimetableConfig{})

	resp, err := svc.Timetable(context.Background(), dto.TimetableRequest{Courses: []dto.CourseRef{
		{Name: "algorithms", Section: "a", Batch: fixtureBatch},
		{Name: "Networks", Section: "B", Batch: fixtureBatch},
	}})
	require.NoError(t, err)

	require.Len(t, resp.Courses, 2)
	assert.Equal(t, "Algorithms", resp.Courses[0].Name, "catalog casing wins")
	assert.Len(t, resp.Sessions, 4)
	require.Len(t, resp.Clashes, 1)
	assert.Equal(t, "Tuesday", resp.Clashes[0].Day)
	assert.Equal(t, []string{`"Algorithms" (Section A) clashes with "Networks" (Section B) on Tuesday at 8:30-9:50 / 8:30-9:50`}, resp.ClashMessages)
}

func TestTimetableServiceTimetableByID(t *testing.T) {
	svc := newTestTimetableService(&stubSource{doc: fixtureDocument()}, TimetableConfig{})
	catalog, err := svc.Catalog(context.Background())
	require.NoError(t, err)

	resp, err := svc.Timetable(context.Background(), dto.TimetableRequest{Courses: []dto.CourseRef{
		{ID: catalog.Courses[0].ID},
		{ID: catalog.Courses[0].ID},
	}})
	require.NoError(t, err)
	assert.Len(t, resp.Courses, 1, "duplicate references collapse")
	assert.Empty(t, resp.Clashes)

	_, err = svc.Timetable(context.Background(), dto.TimetableRequest{Courses: []dto.CourseRef{{ID: "nope"}}})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceValidation(t *testing.T) {
	svc := newTestTimetableService(&stubSource{doc: fixtureDocument()}, TimetableConfig{})
	ctx := context.Background()

	_, err := svc.Timetable(ctx, dto.TimetableRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Timetable(ctx, dto.TimetableRequest{Courses: []dto.CourseRef{{Name: "Algorithms"}}})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code, "a name needs a batch")

	_, err = svc.BatchSessions(ctx, "  ")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Optimize(ctx, dto.OptimizeRequest{Batches: []string{fixtureBatch}})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceBatchSessions(t *testing.T) {
	svc := newTestTimetableService(&stubSource{doc: fixtureDocument()}, TimetableConfig{})

	sessions, err := svc.BatchSessions(context.Background(), fixtureBatch)
	require.NoError(t, err)
	assert.Len(t, sessions, 6)

	sessions, err = svc.BatchSessions(context.Background(), "BS-EE (2021)")
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestTimetableServiceClashes(t *testing.T) {
	svc := newTestTimetableService(&stubSource{}, TimetableConfig{})
	off := false

	resp, err := svc.Clashes(context.Background(), dto.ClashRequest{Sessions: []dto.SessionInput{
		{CourseName: "DS", Section: "A", Day: "Monday", TimeSlot: "9:00-10:45"},
		{CourseName: "OOP", Section: "B", Day: "Monday", TimeSlot: "10:00-11:00"},
		{CourseName: "OOP", Section: "B", Day: "Monday", TimeSlot: "11:00-12:00"},
	}})
	require.NoError(t, err)
	assert.Len(t, resp.Sessions, 2, "second same-day OOP lecture is normalised away")
	require.Len(t, resp.Clashes, 1)
	assert.Contains(t, resp.Messages[0], `"DS" (Section A) clashes with "OOP" (Section B)`)

	resp, err = svc.Clashes(context.Background(), dto.ClashRequest{Normalize: &off, Sessions: []dto.SessionInput{
		{CourseName: "DS", Section: "A", Day: "Monday", TimeSlot: "9:00-10:45"},
		{CourseName: "DS", Section: "A", Day: "Monday", TimeSlot: "11:00-12:00"},
	}})
	require.NoError(t, err)
	assert.Len(t, resp.Sessions, 2)
	assert.Empty(t, resp.Clashes)

	_, err = svc.Clashes(context.Background(), dto.ClashRequest{Sessions: []dto.SessionInput{{CourseName: "DS", Day: "Sunday", TimeSlot: "9:00"}}})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionsFromInputInfersKind(t *testing.T) {
	svc := newTestTimetableService(&stubSource{}, TimetableConfig{})
	sessions := svc.SessionsFromInput([]dto.SessionInput{
		{CourseName: "Networks Lab", Day: "Friday", TimeSlot: "11:30-2:20"},
		{CourseName: "Networks", Day: "Friday", TimeSlot: "8:30", Kind: "Lab"},
		{CourseName: "Calculus", Day: "Friday", TimeSlot: "unknown"},
	})
	require.Len(t, sessions, 3)
	assert.Equal(t, models.SessionKindLab, sessions[0].Kind)
	assert.Equal(t, 14*60+20, sessions[0].EndMinutes)
	assert.Equal(t, models.SessionKindLab, sessions[1].Kind)
	assert.Equal(t, 8*60+30+50, sessions[1].EndMinutes)
	assert.Equal(t, models.SessionKindLecture, sessions[2].Kind)
	assert.False(t, sessions[2].HasKnownTime())
}

func TestTimetableServiceOptimize(t *testing.T) {
	svc := newTestTimetableService(&stubSource{doc: fixtureDocument()}, TimetableConfig{SearchTimeout: time.Second})

	resp, err := svc.Optimize(context.Background(), dto.OptimizeRequest{
		Batches: []string{fixtureBatch},
		Courses: []string{"Algorithms", "Networks"},
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, map[string]string{"Algorithms": "A", "Networks": "A"}, resp.Sections())
	assert.Equal(t, 10, resp.GapMinutes)
	assert.NotEmpty(t, resp.ProposalID)
	assert.Empty(t, resp.ClashMessages)

	stored, ok := svc.Proposal(resp.ProposalID)
	require.True(t, ok)
	assert.Equal(t, resp.ScheduleAssignment, stored)
}

func TestTimetableServiceOptimizeWithExclusions(t *testing.T) {
	svc := newTestTimetableService(&stubSource{doc: fixtureDocument()}, TimetableConfig{})

	resp, err := svc.Optimize(context.Background(), dto.OptimizeRequest{
		Batches:  []string{fixtureBatch},
		Courses:  []string{"Algorithms", "Networks"},
		Excluded: map[string][]string{"Networks": {"A"}, "Algorithms": {"B"}},
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, 1, resp.ClashCount)
	assert.Len(t, resp.ClashMessages, 1)
}

func TestTimetableServiceOptimizeNoSections(t *testing.T) {
	svc := newTestTimetableService(&stubSource{doc: fixtureDocument()}, TimetableConfig{})

	_, err := svc.Optimize(context.Background(), dto.OptimizeRequest{
		Batches:  []string{fixtureBatch},
		Courses:  []string{"Algorithms", "Networks"},
		Excluded: map[string][]string{"Networks": {"A", "B"}},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "Networks")
}
