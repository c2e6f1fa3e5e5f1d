package timetable

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
)

// ErrNoSections is returned when exclusions leave a course without any section.
var ErrNoSections = errors.New("no sections available")

// SearchOptions bounds the section search. Zero values mean unlimited.
type SearchOptions struct {
	MaxLeaves int
}

// Score orders candidate assignments: fewer clashes first, then fewer gap minutes.
type Score struct {
	Clashes int
	Gap     int
}

// Better reports whether a strictly beats b.
func Better(a, b Score) bool {
	if a.Clashes != b.Clashes {
		return a.Clashes < b.Clashes
	}
	return a.Gap < b.Gap
}

// ShouldPrune reports whether a partial assignment at course index can be
// abandoned. Adding sessions never removes a clash, so once a clash-free
// assignment exists any partial assignment that already clashes is lost.
func ShouldPrune(best *Score, index, partialClashes int) bool {
	return best != nil && best.Clashes == 0 && index >= 1 && partialClashes > 0
}

// GapMinutes sums the idle minutes between consecutive sessions of each day.
// Sessions with unknown times are ignored.
func GapMinutes(sessions []models.Session) int {
	byDay := map[string][]models.Session{}
	for _, session := range sessions {
		if !session.HasKnownTime() {
			continue
		}
		byDay[session.Day] = append(byDay[session.Day], session)
	}
	total := 0
	for _, day := range byDay {
		sort.SliceStable(day, func(i, j int) bool { return day[i].StartMinutes < day[j].StartMinutes })
		for i := 0; i+1 < len(day); i++ {
			if gap := day[i+1].StartMinutes - day[i].EndMinutes; gap > 0 {
				total += gap
			}
		}
	}
	return total
}

// FormatGap renders minutes as "2h 15m", "3h" or "45 minutes".
func FormatGap(minutes int) string {
	hours, rest := minutes/60, minutes%60
	switch {
	case hours > 0 && rest > 0:
		return fmt.Sprintf("%dh %dm", hours, rest)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%d minutes", rest)
}

type sectionOption struct {
	name     string
	sessions []models.Session
}

type courseOptions struct {
	name     string
	sections []sectionOption
}

type candidate struct {
	score    Score
	choices  []models.CourseSection
	sessions []models.Session
	clashes  []models.Clash
}

type searchState struct {
	ctx       context.Context
	engine    *Engine
	courses   []courseOptions
	opts      SearchOptions
	chosen    []models.CourseSection
	best      *candidate
	leaves    int
	truncated bool
	err       error
}

// FindOptimalSchedule picks one section per course, minimising clashes and
// then total gap minutes. Ties keep the first assignment found in course
// and section listing order.
func (e *Engine) FindOptimalSchedule(
	ctx context.Context,
	sessions []models.Session,
	courseNames []string,
	excluded map[string][]string,
	opts SearchOptions,
) (models.ScheduleAssignment, error) {
	courses, missing := groupSections(sessions, courseNames, excluded)
	if missing != "" {
		return models.ScheduleAssignment{
			Success:  false,
			Message:  fmt.Sprintf("No sections left for %q after exclusions", missing),
			Choices:  []models.CourseSection{},
			Sessions: []models.Session{},
			Clashes:  []models.Clash{},
		}, fmt.Errorf("%w: %s", ErrNoSections, missing)
	}

	state := &searchState{ctx: ctx, engine: e, courses: courses, opts: opts}
	state.visit(0, nil)

	if state.best == nil {
		if state.err != nil {
			return models.ScheduleAssignment{}, state.err
		}
		return models.ScheduleAssignment{}, errors.New("search finished without a candidate")
	}

	best := state.best
	result := models.ScheduleAssignment{
		Success:    best.score.Clashes == 0,
		Choices:    best.choices,
		Sessions:   best.sessions,
		Clashes:    best.clashes,
		ClashCount: best.score.Clashes,
		GapMinutes: best.score.Gap,
		Leaves:     state.leaves,
		Truncated:  state.truncated || state.err != nil,
	}
	if result.Success {
		result.Message = fmt.Sprintf("Found a clash-free schedule with %s of gaps between classes", FormatGap(best.score.Gap))
	} else {
		result.Message = fmt.Sprintf("No clash-free schedule exists; the best assignment has %d clash(es)", best.score.Clashes)
	}
	return result, nil
}

// groupSections returns the available sections per selected course, or the
// name of the first course left without any.
func groupSections(sessions []models.Session, courseNames []string, excluded map[string][]string) ([]courseOptions, string) {
	type sectionIndex struct {
		order    []string
		sessions map[string][]models.Session
	}
	wanted := map[string]bool{}
	for _, name := range courseNames {
		wanted[normalizeCourse(name)] = true
	}
	grouped := map[string]*sectionIndex{}
	for _, session := range sessions {
		key := normalizeCourse(session.CourseName)
		if !wanted[key] {
			continue
		}
		idx, ok := grouped[key]
		if !ok {
			idx = &sectionIndex{sessions: map[string][]models.Session{}}
			grouped[key] = idx
		}
		if _, ok := idx.sessions[session.Section]; !ok {
			idx.order = append(idx.order, session.Section)
		}
		idx.sessions[session.Section] = append(idx.sessions[session.Section], session)
	}

	skip := map[string]map[string]bool{}
	for course, sections := range excluded {
		key := normalizeCourse(course)
		if skip[key] == nil {
			skip[key] = map[string]bool{}
		}
		for _, section := range sections {
			skip[key][strings.TrimSpace(section)] = true
		}
	}

	result := make([]courseOptions, 0, len(courseNames))
	for _, name := range courseNames {
		key := normalizeCourse(name)
		option := courseOptions{name: strings.TrimSpace(name)}
		if idx, ok := grouped[key]; ok {
			for _, section := range idx.order {
				if skip[key][section] {
					continue
				}
				option.sections = append(option.sections, sectionOption{name: section, sessions: idx.sessions[section]})
			}
		}
		if len(option.sections) == 0 {
			return nil, option.name
		}
		result = append(result, option)
	}
	return result, ""
}

func normalizeCourse(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *searchState) halted() bool {
	return s.truncated || s.err != nil
}

func (s *searchState) visit(index int, accumulated []models.Session) {
	if s.halted() {
		return
	}
	if index >= 1 && s.best != nil && s.best.score.Clashes == 0 {
		partial := s.engine.DetectClashes(FilterValidSessions(accumulated))
		if ShouldPrune(&s.best.score, index, len(partial)) {
			return
		}
	}
	if index == len(s.courses) {
		s.leaf(accumulated)
		return
	}
	course := s.courses[index]
	for _, option := range course.sections {
		s.chosen = append(s.chosen, models.CourseSection{Course: course.name, Section: option.name})
		next := make([]models.Session, 0, len(accumulated)+len(option.sessions))
		next = append(next, accumulated...)
		next = append(next, option.sessions...)
		s.visit(index+1, next)
		s.chosen = s.chosen[:len(s.chosen)-1]
		if s.halted() {
			return
		}
	}
}

func (s *searchState) leaf(accumulated []models.Session) {
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return
	}
	s.leaves++
	normalized := FilterValidSessions(accumulated)
	clashes := s.engine.DetectClashes(normalized)
	score := Score{Clashes: len(clashes), Gap: GapMinutes(normalized)}
	if s.best == nil || Better(score, s.best.score) {
		sorted := make([]models.Session, len(normalized))
		copy(sorted, normalized)
		sortSessions(sorted)
		choices := make([]models.CourseSection, len(s.chosen))
		copy(choices, s.chosen)
		s.best = &candidate{score: score, choices: choices, sessions: sorted, clashes: clashes}
	}
	if s.opts.MaxLeaves > 0 && s.leaves >= s.opts.MaxLeaves {
		s.truncated = true
	}
}
