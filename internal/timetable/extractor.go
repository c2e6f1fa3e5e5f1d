package timetable

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Engine bundles the extraction, clash detection and search operations
// around one TimeParser.
type Engine struct {
	parser TimeParser
}

// NewEngine returns an Engine using parser for every time slot.
func NewEngine(parser TimeParser) *Engine {
	return &Engine{parser: NewTimeParser(parser.Policy)}
}

// Parser exposes the engine's time parser.
func (e *Engine) Parser() TimeParser {
	return e.parser
}

// sheetLayout locates the time rows of one weekday sheet.
type sheetLayout struct {
	day     string
	sheet   *models.Sheet
	timeRow int
	labRow  int
	ranks   map[int]int
}

func analyzeSheet(ds models.DaySheet) sheetLayout {
	sheet := ds.Sheet
	layout := sheetLayout{day: ds.Day, sheet: sheet, timeRow: fallbackTime, labRow: -1, ranks: map[int]int{}}
	for r := 0; r < timeRowScan && r < len(sheet.Rows); r++ {
		if strings.Contains(strings.ToLower(sheet.Cell(r, 0).Text), "room") {
			layout.timeRow = r
			break
		}
	}
	for r := range sheet.Rows {
		if strings.EqualFold(strings.TrimSpace(sheet.Cell(r, 0).Text), "lab") {
			layout.labRow = r
			break
		}
	}
	rank := 0
	if layout.timeRow < len(sheet.Rows) {
		for c := 1; c < len(sheet.Rows[layout.timeRow]); c++ {
			if sheet.Cell(layout.timeRow, c).HasText() {
				rank++
				layout.ranks[c] = rank
			}
		}
	}
	return layout
}

func (l sheetLayout) inLabRegion(row int) bool {
	return l.labRow >= 0 && row >= l.labRow
}

func (l sheetLayout) isTimeRow(row int) bool {
	return row == l.timeRow || row == l.labRow
}

// slotFor reads the default time slot of a grid position.
func (l sheetLayout) slotFor(row, col int) string {
	if l.inLabRegion(row) {
		return strings.TrimSpace(l.sheet.Cell(l.labRow, col).Text)
	}
	return strings.TrimSpace(l.sheet.Cell(l.timeRow, col).Text)
}

// dataCells calls fn for every non-empty cell below the header rows.
func (l sheetLayout) dataCells(fn func(row, col int, cell models.Cell)) {
	for r := headerRows; r < len(l.sheet.Rows); r++ {
		if l.isTimeRow(r) {
			continue
		}
		for c := 1; c < len(l.sheet.Rows[r]); c++ {
			cell := l.sheet.Rows[r][c]
			if !cell.HasText() {
				continue
			}
			fn(r, c, cell)
		}
	}
}

// ExtractAllCourses builds the course catalog from every coloured cell whose
// colour belongs to a known batch.
func (e *Engine) ExtractAllCourses(doc *models.Document) models.Catalog {
	legend := BuildBatchColorMap(doc)
	parsers := map[string]sectionParser{}
	seen := map[string]bool{}
	var courses []models.Course

	if doc != nil {
		for _, ds := range doc.WeekdaySheets() {
			layout := analyzeSheet(ds)
			layout.dataCells(func(_, _ int, cell models.Cell) {
				batch, ok := legend.BatchFor(cell.Color)
				if !ok {
					return
				}
				dept := DepartmentFromBatch(batch)
				parser, ok := parsers[dept]
				if !ok {
					parser = newSectionParser(dept)
					parsers[dept] = parser
				}
				text := strings.TrimSpace(cell.Text)
				match := parser.extract(text)
				if match.Name == "" {
					return
				}
				id := CourseID(match.Name, dept, match.Section, batch)
				if seen[id] {
					return
				}
				seen[id] = true
				courses = append(courses, models.Course{
					ID:         id,
					Name:       match.Name,
					Department: dept,
					Section:    match.Section,
					Batch:      batch,
					Color:      cell.Color,
					RawText:    text,
					Day:        layout.day,
				})
			})
		}
	}

	kept := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if isCancelled(course.Name) {
			continue
		}
		kept = append(kept, course)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Department != b.Department {
			return a.Department < b.Department
		}
		return a.Section < b.Section
	})

	batches := make([]string, 0)
	departments := make([]string, 0)
	for _, course := range kept {
		batches = append(batches, course.Batch)
		if course.Department != "" {
			departments = append(departments, course.Department)
		}
	}
	return models.Catalog{Courses: kept, Batches: uniqueSorted(batches), Departments: uniqueSorted(departments)}
}

// TimetableForCourses collects the sessions of the selected courses.
func (e *Engine) TimetableForCourses(doc *models.Document, courses []models.Course) []models.Session {
	sessions := make([]models.Session, 0)
	if doc == nil || len(courses) == 0 {
		return sessions
	}
	legend := BuildBatchColorMap(doc)

	for _, ds := range doc.WeekdaySheets() {
		layout := analyzeSheet(ds)
		layout.dataCells(func(row, col int, cell models.Cell) {
			cleaned, embedded, hasEmbedded := ParseEmbeddedTime(cell.Text)
			for _, course := range courses {
				if !cellMatchesCourse(cell, cleaned, course, legend) {
					continue
				}
				session := e.newSession(layout, row, col, cell, cleaned, embedded, hasEmbedded)
				session.ID = sessionKey(layout.day, col, row, course.ID)
				session.CourseName = course.Name
				session.Section = course.Section
				session.Batch = course.Batch
				session.Department = course.Department
				sessions = appendUnique(sessions, session)
			}
		})
	}
	sortSessions(sessions)
	return sessions
}

// AllSessionsForBatch collects every session, of every section, coloured
// with the batch's legend colour. An unknown batch yields no sessions.
func (e *Engine) AllSessionsForBatch(doc *models.Document, batch string) []models.Session {
	sessions := make([]models.Session, 0)
	legend := BuildBatchColorMap(doc)
	color, ok := legend.ColorFor(batch)
	if !ok {
		return sessions
	}
	batch = strings.TrimSpace(batch)
	dept := DepartmentFromBatch(batch)
	parser := newSectionParser(dept)

	for _, ds := range doc.WeekdaySheets() {
		layout := analyzeSheet(ds)
		layout.dataCells(func(row, col int, cell models.Cell) {
			if cell.Color != color {
				return
			}
			cleaned, embedded, hasEmbedded := ParseEmbeddedTime(cell.Text)
			match := parser.extract(strings.TrimSpace(cell.Text))
			if match.Name == "" || isCancelled(match.Name) {
				return
			}
			session := e.newSession(layout, row, col, cell, cleaned, embedded, hasEmbedded)
			session.ID = sessionKey(layout.day, col, row, slug(match.Name)+"-"+strings.ToLower(match.Section))
			session.CourseName = match.Name
			session.Section = match.Section
			session.Batch = batch
			session.Department = dept
			sessions = appendUnique(sessions, session)
		})
	}
	sortSessions(sessions)
	return sessions
}

func cellMatchesCourse(cell models.Cell, cleaned string, course models.Course, legend BatchColorMap) bool {
	name := strings.ToLower(strings.TrimSpace(course.Name))
	text := strings.ToLower(cleaned)
	if name == "" || !strings.Contains(text, name) {
		return false
	}
	// Lecture selections never pick up lab cells; the inverse is not checked.
	if !strings.Contains(name, "lab") && strings.Contains(text, "lab") {
		return false
	}
	if course.Section == "" {
		// A section-less course only claims cells that carry no section marker.
		if ExtractSection(strings.TrimSpace(cell.Text), course.Department).Section != "" {
			return false
		}
	} else if !hasSectionMarker(cell.Text, course.Department, course.Section) {
		return false
	}
	if color, ok := legend.ColorFor(course.Batch); ok && cell.Color != color {
		return false
	}
	return true
}

func hasSectionMarker(text, department, section string) bool {
	raw := text + " "
	for _, marker := range sectionMarkers(department, section) {
		if strings.Contains(raw, marker) {
			return true
		}
	}
	return false
}

func (e *Engine) newSession(layout sheetLayout, row, col int, cell models.Cell, cleaned, embedded string, hasEmbedded bool) models.Session {
	slot := embedded
	if !hasEmbedded {
		slot = layout.slotFor(row, col)
	}
	if slot == "" {
		slot = "unknown"
	}
	kind := models.SessionKindLecture
	if layout.inLabRegion(row) || strings.Contains(strings.ToLower(cleaned), "lab") {
		kind = models.SessionKindLab
	}
	start, end := e.parser.Parse(slot)
	return models.Session{
		Day:          layout.day,
		TimeSlot:     slot,
		Room:         strings.TrimSpace(layout.sheet.Cell(row, 0).Text),
		Kind:         kind,
		ColumnRank:   layout.ranks[col],
		Color:        cell.Color,
		StartMinutes: start,
		EndMinutes:   end,
	}
}

// appendUnique skips a session already present with the same day, time
// slot, course name (ignoring case) and section.
func appendUnique(sessions []models.Session, candidate models.Session) []models.Session {
	for _, existing := range sessions {
		if existing.Day == candidate.Day &&
			existing.TimeSlot == candidate.TimeSlot &&
			strings.EqualFold(existing.CourseName, candidate.CourseName) &&
			existing.Section == candidate.Section {
			return sessions
		}
	}
	return append(sessions, candidate)
}

func sortSessions(sessions []models.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		di, dj := models.WeekdayIndex(sessions[i].Day), models.WeekdayIndex(sessions[j].Day)
		if di != dj {
			return di < dj
		}
		return sessions[i].StartMinutes < sessions[j].StartMinutes
	})
}

func isCancelled(name string) bool {
	return strings.Contains(strings.ToLower(name), "cancelled")
}

// CourseID is the catalog key of a course: slugs of its name, department, section and batch.
func CourseID(name, dept, section, batch string) string {
	return strings.Join([]string{slug(name), slug(dept), slug(section), slug(batch)}, "_")
}

func sessionKey(day string, col, row int, suffix string) string {
	return fmt.Sprintf("%s-%d-%d-%s", strings.ToLower(day), col, row, suffix)
}

func slug(value string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(value), "-"), "-")
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}
