package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
)

const (
	batchCS = "BS-CS (2023)"
	batchSE = "BS-SE (2023)"
)

var (
	colorCS = models.ColorSignature(0.8, 0.2, 0.1)
	colorSE = models.ColorSignature(0.2, 0.6, 0.9)
)

func text(value string) models.Cell {
	return models.Cell{Text: value}
}

func cs(value string) models.Cell {
	return models.Cell{Text: value, Color: colorCS}
}

func se(value string) models.Cell {
	return models.Cell{Text: value, Color: colorSE}
}

func weekdaySheet(name string, body ...[]models.Cell) models.Sheet {
	rows := [][]models.Cell{
		{text(name + " timetable")},
		{text("Legend"), cs(batchCS), se(batchSE), {Text: "BS-XX (2020)", Color: models.NoFillSignature}},
		{},
		{},
		{text("Room"), text("8:30-9:50"), text("10:00-11:20"), text("11:30-12:50"), text("1:00-2:20")},
	}
	return models.Sheet{Name: name, Rows: append(rows, body...)}
}

func testDocument() *models.Document {
	monday := weekdaySheet("Monday",
		[]models.Cell{text("CS-1"), cs("Data Structures (CS-A)"), cs("OOP (CS-B)"), se("Calculus (SE-A)")},
		[]models.Cell{text("CS-2"), cs("Data Structures (CS-B)"), cs("OOP (CS-A)"), {}, cs("Ethics (CS-A) cancelled")},
		[]models.Cell{text("Lab"), text("8:30-11:20"), text("11:30-2:20")},
		[]models.Cell{text("Lab-1"), cs("Data Structures Lab (CS-A)"), cs("OOP Lab (CS-B, G-1)")},
	)
	wednesday := weekdaySheet("Wednesday",
		[]models.Cell{text("CS-1"), cs("OOP (CS-B)"), cs("Data Structures (CS-A)"), cs("Data Structures (CS-A)")},
		[]models.Cell{text("CS-3"), cs("Data Structures (CS-B) 3:00-4:20"), cs("Data Structures (CS-A)"), se("Calculus (SE-A)"), text("Data Structures (CS-A)")},
	)
	return &models.Document{Sheets: []models.Sheet{wednesday, monday, {Name: "Notes", Rows: [][]models.Cell{{cs("Data Structures (CS-A)")}}}}}
}

func TestBuildBatchColorMap(t *testing.T) {
	legend := BuildBatchColorMap(testDocument())

	require.Equal(t, 2, legend.Len())
	batch, ok := legend.BatchFor(colorCS)
	require.True(t, ok)
	assert.Equal(t, batchCS, batch)

	color, ok := legend.ColorFor(batchSE)
	require.True(t, ok)
	assert.Equal(t, colorSE, color)

	_, ok = legend.ColorFor("BS-XX (2020)")
	assert.False(t, ok, "no-fill legend cells are ignored")
}

func TestDepartmentFromBatch(t *testing.T) {
	assert.Equal(t, "CS", DepartmentFromBatch("BS-CS (2023)"))
	assert.Equal(t, "SE", DepartmentFromBatch("BS SE 2022"))
	assert.Equal(t, "DS", DepartmentFromBatch("BS-DS"))
	assert.Equal(t, "", DepartmentFromBatch("BS"))
}

func TestExtractSectionRuleOrder(t *testing.T) {
	cases := []struct {
		text, section, name, rule string
	}{
		{"Data Structures (CS-A)", "A", "Data Structures", "dept-section"},
		{"OOP Lab (CS-B, G-1)", "B", "OOP Lab", "group-lab"},
		{"Calculus-C", "C", "Calculus", "dash-suffix"},
		{"Physics (D)", "D", "Physics", "paren-letter"},
		{"Statistics E Morning", "E", "Statistics Morning", "lone-letter"},
		{"Seminar", "", "Seminar", ""},
	}
	for _, tc := range cases {
		match := ExtractSection(tc.text, "CS")
		assert.Equal(t, tc.section, match.Section, tc.text)
		assert.Equal(t, tc.name, match.Name, tc.text)
		assert.Equal(t, tc.rule, match.Rule, tc.text)
	}
}

func TestExtractAllCourses(t *testing.T) {
	engine := NewEngine(TimeParser{})
	catalog := engine.ExtractAllCourses(testDocument())

	var keys []string
	for _, course := range catalog.Courses {
		keys = append(keys, course.Name+"/"+course.Department+"/"+course.Section)
	}
	assert.Equal(t, []string{
		"Calculus/SE/A",
		"Data Structures/CS/A",
		"Data Structures/CS/B",
		"Data Structures Lab/CS/A",
		"OOP/CS/A",
		"OOP/CS/B",
		"OOP Lab/CS/B",
	}, keys)
	assert.Equal(t, []string{batchCS, batchSE}, catalog.Batches)
	assert.Equal(t, []string{"CS", "SE"}, catalog.Departments)

	first := catalog.Courses[1]
	assert.Equal(t, "Monday", first.Day, "first occurrence wins, sheets are walked Monday first")
	assert.Equal(t, batchCS, first.Batch)
	assert.Equal(t, colorCS, first.Color)
	assert.Equal(t, "data-structures_cs_a_bs-cs-2023", first.ID)
}

func TestTimetableForCourses(t *testing.T) {
	engine := NewEngine(TimeParser{})
	doc := testDocument()
	course := models.Course{ID: "ds-a", Name: "Data Structures", Department: "CS", Section: "A", Batch: batchCS}

	sessions := engine.TimetableForCourses(doc, []models.Course{course})

	require.Len(t, sessions, 3)
	assert.Equal(t, "Monday", sessions[0].Day)
	assert.Equal(t, "8:30-9:50", sessions[0].TimeSlot)
	assert.Equal(t, "CS-1", sessions[0].Room)
	assert.Equal(t, models.SessionKindLecture, sessions[0].Kind)
	assert.Equal(t, 1, sessions[0].ColumnRank)
	assert.Equal(t, "monday-1-5-ds-a", sessions[0].ID)

	// the repeat in the 10:00 column collapses and the uncoloured cell is ignored
	assert.Equal(t, "Wednesday", sessions[1].Day)
	assert.Equal(t, "10:00-11:20", sessions[1].TimeSlot)
	assert.Equal(t, "Wednesday", sessions[2].Day)
	assert.Equal(t, "11:30-12:50", sessions[2].TimeSlot)
	for _, s := range sessions {
		assert.Equal(t, models.SessionKindLecture, s.Kind, "lab cells never match a lecture selection")
	}
}

func TestTimetableForLabCourse(t *testing.T) {
	engine := NewEngine(TimeParser{})
	course := models.Course{ID: "dsl-a", Name: "Data Structures Lab", Department: "CS", Section: "A", Batch: batchCS}

	sessions := engine.TimetableForCourses(testDocument(), []models.Course{course})

	require.Len(t, sessions, 1)
	assert.Equal(t, models.SessionKindLab, sessions[0].Kind)
	assert.Equal(t, "8:30-11:20", sessions[0].TimeSlot)
	assert.Equal(t, 8*60+30, sessions[0].StartMinutes)
	assert.Equal(t, 11*60+20, sessions[0].EndMinutes)
}

func TestTimetableForCoursesPrefersEmbeddedTime(t *testing.T) {
	engine := NewEngine(TimeParser{})
	course := models.Course{ID: "ds-b", Name: "Data Structures", Department: "CS", Section: "B", Batch: batchCS}

	sessions := engine.TimetableForCourses(testDocument(), []models.Course{course})

	require.Len(t, sessions, 2)
	assert.Equal(t, "Monday", sessions[0].Day)
	assert.Equal(t, "Wednesday", sessions[1].Day)
	assert.Equal(t, "3:00-4:20", sessions[1].TimeSlot)
	assert.Equal(t, 15*60, sessions[1].StartMinutes)
}

func TestAllSessionsForBatch(t *testing.T) {
	engine := NewEngine(TimeParser{})
	sessions := engine.AllSessionsForBatch(testDocument(), batchCS)

	sections := map[string][]string{}
	for _, s := range sessions {
		sections[s.CourseName] = append(sections[s.CourseName], s.Section)
		assert.Equal(t, batchCS, s.Batch)
		assert.Equal(t, "CS", s.Department)
	}
	assert.ElementsMatch(t, []string{"A", "B", "A", "A", "B"}, sections["Data Structures"])
	assert.ElementsMatch(t, []string{"B", "A", "B"}, sections["OOP"])
	assert.Equal(t, []string{"A"}, sections["Data Structures Lab"])
	assert.Equal(t, []string{"B"}, sections["OOP Lab"])
	assert.NotContains(t, sections, "Ethics")

	for i := 1; i < len(sessions); i++ {
		prev, cur := sessions[i-1], sessions[i]
		if prev.Day == cur.Day {
			assert.LessOrEqual(t, prev.StartMinutes, cur.StartMinutes)
		} else {
			assert.Less(t, models.WeekdayIndex(prev.Day), models.WeekdayIndex(cur.Day))
		}
	}
}

func TestAllSessionsForUnknownBatch(t *testing.T) {
	engine := NewEngine(TimeParser{})
	sessions := engine.AllSessionsForBatch(testDocument(), "BS-EE (2021)")
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestSessionDaysUseCanonicalWeekdayNames(t *testing.T) {
	engine := NewEngine(TimeParser{})
	monday := weekdaySheet("MONDAY",
		[]models.Cell{text("CS-1"), cs("Data Structures (CS-A)")},
	)
	wednesday := weekdaySheet("Wednesday ",
		[]models.Cell{text("CS-1"), {}, cs("Data Structures (CS-A)")},
	)
	doc := &models.Document{Sheets: []models.Sheet{wednesday, monday}}

	catalog := engine.ExtractAllCourses(doc)
	require.Len(t, catalog.Courses, 1)
	assert.Equal(t, "Monday", catalog.Courses[0].Day)

	course := catalog.Courses[0]
	sessions := engine.TimetableForCourses(doc, []models.Course{course})
	require.Len(t, sessions, 2)
	assert.Equal(t, "Monday", sessions[0].Day)
	assert.Equal(t, "Wednesday", sessions[1].Day)
	assert.Equal(t, "monday-1-5-"+course.ID, sessions[0].ID)
	assert.Equal(t, "wednesday-2-5-"+course.ID, sessions[1].ID)

	for _, s := range engine.AllSessionsForBatch(doc, batchCS) {
		assert.Contains(t, models.Weekdays, s.Day)
	}
}

func TestTimetableForSectionlessCourse(t *testing.T) {
	engine := NewEngine(TimeParser{})
	doc := &models.Document{Sheets: []models.Sheet{weekdaySheet("Monday",
		[]models.Cell{text("CS-1"), cs("Seminar"), cs("Seminar (CS-A)")},
	)}}

	catalog := engine.ExtractAllCourses(doc)
	var course models.Course
	for _, c := range catalog.Courses {
		if c.Name == "Seminar" && c.Section == "" {
			course = c
		}
	}
	require.NotEmpty(t, course.ID, "the unmarked cell is catalogued without a section")

	sessions := engine.TimetableForCourses(doc, []models.Course{course})
	require.Len(t, sessions, 1, "the sectioned cell belongs to Seminar/A")
	assert.Equal(t, "8:30-9:50", sessions[0].TimeSlot)
	assert.Equal(t, "", sessions[0].Section)
}

func TestExtractSectionLoneLetterNeedsSpacesOnBothSides(t *testing.T) {
	match := ExtractSection("Statistics E", "CS")
	assert.Equal(t, "", match.Section)
	assert.Equal(t, "", match.Rule)
	assert.Equal(t, "Statistics E", match.Name)

	match = ExtractSection("Statistics E Morning", "CS")
	assert.Equal(t, "E", match.Section)
	assert.Equal(t, "lone-letter", match.Rule)
}
