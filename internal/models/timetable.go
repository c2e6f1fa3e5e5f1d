package models

// UnknownMinutes marks a start or end time that could not be parsed.
const UnknownMinutes = 9999

// SessionKind distinguishes lectures from labs.
type SessionKind string

const (
	SessionKindLecture SessionKind = "Lecture"
	SessionKindLab     SessionKind = "Lab"
)

// Course is a catalog entry; one per (name, department, section, batch).
type Course struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Section    string `json:"section"`
	Batch      string `json:"batch"`
	Color      string `json:"color"`
	RawText    string `json:"rawText"`
	Day        string `json:"day"`
}

// Session is one weekly meeting of a course section.
type Session struct {
	ID           string      `json:"id"`
	Day          string      `json:"day"`
	TimeSlot     string      `json:"timeSlot"`
	Room         string      `json:"room"`
	Kind         SessionKind `json:"kind"`
	CourseName   string      `json:"courseName"`
	Section      string      `json:"section"`
	Batch        string      `json:"batch"`
	Department   string      `json:"department"`
	ColumnRank   int         `json:"columnRank"`
	Color        string      `json:"color"`
	StartMinutes int         `json:"startMinutes"`
	EndMinutes   int         `json:"endMinutes"`
}

// HasKnownTime reports whether both ends of the session were parsed.
func (s Session) HasKnownTime() bool {
	return s.StartMinutes != UnknownMinutes && s.EndMinutes != UnknownMinutes
}

// Clash is an unordered pair of overlapping sessions of two different courses.
type Clash struct {
	Course1   string `json:"course1"`
	Section1  string `json:"section1"`
	Course2   string `json:"course2"`
	Section2  string `json:"section2"`
	Day       string `json:"day"`
	TimeSlot1 string `json:"timeSlot1"`
	TimeSlot2 string `json:"timeSlot2"`
}

// CourseSection is one course-to-section choice of an assignment.
type CourseSection struct {
	Course  string `json:"course"`
	Section string `json:"section"`
}

// ScheduleAssignment is the outcome of the section search.
type ScheduleAssignment struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Choices    []CourseSection `json:"choices"`
	Sessions   []Session       `json:"sessions"`
	Clashes    []Clash         `json:"clashes"`
	ClashCount int             `json:"clashCount"`
	GapMinutes int             `json:"gapMinutes"`
	Leaves     int             `json:"leaves"`
	Truncated  bool            `json:"truncated,omitempty"`
}

// Sections returns the assignment as a course-to-section map.
func (a ScheduleAssignment) Sections() map[string]string {
	result := make(map[string]string, len(a.Choices))
	for _, choice := range a.Choices {
		result[choice.Course] = choice.Section
	}
	return result
}

// Catalog is the full set of courses extracted from a grid document.
type Catalog struct {
	Courses     []Course `json:"courses"`
	Batches     []string `json:"batches"`
	Departments []string `json:"departments"`
}
