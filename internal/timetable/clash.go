package timetable

import (
	"fmt"
	"sort"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
)

// DetectClashes compares every pair of sessions of different courses that
// meet on the same day. Only the first overlapping pair of a given
// (course, course, day) triple is reported.
func (e *Engine) DetectClashes(sessions []models.Session) []models.Clash {
	clashes := make([]models.Clash, 0)
	seen := map[string]bool{}
	for i := 0; i < len(sessions); i++ {
		a := sessions[i]
		for j := i + 1; j < len(sessions); j++ {
			b := sessions[j]
			if a.CourseName == b.CourseName || a.Day != b.Day {
				continue
			}
			if !e.sessionsOverlap(a, b) {
				continue
			}
			key := clashKey(a.CourseName, b.CourseName, a.Day)
			if seen[key] {
				continue
			}
			seen[key] = true
			clashes = append(clashes, models.Clash{
				Course1:   a.CourseName,
				Section1:  a.Section,
				Course2:   b.CourseName,
				Section2:  b.Section,
				Day:       a.Day,
				TimeSlot1: a.TimeSlot,
				TimeSlot2: b.TimeSlot,
			})
		}
	}
	return clashes
}

func (e *Engine) sessionsOverlap(a, b models.Session) bool {
	if a.HasKnownTime() && b.HasKnownTime() {
		return minutesOverlap(a.StartMinutes, a.EndMinutes, b.StartMinutes, b.EndMinutes)
	}
	return e.parser.Overlap(a.TimeSlot, b.TimeSlot)
}

func clashKey(course1, course2, day string) string {
	pair := []string{course1, course2}
	sort.Strings(pair)
	return pair[0] + "|" + pair[1] + "|" + day
}

// FormatClash renders a clash as a sentence.
func FormatClash(c models.Clash) string {
	return fmt.Sprintf(`"%s" (Section %s) clashes with "%s" (Section %s) on %s at %s / %s`,
		c.Course1, c.Section1, c.Course2, c.Section2, c.Day, c.TimeSlot1, c.TimeSlot2)
}

// DetectClashes runs clash detection with the default meridiem policy.
func DetectClashes(sessions []models.Session) []models.Clash {
	return NewEngine(TimeParser{}).DetectClashes(sessions)
}
