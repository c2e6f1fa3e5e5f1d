package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
)

func lab(course, section, day, slot string) models.Session {
	return newSession(course, section, day, slot, models.SessionKindLab)
}

func TestFilterValidSessionsLimits(t *testing.T) {
	input := []models.Session{
		lecture("DS", "A", "Monday", "8:30-9:50"),
		lecture("DS", "A", "Monday", "10:00-11:20"),
		lecture("DS", "A", "Wednesday", "8:30-9:50"),
		lecture("DS", "A", "Friday", "8:30-9:50"),
		lab("DS", "A", "Tuesday", "8:30-11:20"),
		lab("DS", "A", "Thursday", "8:30-11:20"),
	}

	result := FilterValidSessions(input)

	assert.Equal(t, []models.Session{input[0], input[2], input[4]}, result)
}

func TestFilterValidSessionsLabCourse(t *testing.T) {
	input := []models.Session{
		lab("DS Lab", "A", "Monday", "8:30-11:20"),
		lab("DS Lab", "A", "Monday", "11:30-2:20"),
		lab("DS Lab", "A", "Tuesday", "8:30-11:20"),
		lecture("DS Lab", "A", "Wednesday", "8:30-9:50"),
	}

	result := FilterValidSessions(input)

	assert.Equal(t, []models.Session{input[0]}, result)
}

func TestFilterValidSessionsKeepsCoursesSeparate(t *testing.T) {
	input := []models.Session{
		lecture("DS", "A", "Monday", "8:30-9:50"),
		lecture("OOP", "B", "Monday", "8:30-9:50"),
		lecture("OOP", "B", "Tuesday", "8:30-9:50"),
		lecture("DS", "A", "Tuesday", "8:30-9:50"),
	}
	assert.Equal(t, input, FilterValidSessions(input))
}

func TestFilterValidSessionsIdempotent(t *testing.T) {
	input := []models.Session{
		lecture("DS", "A", "Monday", "8:30-9:50"),
		lecture("DS", "A", "Monday", "10:00-11:20"),
		lab("DS", "A", "Monday", "11:30-2:20"),
		lecture("DS", "A", "Thursday", "8:30-9:50"),
		lecture("DS", "A", "Friday", "8:30-9:50"),
		lab("Networks Lab", "C", "Friday", "11:30-2:20"),
		lab("Networks Lab", "C", "Friday", "8:30-11:20"),
	}

	once := FilterValidSessions(input)
	twice := FilterValidSessions(once)

	assert.Equal(t, once, twice)
	assert.Len(t, once, 4)
}

func TestFilterValidSessionsEmpty(t *testing.T) {
	assert.Empty(t, FilterValidSessions(nil))
}
