package timetable

import (
	"strings"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
)

const (
	maxLabSessions     = 1
	maxLectureSessions = 2
)

// FilterValidSessions keeps, per course, one session per day and kind, at
// most one lab and, for lecture courses, at most two lectures. Kept sessions
// stay in input order, so applying it twice changes nothing.
func FilterValidSessions(sessions []models.Session) []models.Session {
	type courseBucket struct {
		labs     []int
		lectures []int
	}
	buckets := map[string]*courseBucket{}
	var order []string

	for i, session := range sessions {
		bucket, ok := buckets[session.CourseName]
		if !ok {
			bucket = &courseBucket{}
			buckets[session.CourseName] = bucket
			order = append(order, session.CourseName)
		}
		if session.Kind == models.SessionKindLab {
			bucket.labs = append(bucket.labs, i)
		} else {
			bucket.lectures = append(bucket.lectures, i)
		}
	}

	keep := make([]bool, len(sessions))
	for _, name := range order {
		bucket := buckets[name]
		for _, i := range limit(firstPerDay(sessions, bucket.labs), maxLabSessions) {
			keep[i] = true
		}
		if isLabCourse(name) {
			continue
		}
		for _, i := range limit(firstPerDay(sessions, bucket.lectures), maxLectureSessions) {
			keep[i] = true
		}
	}

	result := make([]models.Session, 0, len(sessions))
	for i, session := range sessions {
		if keep[i] {
			result = append(result, session)
		}
	}
	return result
}

func firstPerDay(sessions []models.Session, indexes []int) []int {
	seen := map[string]bool{}
	result := make([]int, 0, len(indexes))
	for _, i := range indexes {
		day := sessions[i].Day
		if seen[day] {
			continue
		}
		seen[day] = true
		result = append(result, i)
	}
	return result
}

func limit(indexes []int, n int) []int {
	if len(indexes) > n {
		return indexes[:n]
	}
	return indexes
}

func isLabCourse(name string) bool {
	return strings.Contains(strings.ToLower(name), "lab")
}
