package main

import (
	"fmt"
	"strings"

	"github.com/AHSANooo/Clashes-Detector/internal/dto"
)

// parseCourseRef accepts a catalog ID or "Name:Section:Batch". The section
// may be empty for courses taught without one.
func parseCourseRef(raw string) (dto.CourseRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return dto.CourseRef{}, fmt.Errorf("empty course reference")
	}
	if !strings.Contains(raw, ":") {
		return dto.CourseRef{ID: raw}, nil
	}
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return dto.CourseRef{}, fmt.Errorf("course %q: want Name:Section:Batch", raw)
	}
	ref := dto.CourseRef{
		Name:    strings.TrimSpace(parts[0]),
		Section: strings.TrimSpace(parts[1]),
		Batch:   strings.TrimSpace(parts[2]),
	}
	if ref.Name == "" || ref.Batch == "" {
		return dto.CourseRef{}, fmt.Errorf("course %q: name and batch are required", raw)
	}
	return ref, nil
}

// parseExclusions turns repeated "Course=A,B" values into the excluded
// sections map. Repeating a course adds to its list.
func parseExclusions(values []string) (map[string][]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	excluded := make(map[string][]string, len(values))
	for _, value := range values {
		course, sections, ok := strings.Cut(value, "=")
		course = strings.TrimSpace(course)
		if !ok || course == "" {
			return nil, fmt.Errorf("exclusion %q: want Course=Section[,Section]", value)
		}
		for _, section := range strings.Split(sections, ",") {
			if section = strings.TrimSpace(section); section != "" {
				excluded[course] = append(excluded[course], section)
			}
		}
	}
	return excluded, nil
}

// exportFormat derives the export format from an output file name.
func exportFormat(path string) (string, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return "csv", nil
	case strings.HasSuffix(lower, ".pdf"):
		return "pdf", nil
	default:
		return "", fmt.Errorf("export %q: file must end in .csv or .pdf", path)
	}
}
