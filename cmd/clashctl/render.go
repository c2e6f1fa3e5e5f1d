package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
	"github.com/AHSANooo/Clashes-Detector/internal/timetable"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true).Padding(1, 0, 0, 0)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	sessionCells = []string{"Day", "Time", "Course", "Section", "Kind", "Room"}
)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render(title))
}

func printCatalog(w io.Writer, catalog *models.Catalog, batch string) {
	rows := make([][]string, 0, len(catalog.Courses))
	for _, course := range catalog.Courses {
		if batch != "" && !strings.EqualFold(course.Batch, batch) {
			continue
		}
		rows = append(rows, []string{course.ID, course.Name, course.Section, course.Batch})
	}

	printTitle(w, fmt.Sprintf("%d course(s)", len(rows)))
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No courses found."))
		return
	}
	fmt.Fprintln(w, renderTable([]string{"ID", "Course", "Section", "Batch"}, rows))
	if batch == "" && len(catalog.Batches) > 0 {
		fmt.Fprintln(w, mutedStyle.Render("Batches: "+strings.Join(catalog.Batches, ", ")))
	}
}

func printSessions(w io.Writer, sessions []models.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No sessions."))
		return
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{s.Day, s.TimeSlot, s.CourseName, s.Section, string(s.Kind), s.Room})
	}
	fmt.Fprintln(w, renderTable(sessionCells, rows))
}

func printClashes(w io.Writer, clashes []models.Clash) {
	if len(clashes) == 0 {
		fmt.Fprintln(w, okStyle.Render("No clashes."))
		return
	}
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d clash(es):", len(clashes))))
	for _, clash := range clashes {
		fmt.Fprintf(w, "• %s\n", timetable.FormatClash(clash))
	}
}

func printAssignment(w io.Writer, result models.ScheduleAssignment) {
	style := okStyle
	if !result.Success {
		style = warnStyle
	}
	printTitle(w, "Best section assignment")
	fmt.Fprintln(w, style.Render(result.Message))

	rows := make([][]string, 0, len(result.Choices))
	for _, choice := range result.Choices {
		rows = append(rows, []string{choice.Course, choice.Section})
	}
	fmt.Fprintln(w, renderTable([]string{"Course", "Section"}, rows))
	printSessions(w, result.Sessions)
	printClashes(w, result.Clashes)
	if result.Truncated {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Search stopped after %d assignment(s); a better one may exist.", result.Leaves)))
	}
}
