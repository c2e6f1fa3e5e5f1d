package models

import (
	"fmt"
	"math"
	"strings"
)

// NoFillSignature is the colour signature of a cell with a white (unset) background.
const NoFillSignature = "1.001.001.00"

// Weekdays lists the sheet names processed, in timetable order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// Cell is one grid position. Empty Text or Color means the field is absent.
type Cell struct {
	Text  string `json:"text,omitempty"`
	Color string `json:"color,omitempty"`
}

// HasText reports whether the cell carries non-blank display text.
func (c Cell) HasText() bool {
	return strings.TrimSpace(c.Text) != ""
}

// HasFill reports whether the cell carries a background other than no fill.
func (c Cell) HasFill() bool {
	return c.Color != "" && c.Color != NoFillSignature
}

// Sheet is a named 2-D array of cells, one per weekday.
type Sheet struct {
	Name string   `json:"name"`
	Rows [][]Cell `json:"rows"`
}

// Cell returns the cell at (row, col) or an empty cell when out of range.
func (s *Sheet) Cell(row, col int) Cell {
	if s == nil || row < 0 || row >= len(s.Rows) {
		return Cell{}
	}
	cells := s.Rows[row]
	if col < 0 || col >= len(cells) {
		return Cell{}
	}
	return cells[col]
}

// Document is an already-fetched grid source.
type Document struct {
	Title  string  `json:"title,omitempty"`
	Sheets []Sheet `json:"sheets"`
}

// Sheet finds a sheet by name, ignoring case and surrounding whitespace.
func (d *Document) Sheet(name string) (*Sheet, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Sheets {
		if strings.EqualFold(strings.TrimSpace(d.Sheets[i].Name), name) {
			return &d.Sheets[i], true
		}
	}
	return nil, false
}

// DaySheet pairs a weekday sheet with its canonical day name. Day is always
// one of Weekdays, whatever casing or padding the sheet title carries.
type DaySheet struct {
	Day   string
	Sheet *Sheet
}

// WeekdaySheets returns the weekday sheets present in the document, Monday first.
func (d *Document) WeekdaySheets() []DaySheet {
	sheets := make([]DaySheet, 0, len(Weekdays))
	for _, day := range Weekdays {
		if sheet, ok := d.Sheet(day); ok {
			sheets = append(sheets, DaySheet{Day: day, Sheet: sheet})
		}
	}
	return sheets
}

// ColorSignature normalises three 0-1 colour channels into the signature key,
// each channel rounded to two decimals.
func ColorSignature(red, green, blue float64) string {
	return fmt.Sprintf("%.2f%.2f%.2f", round2(red), round2(green), round2(blue))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WeekdayIndex returns the position of day in Weekdays, or len(Weekdays) when unknown.
func WeekdayIndex(day string) int {
	for i, name := range Weekdays {
		if strings.EqualFold(name, day) {
			return i
		}
	}
	return len(Weekdays)
}
