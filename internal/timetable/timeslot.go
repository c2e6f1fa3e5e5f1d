package timetable

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
)

// DefaultPeriodMinutes is the length assumed for a time slot with a single clock token.
const DefaultPeriodMinutes = 50

var (
	clockPattern    = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	meridiemPattern = regexp.MustCompile(`(?i)(?:^|[^a-z])([ap])\.?m\b`)
	embeddedPattern = regexp.MustCompile(`(?i)\d{1,2}:\d{2}(?:\s*[ap]\.?m\.?)?(?:\s*[-–]\s*\d{1,2}:\d{2}(?:\s*[ap]\.?m\.?)?)?`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// MeridiemPolicy resolves hours written without an AM/PM marker.
// Hours in [MorningFrom, MorningTo] stay as they are, 12 is noon and
// hours in [1, AfternoonTo] are moved to the afternoon.
type MeridiemPolicy struct {
	MorningFrom int
	MorningTo   int
	AfternoonTo int
}

// DefaultMeridiemPolicy matches a day running from 8:00 until about 7:00 PM.
var DefaultMeridiemPolicy = MeridiemPolicy{MorningFrom: 8, MorningTo: 11, AfternoonTo: 7}

// Hour24 maps an ambiguous clock hour onto the 24h clock.
func (p MeridiemPolicy) Hour24(hour int) int {
	switch {
	case hour >= p.MorningFrom && hour <= p.MorningTo:
		return hour
	case hour == 12:
		return 12
	case hour >= 1 && hour <= p.AfternoonTo:
		return hour + 12
	}
	return hour
}

// TimeParser turns free-text time slots into minutes since midnight.
type TimeParser struct {
	Policy MeridiemPolicy
}

// NewTimeParser returns a parser for the given policy; a zero policy means the default.
func NewTimeParser(policy MeridiemPolicy) TimeParser {
	if policy == (MeridiemPolicy{}) {
		policy = DefaultMeridiemPolicy
	}
	return TimeParser{Policy: policy}
}

// Parse returns the start and end of text in minutes since midnight, or the
// UnknownMinutes pair when no clock token is present.
func (p TimeParser) Parse(text string) (int, int) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.EqualFold(trimmed, "unknown") {
		return models.UnknownMinutes, models.UnknownMinutes
	}
	tokens := clockPattern.FindAllStringSubmatch(trimmed, -1)
	if len(tokens) == 0 {
		return models.UnknownMinutes, models.UnknownMinutes
	}

	var markers []string
	for _, m := range meridiemPattern.FindAllStringSubmatch(trimmed, -1) {
		markers = append(markers, strings.ToLower(m[1]))
	}

	minutes := make([]int, 0, 2)
	for i, token := range tokens {
		if i == 2 {
			break
		}
		hour, _ := strconv.Atoi(token[1])
		minute, _ := strconv.Atoi(token[2])
		if len(markers) > 0 {
			hour = withMarker(hour, markers[min(i, len(markers)-1)])
		} else {
			hour = p.Policy.Hour24(hour)
		}
		minutes = append(minutes, hour*60+minute)
	}

	start := minutes[0]
	if len(minutes) == 1 {
		return start, start + DefaultPeriodMinutes
	}
	end := minutes[1]
	// 11:30-1:00 style ranges cross noon when the policy left the end hour alone.
	if end < start && end+12*60 >= start {
		end += 12 * 60
	}
	if end < start {
		start, end = end, start
	}
	return start, end
}

func withMarker(hour int, marker string) int {
	switch marker {
	case "p":
		if hour < 12 {
			return hour + 12
		}
	case "a":
		if hour == 12 {
			return 0
		}
	}
	return hour
}

// Overlap reports whether two time slots overlap as half-open intervals.
// Slots that cannot be parsed never overlap anything.
func (p TimeParser) Overlap(a, b string) bool {
	startA, endA := p.Parse(a)
	startB, endB := p.Parse(b)
	return minutesOverlap(startA, endA, startB, endB)
}

func minutesOverlap(startA, endA, startB, endB int) bool {
	if startA == models.UnknownMinutes || startB == models.UnknownMinutes ||
		endA == models.UnknownMinutes || endB == models.UnknownMinutes {
		return false
	}
	return !(endA <= startB || endB <= startA)
}

// ParseTimeSlot parses text with the default meridiem policy.
func ParseTimeSlot(text string) (int, int) {
	return NewTimeParser(DefaultMeridiemPolicy).Parse(text)
}

// TimeSlotsOverlap compares two slots with the default meridiem policy.
func TimeSlotsOverlap(a, b string) bool {
	return NewTimeParser(DefaultMeridiemPolicy).Overlap(a, b)
}

// ParseEmbeddedTime strips a standalone H:MM or H:MM-H:MM token from a cell
// and returns the remaining name, the token, and whether one was found.
func ParseEmbeddedTime(text string) (string, string, bool) {
	for _, loc := range embeddedPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isWordByte(text[start-1]) {
			continue
		}
		if end < len(text) && isDigitByte(text[end]) {
			continue
		}
		slot := spacePattern.ReplaceAllString(strings.TrimSpace(text[start:end]), "")
		slot = strings.ReplaceAll(slot, "–", "-")

		left, openedParen := start, false
		for left > 0 && (isSeparator(text[left-1]) || text[left-1] == '(' || text[left-1] == '[') {
			if text[left-1] == '(' || text[left-1] == '[' {
				openedParen = true
			}
			left--
		}
		right := end
		for right < len(text) && (isSeparator(text[right]) || (openedParen && (text[right] == ')' || text[right] == ']'))) {
			right++
		}
		name := cleanName(text[:left] + " " + text[right:])
		return name, slot, true
	}
	return cleanName(text), "", false
}

func isSeparator(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '-', ',', '|', '/', '@':
		return true
	}
	return false
}

func isWordByte(b byte) bool {
	return isDigitByte(b) || unicode.IsLetter(rune(b))
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

func cleanName(text string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}
