package timetable

import (
	"fmt"
	"regexp"
	"strings"
)

// SectionRule extracts a one-letter section code from cell text.
type SectionRule struct {
	Name    string
	pattern func(department string) *regexp.Regexp
}

// SectionRules are tried in order and the first match wins. Reordering them
// changes how ambiguous cells parse.
var SectionRules = []SectionRule{
	{Name: "dept-section", pattern: func(dept string) *regexp.Regexp {
		return regexp.MustCompile(fmt.Sprintf(`\(\s*%s\s*-\s*([A-Z])\s*\)`, departmentExpr(dept)))
	}},
	{Name: "group-lab", pattern: func(dept string) *regexp.Regexp {
		return regexp.MustCompile(fmt.Sprintf(`\(\s*%s\s*-\s*([A-Z])\s*,\s*G\s*-?\s*\d+\s*\)`, departmentExpr(dept)))
	}},
	{Name: "dash-suffix", pattern: func(string) *regexp.Regexp {
		return dashSuffixPattern
	}},
	{Name: "paren-letter", pattern: func(string) *regexp.Regexp {
		return parenLetterPattern
	}},
	{Name: "lone-letter", pattern: func(string) *regexp.Regexp {
		return loneLetterPattern
	}},
}

var (
	dashSuffixPattern  = regexp.MustCompile(`\s*-\s*([A-Z])\b`)
	parenLetterPattern = regexp.MustCompile(`\(\s*([A-Z])\s*\)`)
	loneLetterPattern  = regexp.MustCompile(`\s([A-Z])\s`)

	departmentTokenPattern = regexp.MustCompile(`\b[A-Z]{2,4}\b`)
	emptyParensPattern     = regexp.MustCompile(`\(\s*\)`)
	trailingDashPattern    = regexp.MustCompile(`[\s\-–,]+$`)
	leadingDashPattern     = regexp.MustCompile(`^[\s\-–,]+`)
)

func departmentExpr(dept string) string {
	if dept == "" {
		return `[A-Za-z]{2,4}`
	}
	return `(?i:` + regexp.QuoteMeta(dept) + `)`
}

// SectionMatch is the result of running SectionRules over a cell.
type SectionMatch struct {
	Section string
	Name    string
	Rule    string
}

type compiledRule struct {
	name string
	re   *regexp.Regexp
}

// sectionParser holds SectionRules compiled for one department.
type sectionParser struct {
	rules []compiledRule
}

func newSectionParser(department string) sectionParser {
	rules := make([]compiledRule, 0, len(SectionRules))
	for _, rule := range SectionRules {
		rules = append(rules, compiledRule{name: rule.Name, re: rule.pattern(department)})
	}
	return sectionParser{rules: rules}
}

func (p sectionParser) extract(text string) SectionMatch {
	for _, rule := range p.rules {
		loc := rule.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		section := text[loc[2]:loc[3]]
		rest := text[:loc[0]] + " " + text[loc[1]:]
		return SectionMatch{Section: section, Name: tidyCourseName(rest), Rule: rule.name}
	}
	return SectionMatch{Name: tidyCourseName(text)}
}

// ExtractSection finds the section code of text and returns the course name
// with the matched marker removed. Section is empty when no rule matched.
func ExtractSection(text, department string) SectionMatch {
	return newSectionParser(department).extract(text)
}

// tidyCourseName drops embedded times, empty parens and stray dashes.
func tidyCourseName(text string) string {
	name, _, _ := ParseEmbeddedTime(text)
	name = emptyParensPattern.ReplaceAllString(name, "")
	name = trailingDashPattern.ReplaceAllString(name, "")
	name = leadingDashPattern.ReplaceAllString(name, "")
	return cleanName(name)
}

// DepartmentFromBatch derives the department code from a batch label such as
// "BS-CS (2022)" or "BSCS 2022 SE".
func DepartmentFromBatch(batch string) string {
	parts := strings.Split(batch, "-")
	if len(parts) >= 2 {
		token := strings.TrimSpace(parts[1])
		end := 0
		for end < len(token) && token[end] >= 'A' && token[end] <= 'Z' {
			end++
		}
		if end >= 2 && end <= 4 {
			return token[:end]
		}
	}
	for _, token := range departmentTokenPattern.FindAllString(batch, -1) {
		if token != "BS" {
			return token
		}
	}
	return ""
}

// sectionMarkers are the substrings that tie a cell to a department and section.
func sectionMarkers(department, section string) []string {
	return []string{
		fmt.Sprintf("(%s-%s)", department, section),
		fmt.Sprintf("-%s)", section),
		fmt.Sprintf("-%s ", section),
		fmt.Sprintf("(%s)", section),
		fmt.Sprintf(" %s)", section),
	}
}
