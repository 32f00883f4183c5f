package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/litrag/internal/core/domain"
)

// intakeSection indexes the five assessment fields.
type intakeSection int

const (
	sectionOccupation intakeSection = iota
	sectionRehab
	sectionPsychology
	sectionFamily
	sectionRelapse
	sectionCount
)

// sectionMarker matches a heading line: optional bullet, "#", bold and
// numbering around the name, then an optional colon.
var sectionMarker = regexp.MustCompile(
	`(?i)^\s*(?P<bullet>[-*]\s+)?(?P<heading>#+\s*)?(?P<bold>\*\*)?\s*(?P<num>\d+[.)]\s*)?(?:\*\*)?\s*` +
		`(?P<name>occupation|experience in rehab|psychological insights?|family support|relapse probability)\b` +
		`\s*(?:\*\*)?\s*(?P<colon>:)?\s*(?:\*\*)?\s*(?P<rest>.*)$`)

// inlineMarker finds a heading inside a line. Only bold or numbered names
// followed by a colon count, as in "**2. Family Support:**".
var inlineMarker = regexp.MustCompile(
	`(?i)(?:\*\*\s*(?:\d+[.)]\s*)?|\d+[.)]\s+)` +
		`(?:occupation|experience in rehab|psychological insights?|family support|relapse probability)\b` +
		`\s*(?:\*\*)?\s*:`)

var (
	markerBullet  = sectionMarker.SubexpIndex("bullet")
	markerHeading = sectionMarker.SubexpIndex("heading")
	markerBold    = sectionMarker.SubexpIndex("bold")
	markerNum     = sectionMarker.SubexpIndex("num")
	markerName    = sectionMarker.SubexpIndex("name")
	markerColon   = sectionMarker.SubexpIndex("colon")
	markerRest    = sectionMarker.SubexpIndex("rest")
)

func sectionFor(name string) intakeSection {
	switch strings.ToLower(name) {
	case "occupation":
		return sectionOccupation
	case "experience in rehab":
		return sectionRehab
	case "family support":
		return sectionFamily
	case "relapse probability":
		return sectionRelapse
	default:
		return sectionPsychology
	}
}

// ParseSections splits model output into the five assessment fields.
// Text before the first heading is ignored, a repeated heading keeps its
// first body and a missing heading leaves its field empty.
func ParseSections(text string) domain.IntakeAssessment {
	var (
		bodies  [sectionCount][]string
		seen    [sectionCount]bool
		current = intakeSection(-1)
	)

	for _, line := range segments(text) {
		if section, rest, ok := matchMarker(line); ok {
			if seen[section] {
				current = -1
				continue
			}
			seen[section] = true
			current = section
			if rest != "" {
				bodies[section] = append(bodies[section], rest)
			}
			continue
		}
		if current >= 0 {
			bodies[current] = append(bodies[current], line)
		}
	}

	field := func(s intakeSection) string {
		return strings.TrimSpace(strings.Join(bodies[s], "\n"))
	}
	return domain.IntakeAssessment{
		Occupation:            field(sectionOccupation),
		RehabExperience:       field(sectionRehab),
		PsychologicalInsights: field(sectionPsychology),
		FamilySupport:         field(sectionFamily),
		RelapseProbability:    field(sectionRelapse),
		Raw:                   text,
	}
}

// segments splits text into lines, then splits each line again before every
// inline heading so that a response written on one line still yields one
// heading per segment.
func segments(text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		start := 0
		for _, loc := range inlineMarker.FindAllStringIndex(line, -1) {
			if strings.TrimLeft(line[:loc[0]], " \t-*#") == "" {
				continue
			}
			out = append(out, strings.TrimRight(line[start:loc[0]], " \t"))
			start = loc[0]
		}
		out = append(out, line[start:])
	}
	return out
}

// matchMarker reports whether line is a heading. A bare name only counts
// when it is decorated, followed by a colon or alone on its line, so prose
// that happens to start with a heading word stays prose.
func matchMarker(line string) (intakeSection, string, bool) {
	m := sectionMarker.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}

	rest := strings.TrimSpace(m[markerRest])
	decorated := m[markerHeading] != "" || m[markerBold] != "" || m[markerNum] != "" || m[markerColon] != ""
	if !decorated && rest != "" {
		return 0, "", false
	}
	if m[markerBullet] != "" && !decorated {
		return 0, "", false
	}
	return sectionFor(m[markerName]), rest, true
}
