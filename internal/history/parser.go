package history

import (
	"strings"
	"time"
)

const (
	fieldDelimiterConstant            = "|"
	typeTagOpenConstant               = "["
	typeTagCloseConstant              = "]"
	typeTagTrailingSpaceConstant      = " "
	shortFormFieldLimitConstant       = 4
	detailedFormFieldLimitConstant    = 6
	shortFormMinimumFieldsConstant    = 4
	detailedFormMinimumFieldsConstant = 5
	dateTimeSeparatorConstant         = "T"
	dateOnlyLayoutConstant            = "2006-01-02"
	dateTimeLayoutConstant            = "2006-01-02T15:04:05"
)

// ParseShortLines converts hash|date|author|subject lines into commit records.
//
// Lines with fewer than four fields are silently dropped. The delimiter is not
// escaped by git, so a delimiter inside a subject shifts fields; that matches
// the original tool and is tolerated rather than detected.
func ParseShortLines(lines []string, clock Clock) []CommitRecord {
	records := []CommitRecord{}
	for _, line := range lines {
		fields := strings.SplitN(line, fieldDelimiterConstant, shortFormFieldLimitConstant)
		if len(fields) < shortFormMinimumFieldsConstant {
			continue
		}

		typeTag, subject := ExtractTypeTag(fields[3])
		records = append(records, CommitRecord{
			Hash:    fields[0],
			Date:    parseCommitDate(fields[1], clock),
			Author:  fields[2],
			Subject: subject,
			Type:    typeTag,
		})
	}
	return records
}

// ParseDetailedLines converts hash|author|email|date|subject[|body] lines into commit records.
func ParseDetailedLines(lines []string, clock Clock) []CommitRecord {
	records := []CommitRecord{}
	for _, line := range lines {
		fields := strings.SplitN(line, fieldDelimiterConstant, detailedFormFieldLimitConstant)
		if len(fields) < detailedFormMinimumFieldsConstant {
			continue
		}

		typeTag, subject := ExtractTypeTag(fields[4])
		record := CommitRecord{
			Hash:    fields[0],
			Author:  fields[1],
			Email:   fields[2],
			Date:    parseCommitDate(fields[3], clock),
			Subject: subject,
			Type:    typeTag,
		}
		if len(fields) > detailedFormMinimumFieldsConstant {
			record.Body = fields[5]
		}
		records = append(records, record)
	}
	return records
}

// ExtractTypeTag pulls a leading [tag] prefix from a subject line.
//
// The tag is lower-cased and stripped together with one following space. A
// missing closing bracket leaves the subject unchanged with the catch-all type.
func ExtractTypeTag(subject string) (string, string) {
	if !strings.HasPrefix(subject, typeTagOpenConstant) {
		return TypeTagOther, subject
	}

	closingIndex := strings.Index(subject, typeTagCloseConstant)
	if closingIndex <= 0 {
		return TypeTagOther, subject
	}

	typeTag := strings.ToLower(subject[1:closingIndex])
	remainder := subject[closingIndex+1:]
	remainder = strings.TrimPrefix(remainder, typeTagTrailingSpaceConstant)
	return typeTag, remainder
}

// parseCommitDate parses a locale-independent ISO-like timestamp.
//
// A single embedded space is normalized to the date/time separator and any
// trailing timezone offset is discarded; all times are treated as naive local
// times. Unparseable input substitutes the current wall-clock time, which
// silently corrupts ordering for malformed lines — a documented limitation of
// the original tool that is deliberately preserved.
func parseCommitDate(rawDate string, clock Clock) time.Time {
	if clock == nil {
		clock = SystemClock{}
	}

	normalized := normalizeCommitDate(rawDate)
	if parsed, parseError := time.Parse(dateTimeLayoutConstant, normalized); parseError == nil {
		return parsed
	}
	if parsed, parseError := time.Parse(dateOnlyLayoutConstant, normalized); parseError == nil {
		return parsed
	}
	return clock.Now()
}

func normalizeCommitDate(rawDate string) string {
	segments := strings.Fields(strings.TrimSpace(rawDate))
	if len(segments) == 0 {
		return ""
	}

	normalized := segments[0]
	if len(segments) > 1 {
		normalized += dateTimeSeparatorConstant + segments[1]
	}

	normalized = strings.TrimSuffix(normalized, "Z")
	if offsetIndex := trailingOffsetIndex(normalized); offsetIndex > 0 {
		normalized = normalized[:offsetIndex]
	}
	return normalized
}

// trailingOffsetIndex locates a +hh:mm / -hhmm style suffix after the time part.
func trailingOffsetIndex(value string) int {
	separatorIndex := strings.Index(value, dateTimeSeparatorConstant)
	if separatorIndex < 0 {
		return -1
	}
	for position := len(value) - 1; position > separatorIndex; position-- {
		if value[position] == '+' || value[position] == '-' {
			return position
		}
	}
	return -1
}
