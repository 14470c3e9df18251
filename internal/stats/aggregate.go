package stats

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gitt-tools/gitt/internal/history"
)

const (
	commitHeaderPrefixConstant     = "commit|"
	commitHeaderFieldLimitConstant = 3
	headerFieldDelimiterConstant   = "|"
	numstatFieldDelimiterConstant  = "\t"
	numstatBinaryMarkerConstant    = "-"
	numstatMinimumFieldsConstant   = 3
)

// ParseAuthorLineDeltas reduces git log --numstat output (with commit|hash|author
// headers) into per-author line deltas. Binary change markers contribute zero.
func ParseAuthorLineDeltas(numstatOutput string) map[string]LineDelta {
	deltas := map[string]LineDelta{}
	currentAuthor := ""

	for _, outputLine := range strings.Split(numstatOutput, "\n") {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) == 0 {
			continue
		}

		if strings.HasPrefix(trimmedLine, commitHeaderPrefixConstant) {
			headerFields := strings.SplitN(trimmedLine, headerFieldDelimiterConstant, commitHeaderFieldLimitConstant)
			if len(headerFields) == commitHeaderFieldLimitConstant {
				currentAuthor = headerFields[2]
			}
			continue
		}
		if len(currentAuthor) == 0 {
			continue
		}

		numstatFields := strings.SplitN(outputLine, numstatFieldDelimiterConstant, numstatMinimumFieldsConstant)
		if len(numstatFields) < numstatMinimumFieldsConstant {
			continue
		}

		delta := deltas[currentAuthor]
		delta.Added += parseNumstatCount(numstatFields[0])
		delta.Removed += parseNumstatCount(numstatFields[1])
		deltas[currentAuthor] = delta
	}

	return deltas
}

// ParseTouchedFiles flattens git log --name-only output (with commit|hash|author
// headers) into one path entry per commit touch.
func ParseTouchedFiles(nameOnlyOutput string) []string {
	touchedFiles := []string{}
	for _, outputLine := range strings.Split(nameOnlyOutput, "\n") {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, commitHeaderPrefixConstant) {
			continue
		}
		touchedFiles = append(touchedFiles, trimmedLine)
	}
	return touchedFiles
}

// ReduceAuthorContributions groups commit records by exact author string,
// counting commits and attaching externally supplied line deltas. The result
// is ranked by commit count descending with a stable first-seen tie-break.
func ReduceAuthorContributions(records []history.CommitRecord, deltas map[string]LineDelta) []AuthorStat {
	authorPositions := map[string]int{}
	authorStats := []AuthorStat{}

	for _, record := range records {
		position, seen := authorPositions[record.Author]
		if !seen {
			position = len(authorStats)
			authorPositions[record.Author] = position
			delta := deltas[record.Author]
			authorStats = append(authorStats, AuthorStat{
				Author:       record.Author,
				LinesAdded:   delta.Added,
				LinesRemoved: delta.Removed,
			})
		}
		authorStats[position].Commits++
	}

	sort.SliceStable(authorStats, func(left int, right int) bool {
		return authorStats[left].Commits > authorStats[right].Commits
	})
	return authorStats
}

// FileSizer resolves the current on-disk size of a repository file.
type FileSizer interface {
	SizeBytes(path string) int64
}

// ReduceFileActivity counts how many commits touch each path, ranks paths by
// count descending with a stable first-seen tie-break, truncates to limit, and
// resolves current sizes (0 for files that no longer exist).
func ReduceFileActivity(touchedFiles []string, sizer FileSizer, limit int) []FileStat {
	pathPositions := map[string]int{}
	fileStats := []FileStat{}

	for _, filePath := range touchedFiles {
		position, seen := pathPositions[filePath]
		if !seen {
			position = len(fileStats)
			pathPositions[filePath] = position
			fileStats = append(fileStats, FileStat{Path: filePath})
		}
		fileStats[position].ChangeCount++
	}

	sort.SliceStable(fileStats, func(left int, right int) bool {
		return fileStats[left].ChangeCount > fileStats[right].ChangeCount
	})

	if limit > 0 && len(fileStats) > limit {
		fileStats = fileStats[:limit]
	}

	if sizer != nil {
		for index := range fileStats {
			fileStats[index].SizeBytes = sizer.SizeBytes(fileStats[index].Path)
		}
	}
	return fileStats
}

func parseNumstatCount(rawCount string) int {
	trimmedCount := strings.TrimSpace(rawCount)
	if trimmedCount == numstatBinaryMarkerConstant {
		return 0
	}
	parsedCount, parseError := strconv.Atoi(trimmedCount)
	if parseError != nil {
		return 0
	}
	return parsedCount
}
