package stats

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitt-tools/gitt/internal/gitrepo"
	"github.com/gitt-tools/gitt/internal/history"
)

const (
	historySourceRequiredMessageConstant = "history source must not be nil"

	reportHeaderConstant              = "# Repository Statistics"
	authorSectionHeaderConstant       = "## Author Contributions"
	fileSectionHeaderTemplateConstant = "## File Activity (Top %d)"
	authorTableHeaderConstant         = "| Author | Commits | Lines Added | Lines Removed |"
	authorTableRuleConstant           = "| --- | ---: | ---: | ---: |"
	authorTableRowTemplateConstant    = "| %s | %d | %d | %d |"
	fileTableHeaderConstant           = "| File | Changes | Size (bytes) |"
	fileTableRuleConstant             = "| --- | ---: | ---: |"
	fileTableRowTemplateConstant      = "| %s | %d | %d |"
	noActivityMessageConstant         = "No commits found for the requested range."
	markdownLineSeparatorConstant     = "\n"
)

// HistorySource exposes the git queries the aggregator consumes.
type HistorySource interface {
	CommitLog(executionContext context.Context, repositoryPath string, prettyFormat string, query gitrepo.LogQuery) []string
	NumstatLog(executionContext context.Context, repositoryPath string, query gitrepo.LogQuery) string
	NameOnlyLog(executionContext context.Context, repositoryPath string, query gitrepo.LogQuery) string
}

// OSFileSizer resolves file sizes from the working tree.
type OSFileSizer struct {
	Root string
}

// SizeBytes returns the current size of the path, 0 when it no longer exists.
func (sizer OSFileSizer) SizeBytes(path string) int64 {
	fileInformation, statError := os.Stat(filepath.Join(sizer.Root, path))
	if statError != nil {
		return 0
	}
	return fileInformation.Size()
}

// Service derives activity reports by querying git fresh on every call.
type Service struct {
	source HistorySource
	sizer  FileSizer
	clock  history.Clock
}

// NewService constructs a statistics service.
func NewService(source HistorySource, sizer FileSizer, clock history.Clock) (*Service, error) {
	if source == nil {
		return nil, errors.New(historySourceRequiredMessageConstant)
	}
	if clock == nil {
		clock = history.SystemClock{}
	}
	return &Service{source: source, sizer: sizer, clock: clock}, nil
}

// BuildReport runs both reductions over the queried commit range.
func (service *Service) BuildReport(executionContext context.Context, repositoryPath string, query gitrepo.LogQuery, fileLimit int) Report {
	if fileLimit <= 0 {
		fileLimit = TopFileLimit
	}

	commitLines := service.source.CommitLog(executionContext, repositoryPath, gitrepo.ShortCommitLogFormat, query)
	records := history.ParseShortLines(commitLines, service.clock)

	deltas := ParseAuthorLineDeltas(service.source.NumstatLog(executionContext, repositoryPath, query))
	touchedFiles := ParseTouchedFiles(service.source.NameOnlyLog(executionContext, repositoryPath, query))

	sizer := service.sizer
	if sizer == nil {
		sizer = OSFileSizer{Root: repositoryPath}
	}

	return Report{
		Authors: ReduceAuthorContributions(records, deltas),
		Files:   ReduceFileActivity(touchedFiles, sizer, fileLimit),
	}
}

// RenderMarkdown formats the report as a Markdown document.
func RenderMarkdown(report Report, fileLimit int) string {
	if fileLimit <= 0 {
		fileLimit = TopFileLimit
	}

	documentLines := []string{reportHeaderConstant, ""}

	if len(report.Authors) == 0 && len(report.Files) == 0 {
		documentLines = append(documentLines, noActivityMessageConstant, "")
		return strings.Join(documentLines, markdownLineSeparatorConstant)
	}

	if len(report.Authors) > 0 {
		documentLines = append(documentLines, authorSectionHeaderConstant, "", authorTableHeaderConstant, authorTableRuleConstant)
		for _, authorStat := range report.Authors {
			documentLines = append(documentLines, fmt.Sprintf(authorTableRowTemplateConstant, authorStat.Author, authorStat.Commits, authorStat.LinesAdded, authorStat.LinesRemoved))
		}
		documentLines = append(documentLines, "")
	}

	if len(report.Files) > 0 {
		documentLines = append(documentLines, fmt.Sprintf(fileSectionHeaderTemplateConstant, fileLimit), "", fileTableHeaderConstant, fileTableRuleConstant)
		for _, fileStat := range report.Files {
			documentLines = append(documentLines, fmt.Sprintf(fileTableRowTemplateConstant, fileStat.Path, fileStat.ChangeCount, fileStat.SizeBytes))
		}
		documentLines = append(documentLines, "")
	}

	return strings.Join(documentLines, markdownLineSeparatorConstant)
}
