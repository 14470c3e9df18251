package changelog

import (
	"fmt"
	"strings"

	"github.com/gitt-tools/gitt/internal/history"
)

const (
	versionHeaderTemplateConstant    = "## [%s] - %s"
	unreleasedHeaderTemplateConstant = "## Unreleased - %s"
	sectionHeaderTemplateConstant    = "### %s"
	bulletLineTemplateConstant       = "- %s ([%s]) by %s"
	headerDateLayoutConstant         = "2006-01-02"
	rendererLineSeparatorConstant    = "\n"
)

// RenderBasic produces the deterministic non-AI changelog document.
//
// The header names the version (or "Unreleased") with the clock's current
// date, followed by one section per non-empty category in the fixed category
// order. Identical categorized input and a frozen clock yield byte-identical
// output.
func RenderBasic(categorized history.CategorizedCommits, version string, clock history.Clock) string {
	if clock == nil {
		clock = history.SystemClock{}
	}
	currentDate := clock.Now().Format(headerDateLayoutConstant)

	documentLines := []string{}
	if len(version) > 0 {
		documentLines = append(documentLines, fmt.Sprintf(versionHeaderTemplateConstant, version, currentDate))
	} else {
		documentLines = append(documentLines, fmt.Sprintf(unreleasedHeaderTemplateConstant, currentDate))
	}
	documentLines = append(documentLines, "")

	for _, categoryKey := range history.OrderedCategoryKeys() {
		bucketRecords := categorized.Bucket(categoryKey)
		if len(bucketRecords) == 0 {
			continue
		}

		documentLines = append(documentLines, fmt.Sprintf(sectionHeaderTemplateConstant, categoryKey.DisplayTitle()))
		for _, record := range bucketRecords {
			documentLines = append(documentLines, fmt.Sprintf(bulletLineTemplateConstant, record.Subject, record.Hash, record.Author))
		}
		documentLines = append(documentLines, "")
	}

	return strings.Join(documentLines, rendererLineSeparatorConstant)
}
