package commitmsg

import (
	"fmt"
	"strings"

	"github.com/gitt-tools/gitt/internal/gitrepo"
)

const (
	promptHeaderConstant = `Generate a detailed commit message based on the following git changes. The commit message should follow this format:

[type] Brief title (under 50 characters)

Detailed description explaining what was changed and why.

For multiple files, group related changes and explain the overall impact.

Guidelines:
1. Title should be concise and use imperative mood (e.g., "Add", "Fix", "Update")
2. Don't include the commit type prefix in the title - it will be added automatically
3. Provide a detailed description in the body explaining:
   - What files were changed and how
   - The purpose of the changes
   - Any new features or improvements added
4. Group related changes together
5. Be specific about functionality added, fixed, or improved`

	promptTypeSectionTemplateConstant     = "Commit Type: %s"
	promptStatisticsSectionHeaderConstant = "File Statistics:"
	promptChangesSectionHeaderConstant    = "File Changes Summary:"
	promptChangeLineTemplateConstant      = "- %s: %s"
	promptHistorySectionHeaderConstant    = "Recent Commit History (for context):"
	promptDiffSectionHeaderConstant       = "Git Diff:"
	promptClosingInstructionConstant      = "Generate a commit message that provides clear understanding of what changed:"
	promptSectionSeparatorConstant        = "\n\n"
)

// ChangeContext carries the repository state the prompt describes.
type ChangeContext struct {
	Changes        []gitrepo.FileChange
	Diff           string
	DiffStat       string
	RecentSubjects string
}

// BuildPrompt renders the commit message request sent to the AI collaborator.
func BuildPrompt(changeContext ChangeContext, commitType string) string {
	promptSections := []string{promptHeaderConstant}

	if len(commitType) > 0 {
		promptSections = append(promptSections, fmt.Sprintf(promptTypeSectionTemplateConstant, commitType))
	}
	if len(strings.TrimSpace(changeContext.DiffStat)) > 0 {
		promptSections = append(promptSections, promptStatisticsSectionHeaderConstant+"\n"+strings.TrimSpace(changeContext.DiffStat))
	}
	if len(changeContext.Changes) > 0 {
		changeLines := []string{promptChangesSectionHeaderConstant}
		for _, fileChange := range changeContext.Changes {
			changeLines = append(changeLines, fmt.Sprintf(promptChangeLineTemplateConstant, fileChange.Path, fileChange.ChangeKind()))
		}
		promptSections = append(promptSections, strings.Join(changeLines, "\n"))
	}
	if len(strings.TrimSpace(changeContext.RecentSubjects)) > 0 {
		promptSections = append(promptSections, promptHistorySectionHeaderConstant+"\n"+strings.TrimSpace(changeContext.RecentSubjects))
	}
	if len(strings.TrimSpace(changeContext.Diff)) > 0 {
		promptSections = append(promptSections, promptDiffSectionHeaderConstant+"\n"+changeContext.Diff)
	}
	promptSections = append(promptSections, promptClosingInstructionConstant)

	return strings.Join(promptSections, promptSectionSeparatorConstant)
}
