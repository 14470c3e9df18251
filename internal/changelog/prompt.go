package changelog

import (
	"fmt"
	"strings"

	"github.com/gitt-tools/gitt/internal/history"
)

const (
	promptCommitLineTemplateConstant  = "- [%s] %s (%s) by %s on %s"
	promptCommitDateLayoutConstant    = "2006-01-02"
	promptVersionLineTemplateConstant = "Version: %s\n\n"

	changelogPromptTemplateConstant = `Generate a professional changelog entry from the following git commits.

Guidelines:
1. Group commits by type (Features, Bug Fixes, Chores, etc.)
2. Use clear, user-friendly language
3. Focus on user-facing changes
4. Include commit hashes for reference
5. Use markdown formatting
6. Be concise but descriptive

%sCommits:
%s

Generate a markdown changelog entry:`
)

// BuildPrompt renders the AI request for a changelog entry from parsed commits.
func BuildPrompt(records []history.CommitRecord, version string) string {
	commitLines := make([]string, 0, len(records))
	for _, record := range records {
		commitLines = append(commitLines, fmt.Sprintf(
			promptCommitLineTemplateConstant,
			record.Type,
			record.Subject,
			record.Hash,
			record.Author,
			record.Date.Format(promptCommitDateLayoutConstant),
		))
	}

	versionLine := ""
	if len(version) > 0 {
		versionLine = fmt.Sprintf(promptVersionLineTemplateConstant, version)
	}

	return fmt.Sprintf(changelogPromptTemplateConstant, versionLine, strings.Join(commitLines, "\n"))
}
