package changelog

import (
	"os"
	"strings"
)

const (
	changelogFileModeConstant = 0o644
	entrySeparatorConstant    = "\n\n"
	trailingNewlineConstant   = "\n"
)

// WriteEntry persists a changelog entry, prepending it to any existing
// document so the newest release stays on top. The write is a whole-file
// rewrite without locking.
func WriteEntry(outputPath string, content string) error {
	trimmedContent := strings.TrimRight(content, trailingNewlineConstant)

	existingContent, readError := os.ReadFile(outputPath)
	if readError == nil && len(existingContent) > 0 {
		combined := trimmedContent + entrySeparatorConstant + string(existingContent)
		return os.WriteFile(outputPath, []byte(combined), changelogFileModeConstant)
	}

	return os.WriteFile(outputPath, []byte(trimmedContent+trailingNewlineConstant), changelogFileModeConstant)
}
