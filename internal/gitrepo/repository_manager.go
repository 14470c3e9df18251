package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gitt-tools/gitt/internal/execshell"
)

const (
	executorRequiredMessageConstant = "git executor must not be nil"

	revParseSubcommandConstant       = "rev-parse"
	insideWorkTreeFlagConstant       = "--is-inside-work-tree"
	abbreviatedReferenceFlagConstant = "--abbrev-ref"
	headReferenceConstant            = "HEAD"
	insideWorkTreeOutputConstant     = "true"

	remoteSubcommandConstant       = "remote"
	remoteGetURLSubcommandConstant = "get-url"
	originRemoteNameConstant       = "origin"

	forEachRefSubcommandConstant = "for-each-ref"
	forEachRefFormatFlagConstant = "--format=%(refname:short)"
	localBranchNamespaceConstant = "refs/heads"

	statusSubcommandConstant    = "status"
	statusPorcelainFlagConstant = "--porcelain"

	diffSubcommandConstant    = "diff"
	diffCachedFlagConstant    = "--cached"
	diffStatFlagConstant      = "--stat"
	pathSeparatorFlagConstant = "--"

	logSubcommandConstant           = "log"
	logDateShortFlagConstant        = "--date=short"
	logDateISOFlagConstant          = "--date=iso8601"
	logNumstatFlagConstant          = "--numstat"
	logNameOnlyFlagConstant         = "--name-only"
	logOnelineFlagConstant          = "--oneline"
	logPrettyFlagTemplateConstant   = "--pretty=format:%s"
	logSinceFlagConstant            = "--since"
	logUntilFlagConstant            = "--until"
	logMaxCountFlagTemplateConstant = "--max-count=%d"

	shortlogSubcommandConstant      = "shortlog"
	shortlogSummaryFlagConstant     = "-sn"
	shortlogAllBranchesFlagConstant = "--all"
	shortlogFieldSeparatorConstant  = "\t"
	shortlogFieldLimitConstant      = 2

	addSubcommandConstant     = "add"
	allPathsSpecifierConstant = "."
	commitSubcommandConstant  = "commit"
	commitMessageFlagConstant = "-m"

	stageFailedTemplateConstant  = "unable to stage files: %s"
	commitFailedTemplateConstant = "unable to create commit: %s"

	// ShortCommitLogFormat encodes one commit per line as hash|date|author|subject.
	ShortCommitLogFormat = "%h|%ad|%an|%s"
	// DetailedCommitLogFormat encodes one commit per line as hash|author|email|date|subject.
	DetailedCommitLogFormat = "%h|%an|%ae|%ad|%s"
	// NumstatLogFormat marks each commit header inside numstat output.
	NumstatLogFormat = "commit|%h|%an"
)

// ErrNotARepository reports the fatal precondition of running outside a git work tree.
var ErrNotARepository = errors.New("not a git repository")

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// LogQuery bounds a commit history query.
type LogQuery struct {
	Since    string
	Until    string
	MaxCount int
}

// FileChange describes one entry of git status --porcelain output.
type FileChange struct {
	StatusCode string
	Path       string
}

// ChangeKind returns a human-readable label for the two-letter status code.
func (change FileChange) ChangeKind() string {
	switch change.StatusCode {
	case "A ":
		return "Added"
	case "M ", " M", "MM":
		return "Modified"
	case "D ", " D":
		return "Deleted"
	case "R ":
		return "Renamed"
	case "??":
		return "New file"
	default:
		return "Changed"
	}
}

// Contributor aggregates one author's commit count across all branches.
type Contributor struct {
	Name    string `json:"name"`
	Commits int    `json:"commits"`
}

// RepositoryManager issues read-only git queries and staging operations.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a manager around the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, errors.New(executorRequiredMessageConstant)
	}
	return &RepositoryManager{executor: executor}, nil
}

// IsRepository reports whether the path lies inside a git work tree.
func (manager *RepositoryManager) IsRepository(executionContext context.Context, repositoryPath string) bool {
	output := manager.queryOutput(executionContext, repositoryPath, revParseSubcommandConstant, insideWorkTreeFlagConstant)
	return strings.TrimSpace(output) == insideWorkTreeOutputConstant
}

// CurrentBranch resolves the checked-out branch name, empty when unavailable.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context, repositoryPath string) string {
	output := manager.queryOutput(executionContext, repositoryPath, revParseSubcommandConstant, abbreviatedReferenceFlagConstant, headReferenceConstant)
	return strings.TrimSpace(output)
}

// RemoteURL resolves the origin remote URL, empty when no remote is configured.
func (manager *RepositoryManager) RemoteURL(executionContext context.Context, repositoryPath string) string {
	output := manager.queryOutput(executionContext, repositoryPath, remoteSubcommandConstant, remoteGetURLSubcommandConstant, originRemoteNameConstant)
	return strings.TrimSpace(output)
}

// ListBranches enumerates local branch names via for-each-ref.
func (manager *RepositoryManager) ListBranches(executionContext context.Context, repositoryPath string) []string {
	output := manager.queryOutput(executionContext, repositoryPath, forEachRefSubcommandConstant, forEachRefFormatFlagConstant, localBranchNamespaceConstant)
	return splitNonEmptyLines(output)
}

// Status lists changed files from git status --porcelain.
func (manager *RepositoryManager) Status(executionContext context.Context, repositoryPath string) []FileChange {
	output := manager.queryOutput(executionContext, repositoryPath, statusSubcommandConstant, statusPorcelainFlagConstant)

	changes := []FileChange{}
	for _, statusLine := range strings.Split(output, "\n") {
		if len(strings.TrimSpace(statusLine)) == 0 || len(statusLine) < 4 {
			continue
		}
		changes = append(changes, FileChange{StatusCode: statusLine[:2], Path: statusLine[3:]})
	}
	return changes
}

// Diff returns the staged diff, falling back to the unstaged diff when no
// staged changes exist, matching the original commit-helper behavior.
func (manager *RepositoryManager) Diff(executionContext context.Context, repositoryPath string, paths []string) string {
	stagedArguments := appendPathArguments([]string{diffSubcommandConstant, diffCachedFlagConstant}, paths)
	stagedOutput := manager.queryOutput(executionContext, repositoryPath, stagedArguments...)
	if len(stagedOutput) > 0 {
		return stagedOutput
	}

	unstagedArguments := appendPathArguments([]string{diffSubcommandConstant}, paths)
	return manager.queryOutput(executionContext, repositoryPath, unstagedArguments...)
}

// DiffStat returns the --stat summary for staged changes, falling back to unstaged changes.
func (manager *RepositoryManager) DiffStat(executionContext context.Context, repositoryPath string, paths []string) string {
	stagedArguments := appendPathArguments([]string{diffSubcommandConstant, diffStatFlagConstant, diffCachedFlagConstant}, paths)
	stagedOutput := manager.queryOutput(executionContext, repositoryPath, stagedArguments...)
	if len(stagedOutput) > 0 {
		return stagedOutput
	}

	unstagedArguments := appendPathArguments([]string{diffSubcommandConstant, diffStatFlagConstant}, paths)
	return manager.queryOutput(executionContext, repositoryPath, unstagedArguments...)
}

// CommitLog returns delimiter-joined commit lines in the requested pretty format.
func (manager *RepositoryManager) CommitLog(executionContext context.Context, repositoryPath string, prettyFormat string, query LogQuery) []string {
	arguments := []string{
		logSubcommandConstant,
		fmt.Sprintf(logPrettyFlagTemplateConstant, prettyFormat),
		logDateShortFlagConstant,
	}
	arguments = appendQueryArguments(arguments, query)

	output := manager.queryOutput(executionContext, repositoryPath, arguments...)
	return splitNonEmptyLines(output)
}

// DetailedCommitLog returns commit lines in the detailed format with full ISO timestamps.
func (manager *RepositoryManager) DetailedCommitLog(executionContext context.Context, repositoryPath string, query LogQuery) []string {
	arguments := []string{
		logSubcommandConstant,
		fmt.Sprintf(logPrettyFlagTemplateConstant, DetailedCommitLogFormat),
		logDateISOFlagConstant,
	}
	arguments = appendQueryArguments(arguments, query)

	output := manager.queryOutput(executionContext, repositoryPath, arguments...)
	return splitNonEmptyLines(output)
}

// NumstatLog returns raw git log --numstat output with commit|hash|author headers.
func (manager *RepositoryManager) NumstatLog(executionContext context.Context, repositoryPath string, query LogQuery) string {
	arguments := []string{
		logSubcommandConstant,
		logNumstatFlagConstant,
		fmt.Sprintf(logPrettyFlagTemplateConstant, NumstatLogFormat),
	}
	arguments = appendQueryArguments(arguments, query)
	return manager.queryOutput(executionContext, repositoryPath, arguments...)
}

// NameOnlyLog returns raw git log --name-only output with commit|hash|author headers.
func (manager *RepositoryManager) NameOnlyLog(executionContext context.Context, repositoryPath string, query LogQuery) string {
	arguments := []string{
		logSubcommandConstant,
		logNameOnlyFlagConstant,
		fmt.Sprintf(logPrettyFlagTemplateConstant, NumstatLogFormat),
	}
	arguments = appendQueryArguments(arguments, query)
	return manager.queryOutput(executionContext, repositoryPath, arguments...)
}

// ShortlogSummary returns the raw shortlog -sn --all output.
func (manager *RepositoryManager) ShortlogSummary(executionContext context.Context, repositoryPath string) string {
	return manager.queryOutput(executionContext, repositoryPath, shortlogSubcommandConstant, shortlogSummaryFlagConstant, shortlogAllBranchesFlagConstant)
}

// Contributors parses the shortlog summary into per-author commit counts,
// preserving shortlog's descending order.
func (manager *RepositoryManager) Contributors(executionContext context.Context, repositoryPath string) []Contributor {
	contributors := []Contributor{}
	for _, summaryLine := range splitNonEmptyLines(manager.ShortlogSummary(executionContext, repositoryPath)) {
		fields := strings.SplitN(strings.TrimSpace(summaryLine), shortlogFieldSeparatorConstant, shortlogFieldLimitConstant)
		if len(fields) < shortlogFieldLimitConstant {
			continue
		}
		commitCount, parseError := strconv.Atoi(strings.TrimSpace(fields[0]))
		if parseError != nil {
			continue
		}
		contributors = append(contributors, Contributor{Name: strings.TrimSpace(fields[1]), Commits: commitCount})
	}
	return contributors
}

// RecentSubjects returns up to limit recent one-line commit summaries.
func (manager *RepositoryManager) RecentSubjects(executionContext context.Context, repositoryPath string, limit int) string {
	arguments := []string{logSubcommandConstant, logOnelineFlagConstant, fmt.Sprintf(logMaxCountFlagTemplateConstant, limit)}
	return strings.TrimSpace(manager.queryOutput(executionContext, repositoryPath, arguments...))
}

// StageFiles adds the provided paths (or everything when empty) to the index.
func (manager *RepositoryManager) StageFiles(executionContext context.Context, repositoryPath string, paths []string) error {
	arguments := []string{addSubcommandConstant}
	if len(paths) == 0 {
		arguments = append(arguments, allPathsSpecifierConstant)
	} else {
		arguments = append(arguments, paths...)
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: arguments, WorkingDirectory: repositoryPath})
	if executionError != nil {
		return executionError
	}
	if !executionResult.Succeeded() {
		return fmt.Errorf(stageFailedTemplateConstant, strings.TrimSpace(executionResult.StandardError))
	}
	return nil
}

// CreateCommit records a commit with the provided message.
func (manager *RepositoryManager) CreateCommit(executionContext context.Context, repositoryPath string, message string) error {
	arguments := []string{commitSubcommandConstant, commitMessageFlagConstant, message}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: arguments, WorkingDirectory: repositoryPath})
	if executionError != nil {
		return executionError
	}
	if !executionResult.Succeeded() {
		return fmt.Errorf(commitFailedTemplateConstant, strings.TrimSpace(executionResult.StandardError))
	}
	return nil
}

// queryOutput runs a read-only git query and returns stdout, empty on any failure.
func (manager *RepositoryManager) queryOutput(executionContext context.Context, repositoryPath string, arguments ...string) string {
	details := execshell.CommandDetails{Arguments: arguments, WorkingDirectory: repositoryPath}
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, details)
	if executionError != nil {
		return ""
	}
	if !executionResult.Succeeded() {
		return ""
	}
	return executionResult.StandardOutput
}

func appendPathArguments(arguments []string, paths []string) []string {
	if len(paths) == 0 {
		return arguments
	}
	arguments = append(arguments, pathSeparatorFlagConstant)
	return append(arguments, paths...)
}

func appendQueryArguments(arguments []string, query LogQuery) []string {
	if len(query.Since) > 0 {
		arguments = append(arguments, logSinceFlagConstant, query.Since)
	}
	if len(query.Until) > 0 {
		arguments = append(arguments, logUntilFlagConstant, query.Until)
	}
	if query.MaxCount > 0 {
		arguments = append(arguments, fmt.Sprintf(logMaxCountFlagTemplateConstant, query.MaxCount))
	}
	return arguments
}

func splitNonEmptyLines(output string) []string {
	lines := []string{}
	for _, line := range strings.Split(output, "\n") {
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
