// Package commitmsg drafts commit messages from the working tree state. The
// suggester feeds the staged diff, change statistics, and recent subjects to
// the AI collaborator and degrades to a summary assembled from the porcelain
// status when the collaborator cannot answer.
package commitmsg
