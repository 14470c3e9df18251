// Package changelog assembles Markdown changelog entries from parsed commit
// history. Generation prefers the AI collaborator and degrades to a
// deterministic category-based renderer whenever the collaborator is
// unavailable, disabled, or fails; callers branch on the tagged generation
// mode rather than on errors.
package changelog
