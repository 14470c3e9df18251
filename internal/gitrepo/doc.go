// Package gitrepo exposes the narrow git query interface used by gitt.
//
// RepositoryManager issues read-only git subcommands through an execshell
// executor and hands their stdout text to the parsing layers. A non-zero git
// exit status is treated as "no data" rather than a propagated failure; only
// process launch errors and mutating operations surface errors.
package gitrepo
