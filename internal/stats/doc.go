// Package stats derives per-author and per-file activity aggregates from
// parsed commit history. Reductions are pure and recomputed on every query;
// nothing is cached between invocations.
package stats
