// Package history parses delimiter-encoded git log lines into structured
// commit records and buckets them into the fixed changelog category set.
package history
