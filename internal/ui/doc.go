// Package ui formats shell command lifecycle events for human-readable
// console output when structured logging is disabled.
package ui
