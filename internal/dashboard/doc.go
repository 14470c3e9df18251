// Package dashboard serves the browser surface over the same pipeline the CLI
// commands use. Every request re-queries git; handlers are synchronous and
// return JSON, except the embedded HTML shell at the root.
package dashboard
