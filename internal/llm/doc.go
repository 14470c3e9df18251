// Package llm defines the narrow text-generation interface gitt uses and a
// Gemini-backed implementation. Callers treat every failure as a signal to
// degrade to a non-AI fallback; no retries are attempted.
package llm
