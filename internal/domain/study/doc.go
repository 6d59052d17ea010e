// Package study contains the pure scheduling logic for flashcard review:
// the spaced-repetition scheduler, the due-card queue builder and the
// in-session repetition rules. Nothing in this package performs I/O or
// touches shared state; callers supply the clock and persist the results.
package study
