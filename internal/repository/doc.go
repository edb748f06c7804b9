// Package repository materializes external repository references locally.
//
// The cache is keyed by reference identity (URL plus revision), with
// idempotent fetch-or-return semantics: re-resolving an already fetched
// reference is a no-op. Independent references are fetched in parallel;
// fetches carry a timeout and bounded retries with backoff, and a cancelled
// fetch discards partial data rather than reusing it.
package repository
