// Package pipe copies a line oriented input stream into a rolling writer.
//
// A single goroutine owns the writer: input lines, periodic flushes and
// configuration reloads are all funnelled through one select loop, so the
// writer is never touched concurrently.
package pipe
