// Package engine owns the loaded model handle. It loads one checkpoint at
// process start, serializes generations through a single in-flight slot with
// a bounded FIFO queue, and exposes the Generate operation the HTTP layer is
// built on. The checkpoint is never reloaded or swapped for the life of the
// process.
package engine
