// Package report renders neighbor results and scaling measurements.
//
// Sinks receive one model.Result per query point. Every sink is safe for
// concurrent use by several ranks; a single result is always written as one
// uninterrupted line, while lines of different ranks may interleave.
package report
