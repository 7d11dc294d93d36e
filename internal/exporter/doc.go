// Package exporter writes the two text artifacts of a batch: the
// intermediate report rendered from an extraction, and the final
// notification that wraps it in fixed preamble and postamble text.
package exporter
