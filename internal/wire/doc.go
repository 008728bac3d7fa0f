// Package wire holds the protocol codec shared by both peer roles.
//
// Records are comma-delimited text with positional fields; decoders index
// fields by position and never by name. Prices cross the reply channel as
// packed fixed-point integers (see Pack).
package wire
