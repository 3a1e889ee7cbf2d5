// Package reader turns source text into runtime data.
//
// The Lexer splits a byte stream into positioned tokens; the Parser consumes
// them and drives the primitive machine in package vm to build one datum at
// a time on the current frame. Parse errors become Error objects in the
// runtime's pending-error slot with a payload of the form
// "At <offset>: <message>".
package reader
