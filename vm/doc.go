// Package vm implements the brim runtime core.
//
// This package contains:
//   - Tagged single-word value representation (Object)
//   - Header-prefixed heap blocks in an index-addressed arena
//   - Mark-and-sweep collector with an inhibit/allow protocol
//   - Interned symbol table
//   - Nested operand-stack frames that double as collection roots
//   - The primitive stack machine used by the reader
//   - A pending-error slot for first-class Error values
package vm
