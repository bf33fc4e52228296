// Package canvas holds the CD+G screen state and the interpreter that
// applies decoded commands to it.
//
// A [Canvas] is a 300×216 buffer of 4-bit palette indices with a 16-entry
// color table and a scroll sub-position. All pixel access goes through
// bounds-checked helpers, and tile coordinates from the stream are clamped,
// so corrupt input can never write outside the buffer.
//
// An [Interpreter] owns a Canvas plus the per-decode state the command set
// needs (preset de-duplication, the dirty flag, and command statistics).
package canvas
