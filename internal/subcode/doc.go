// Package subcode slices raw CD subchannel data into 24-byte packets and
// decodes the CD+G graphics commands they carry.
//
// The central types are [Reader], which iterates packets over an in-memory
// buffer, and [Command], the tagged union returned by [Decode]. Parity bytes
// are carried through untouched; no error correction is attempted.
package subcode
