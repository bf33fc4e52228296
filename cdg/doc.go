// Package cdg decodes CD+Graphics subcode data into a timeline of raster
// frames for karaoke playback.
//
// A [Parser] is loaded with a complete buffer via [Parser.Open] (or
// [Parser.OpenFile]), decoded in one synchronous pass by [Parser.Process],
// and then queried by frame index or playback time. Decoding happens on the
// caller's goroutine; once Process has returned, the frame lookups may be
// called from other goroutines. Decoding and querying concurrently on one
// Parser is not supported.
package cdg
