// Package timeline samples a CD+G canvas into a fixed 25 fps sequence of
// frames and answers index and time lookups with tempo scaling.
//
// Frames are kept in a [Store]. [NewStore] selects between raw storage and
// zlib or zstd compression; all stores satisfy the same contract, so the
// choice never changes what a lookup returns.
package timeline
