// Package distribution serves decoded CD+G frames to viewers. The same REST
// API is exposed over HTTPS (TCP) and HTTP/3 (QUIC) so browsers and native
// clients can scrub a track frame by frame.
package distribution
