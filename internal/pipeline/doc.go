// Package pipeline renders a decoded CD+G timeline to a FrameSink, fanning
// frame conversion out over a bounded worker pool. It also provides the
// still-image conversion shared with the frame server.
package pipeline
