// Package framebuffer manages render target lifecycle: owned
// attachment storage, size tracking against the drawing buffer, bind
// state, and clear policies derived from attachment formats.
//
// A Target materializes its native objects on first Bind and recreates
// owned attachments transparently when its size policy yields a new
// size. Operations that require a bound target fail with ErrNotBound
// instead of touching whatever happens to be bound.
package framebuffer
