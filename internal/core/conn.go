package core

// Frame is a serialized outbound message, ready for the wire.
type Frame []byte

// Conn abstracts a single client transport channel.
// Owned by the adapter; the adapter must close it. The core holds it only
// as a non-owning reference and as the identity key for its session.
type Conn interface {
	// Open reports whether the connection can still accept sends.
	Open() bool
	// TrySend queues a frame without blocking. Fire-and-forget from the
	// core's point of view; a failed send never removes the connection,
	// its own close event does.
	TrySend(Frame) error
}
