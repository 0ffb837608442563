package events

// Subscriber is the consuming side of the event bus. Topics are the
// cardwall subjects this package defines, and wildcard patterns such as
// "cardwall.>" are valid where the implementation supports them.
type Subscriber interface {
	// Subscribe delivers raw JSON payloads on the returned channel until
	// the cancel function is called, which also closes the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
