package redis

const (
	// KeyActiveSnapshot holds the JSON-encoded active catalog snapshot.
	KeyActiveSnapshot = "linkdeck:catalog:active"
)
