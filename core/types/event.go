package types

// Event represents a typed event emitted during contract execution.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Attribute is a key/value pair reported on a response.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
