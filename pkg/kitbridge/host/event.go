package host

// EventType classifies a generic event.
type EventType string

// Event types.
const (
	EventTypeOther       EventType = "other"
	EventTypeNavigation  EventType = "navigation"
	EventTypeTransaction EventType = "transaction"
	EventTypeUserContent EventType = "user_content"
)

// Event is a single named analytics occurrence.
type Event struct {
	Name string    `yaml:"name" json:"name"`
	Type EventType `yaml:"type" json:"type"`

	// CustomAttributes are the event's custom attributes.
	CustomAttributes map[string]string `yaml:"attributes" json:"attributes"`

	// CustomFlags are side-channel override tags, keyed by reserved flag name.
	CustomFlags map[string][]string `yaml:"flags" json:"flags"`
}

// Flag returns the first value recorded for a custom flag.
func (e *Event) Flag(key string) (string, bool) {
	return firstFlag(e.CustomFlags, key)
}

func firstFlag(flags map[string][]string, key string) (string, bool) {
	values, ok := flags[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
