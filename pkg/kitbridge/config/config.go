package config

import (
	"strconv"
	"time"
)

// Config wraps a map[string]any for string-keyed value extraction.
// Values decoded from YAML or JSON are formatted back to strings, the
// form hosts deliver settings in.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// FromStrings creates a Config from a host settings map.
func FromStrings(settings map[string]string) Config {
	data := make(map[string]any, len(settings))
	for k, v := range settings {
		data[k] = v
	}
	return Config{data: data}
}

// Lookup returns the value for key in string form.
// Numbers and booleans (as decoded from YAML or JSON) are formatted;
// other types report false.
func (c Config) Lookup(key string) (string, bool) {
	v, ok := c.data[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	}
	return "", false
}

// String returns the value for key in string form, or defaultVal if
// missing or not representable as a string.
func (c Config) String(key, defaultVal string) string {
	if s, ok := c.Lookup(key); ok {
		return s
	}
	return defaultVal
}

// Strings returns every value representable as a string, keyed as in the
// config. Used to hand file-loaded settings to the kit.
func (c Config) Strings() map[string]string {
	out := make(map[string]string, len(c.data))
	for k := range c.data {
		if s, ok := c.Lookup(k); ok {
			out[k] = s
		}
	}
	return out
}

// ParseSeconds parses a whole number of seconds.
func ParseSeconds(s string) (time.Duration, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
