package navigator

import "fmt"

// ConfigurationError is returned when a route table cannot be registered.
type ConfigurationError struct {
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid route table: %s", e.Reason)
	}
	return fmt.Sprintf("invalid route %q: %s", e.Path, e.Reason)
}

// NotFoundError is returned when a target path matches no route.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no route for %q", e.Path)
}
