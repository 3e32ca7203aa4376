package fetcher

import "fmt"

// PanicError wraps a value recovered while running a query
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
