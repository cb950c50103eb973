package models

// StreamResult carries one item of a result stream, or the error that ended it
type StreamResult[T any] struct {
	Value T
	Err   error
}

// Get returns the value and error of the result
func (r StreamResult[T]) Get() (T, error) {
	return r.Value, r.Err
}
