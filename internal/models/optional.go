package models

// Optional distinguishes a value that was explicitly provided from one that was
// omitted. The zero Optional is unset; Some(0) and Some("") are set.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// FromPtr returns an unset Optional for nil and Some(*p) otherwise.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Optional[T]{}
	}
	return Some(*p)
}

// IsSet reports whether a value was provided.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the held value and whether it was provided.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}
