package result

// Optional holds a value that may be absent.
type Optional[T any] struct {
	value   T
	present bool
}

// Some wraps v as a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// OfNilable is present when p is non-nil.
func OfNilable[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// OfNonEmpty is present when s is not the empty string.
func OfNonEmpty(s string) Optional[string] {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

// IsPresent reports whether o holds a value.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// IsAbsent reports whether o is empty.
func (o Optional[T]) IsAbsent() bool {
	return !o.present
}

// Get returns the value and whether it was present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// OrElse returns the value, or fallback when absent.
func (o Optional[T]) OrElse(fallback T) T {
	if !o.present {
		return fallback
	}
	return o.value
}

// OrFail returns a success result with the value, or a failure with err.
func (o Optional[T]) OrFail(err error) Result[T] {
	if !o.present {
		return Failure[T](err)
	}
	return Success(o.value)
}

// IfPresent calls fn with the value when present.
func (o Optional[T]) IfPresent(fn func(T)) {
	if o.present {
		fn(o.value)
	}
}

// MapOptional transforms a present value. fn is not called when absent.
func MapOptional[T, U any](o Optional[T], fn func(T) U) Optional[U] {
	if !o.present {
		return None[U]()
	}
	return Some(fn(o.value))
}

// Filter keeps the value only when keep reports true.
func Filter[T any](o Optional[T], keep func(T) bool) Optional[T] {
	if !o.present || !keep(o.value) {
		return None[T]()
	}
	return o
}
