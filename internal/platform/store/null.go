package store

// Null returns nil for the zero value of T so it is stored as SQL NULL
func Null[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

// Value returns *p, or the zero T for a NULL column
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
