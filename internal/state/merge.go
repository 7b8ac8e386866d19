package state

// Keyed is anything with a stable record id.
type Keyed interface {
	Key() string
}

// Upsert replaces the record with item's id, or appends item when absent.
// Other records are untouched.
func Upsert[T Keyed](items []T, item T) []T {
	for i := range items {
		if items[i].Key() == item.Key() {
			out := append([]T(nil), items...)
			out[i] = item
			return out
		}
	}
	return append(append([]T(nil), items...), item)
}

// Remove drops every record with the given id.
func Remove[T Keyed](items []T, id string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.Key() != id {
			out = append(out, it)
		}
	}
	return out
}

// Find returns the record with the given id.
func Find[T Keyed](items []T, id string) (T, bool) {
	for _, it := range items {
		if it.Key() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
