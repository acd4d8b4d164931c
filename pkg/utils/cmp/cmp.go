// Package cmp compares slices and maps in tests and assertions.
package cmp

// SliceEq is true when a and b have same elements in same order.
func SliceEq[T comparable](a, b []T) bool {
	return SliceEqWith(a, b, func(x, y T) bool { return x == y })
}

// SliceEqWith is SliceEq with a custom element equality.
func SliceEqWith[A, B any](a []A, b []B, eq func(A, B) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}

// SliceContentEq is true when a and b have same elements with same multiplicity,
// ignoring their order.
func SliceContentEq[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	count := map[T]int{}
	for _, x := range a {
		count[x] += 1
	}
	for _, y := range b {
		count[y] -= 1
		if count[y] < 0 {
			return false
		}
	}
	return true
}

// MapEq is true when a and b have same keys and same values for each key.
//
// nil and empty maps are equal.
func MapEq[K, V comparable](a, b map[K]V) bool {
	return MapEqWith(a, b, func(x, y V) bool { return x == y })
}

// MapEqWith is MapEq with a custom value equality.
func MapEqWith[K comparable, A, B any](a map[K]A, b map[K]B, eq func(A, B) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !eq(va, vb) {
			return false
		}
	}
	return true
}
