package entities

// Patch carries a field of a partial update. It distinguishes "leave the field
// unchanged" from "set this value" from "clear the stored value", which a
// plain pointer cannot express for fields whose clear semantics differ from
// unset (e.g. releasing a part's selected quote back to none).
type Patch[T any] struct {
	state patchState
	value T
}

type patchState uint8

const (
	patchUnchanged patchState = iota
	patchSet
	patchCleared
)

// Unchanged returns a patch that leaves the field as stored.
func Unchanged[T any]() Patch[T] {
	return Patch[T]{state: patchUnchanged}
}

// Set returns a patch that assigns v.
func Set[T any](v T) Patch[T] {
	return Patch[T]{state: patchSet, value: v}
}

// Clear returns a patch that removes the stored value.
func Clear[T any]() Patch[T] {
	return Patch[T]{state: patchCleared}
}

// IsSet reports whether the patch carries a value to assign.
func (p Patch[T]) IsSet() bool { return p.state == patchSet }

// IsCleared reports whether the patch removes the stored value.
func (p Patch[T]) IsCleared() bool { return p.state == patchCleared }

// IsUnchanged reports whether the patch leaves the field alone.
func (p Patch[T]) IsUnchanged() bool { return p.state == patchUnchanged }

// Value returns the assigned value and whether one is present.
func (p Patch[T]) Value() (T, bool) {
	return p.value, p.state == patchSet
}
