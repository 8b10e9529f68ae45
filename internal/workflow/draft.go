package workflow

import "errors"

// State names the phase a draft is in.
type State string

const (
	// StateClosed means no draft is in progress.
	StateClosed State = "closed"
	// StateOpenEmpty means a blank draft is being filled in.
	StateOpenEmpty State = "open_empty"
	// StateOpenPrefilled means an existing record is being edited.
	StateOpenPrefilled State = "open_prefilled"
)

// ErrDraftClosed reports an edit or commit against a closed draft.
var ErrDraftClosed = errors.New("draft_closed")

// Draft is a single-record edit session. A draft opens empty for new
// records or prefilled for edits, accumulates field changes, and either
// commits through its validation rules or is cancelled and discarded.
// A failed commit keeps the draft open with its errors so the caller can
// correct and retry.
type Draft[T any] struct {
	state State
	value T
	errs  *FieldErrors
}

// NewDraft returns a closed draft.
func NewDraft[T any]() *Draft[T] {
	return &Draft[T]{state: StateClosed}
}

// OpenEmpty starts a blank draft from the given initial value.
func (d *Draft[T]) OpenEmpty(initial T) {
	d.state = StateOpenEmpty
	d.value = initial
	d.errs = nil
}

// OpenPrefilled starts a draft seeded from an existing record.
func (d *Draft[T]) OpenPrefilled(value T) {
	d.state = StateOpenPrefilled
	d.value = value
	d.errs = nil
}

// Set applies a field edit to an open draft.
func (d *Draft[T]) Set(edit func(*T)) error {
	if d.state == StateClosed {
		return ErrDraftClosed
	}
	edit(&d.value)
	return nil
}

// Commit validates the draft. On success the draft closes and the value
// is returned; on failure the draft stays open and the field errors are
// returned.
func (d *Draft[T]) Commit(rules ...Rule[T]) (T, *FieldErrors, error) {
	var zero T
	if d.state == StateClosed {
		return zero, nil, ErrDraftClosed
	}

	errs := Validate(d.value, rules...)
	if !errs.Empty() {
		d.errs = errs
		return zero, errs, nil
	}

	value := d.value
	d.state = StateClosed
	d.value = zero
	d.errs = nil
	return value, nil, nil
}

// Cancel discards the draft from any state.
func (d *Draft[T]) Cancel() {
	var zero T
	d.state = StateClosed
	d.value = zero
	d.errs = nil
}

// State returns the current phase.
func (d *Draft[T]) State() State {
	return d.state
}

// Value returns the draft value as currently edited.
func (d *Draft[T]) Value() T {
	return d.value
}

// Errors returns the field errors from the last failed commit.
func (d *Draft[T]) Errors() *FieldErrors {
	return d.errs
}
