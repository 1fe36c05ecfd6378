// Package form is an in-memory host form backed by a typed state value. Field
// names are JSON pointers into the state. Edits arrive as RFC6902 patches and
// are reported to listeners as input events.
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/eino-contrib/jsonschema"
	"github.com/tbxark/formdirty/patch"
	"github.com/tbxark/formdirty/snapshot"
	"github.com/tbxark/formdirty/types"
)

var ErrUnknownField = errors.New("unknown form field")

// Spec declares one control of the form.
type Spec struct {
	Name  string
	Label string
	Type  types.FieldType
	// Default overrides the value taken from the initial state.
	Default  string
	Hidden   bool
	Disabled bool
	Fieldset string
}

type options struct {
	logger *slog.Logger
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

type Form[T any] struct {
	mu                sync.RWMutex
	initial           T
	state             T
	values            snapshot.Snapshot
	defaults          map[string]string
	specs             []Spec
	index             map[string]int
	disabledFieldsets map[string]bool

	listenerMu sync.Mutex
	inputs     []func(types.Field)
	resets     []func()

	classMu sync.Mutex
	classes map[string]bool

	logger *slog.Logger
}

// New creates a form holding initial. When specs is nil every string leaf of
// T becomes a text field.
func New[T any](initial T, specs []Spec, opts ...Option) (*Form[T], error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if specs == nil {
		specs = SpecsFor[T]()
	}
	values, err := snapshot.FromValue(initial)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot initial state: %w", err)
	}

	f := &Form[T]{
		initial:           initial,
		state:             initial,
		values:            values,
		defaults:          make(map[string]string, len(specs)),
		specs:             make([]Spec, len(specs)),
		index:             make(map[string]int, len(specs)),
		disabledFieldsets: make(map[string]bool),
		classes:           make(map[string]bool),
		logger:            o.logger,
	}
	copy(f.specs, specs)
	for i, spec := range f.specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := f.index[spec.Name]; dup {
			return nil, fmt.Errorf("field %q declared twice", spec.Name)
		}
		if spec.Type == "" {
			f.specs[i].Type = types.FieldText
		}
		f.index[spec.Name] = i
		if spec.Default != "" {
			f.defaults[spec.Name] = spec.Default
		} else {
			f.defaults[spec.Name], _ = values.Get(spec.Name)
		}
	}
	return f, nil
}

func (f *Form[T]) OnInput(fn func(types.Field)) {
	f.listenerMu.Lock()
	f.inputs = append(f.inputs, fn)
	f.listenerMu.Unlock()
}

func (f *Form[T]) OnReset(fn func()) {
	f.listenerMu.Lock()
	f.resets = append(f.resets, fn)
	f.listenerMu.Unlock()
}

func (f *Form[T]) ToggleClass(class string, on bool) {
	f.classMu.Lock()
	defer f.classMu.Unlock()
	if on {
		f.classes[class] = true
		return
	}
	delete(f.classes, class)
}

func (f *Form[T]) HasClass(class string) bool {
	f.classMu.Lock()
	defer f.classMu.Unlock()
	return f.classes[class]
}

func (f *Form[T]) Snapshot() snapshot.Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values
}

func (f *Form[T]) State() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// AllowedPaths returns the declared field names in declaration order.
func (f *Form[T]) AllowedPaths() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	paths := make([]string, len(f.specs))
	for i, spec := range f.specs {
		paths[i] = spec.Name
	}
	return paths
}

func (f *Form[T]) Field(name string) (types.Field, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	i, ok := f.index[name]
	if !ok {
		return types.Field{}, fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
	return f.fieldLocked(f.specs[i]), nil
}

func (f *Form[T]) Fields() []types.Field {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]types.Field, len(f.specs))
	for i, spec := range f.specs {
		out[i] = f.fieldLocked(spec)
	}
	return out
}

// Infos describes every field for prompts and tables. dirty may be nil.
func (f *Form[T]) Infos(dirty func(name string) bool) []types.FieldInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]types.FieldInfo, len(f.specs))
	for i, spec := range f.specs {
		value, _ := f.values.Get(spec.Name)
		label := spec.Label
		if label == "" {
			label = spec.Name
		}
		out[i] = types.FieldInfo{
			JSONPointer: spec.Name,
			DisplayName: label,
			Type:        spec.Type,
			Value:       value,
			Dirty:       dirty != nil && dirty(spec.Name),
		}
	}
	return out
}

func (f *Form[T]) fieldLocked(spec Spec) types.Field {
	value, _ := f.values.Get(spec.Name)
	return types.Field{
		Name:               spec.Name,
		Type:               spec.Type,
		Value:              value,
		DefaultValue:       f.defaults[spec.Name],
		Hidden:             spec.Hidden,
		Disabled:           spec.Disabled,
		InDisabledFieldset: spec.Fieldset != "" && f.disabledFieldsets[spec.Fieldset],
	}
}

// Apply edits the state and reports an input event for every declared field
// the patch touched. Paths outside the declared fields are rejected.
func (f *Form[T]) Apply(ops []patch.Operation) error {
	if err := patch.ValidateOperations(ops, f.allowedSet()); err != nil {
		return fmt.Errorf("invalid form edit: %w", err)
	}
	return f.apply(ops)
}

// SetValue replaces a single field value.
func (f *Form[T]) SetValue(name, value string) error {
	// index is fixed after New.
	if _, ok := f.index[name]; !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
	return f.apply([]patch.Operation{{Op: patch.OperationReplace, Path: name, Value: value}})
}

// Load replaces the whole state with next. Input events are reported only for
// declared fields whose values changed.
func (f *Form[T]) Load(next T) error {
	ops, err := patch.Diff(f.State(), next)
	if err != nil {
		return fmt.Errorf("failed to diff form state: %w", err)
	}
	return f.apply(ops)
}

func (f *Form[T]) apply(ops []patch.Operation) error {
	f.mu.Lock()
	next, touched, err := patch.ApplyRFC6902(f.state, ops)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	values, err := snapshot.FromValue(next)
	if err != nil {
		f.mu.Unlock()
		return fmt.Errorf("failed to snapshot form state: %w", err)
	}
	f.state = next
	f.values = values
	events := f.touchedFieldsLocked(touched)
	f.mu.Unlock()

	f.logger.Debug("Applied form edit", "ops", len(ops), "fields", len(events))
	f.listenerMu.Lock()
	listeners := append([]func(types.Field){}, f.inputs...)
	f.listenerMu.Unlock()
	for _, field := range events {
		for _, fn := range listeners {
			fn(field)
		}
	}
	return nil
}

// touchedFieldsLocked returns the declared fields at or below the touched
// paths, in touch order and then declaration order, each at most once.
func (f *Form[T]) touchedFieldsLocked(touched []string) []types.Field {
	events := make([]types.Field, 0, len(touched))
	seen := make(map[string]bool, len(touched))
	for _, path := range touched {
		for _, spec := range f.specs {
			if seen[spec.Name] {
				continue
			}
			if spec.Name == path || strings.HasPrefix(spec.Name, path+"/") {
				seen[spec.Name] = true
				events = append(events, f.fieldLocked(spec))
			}
		}
	}
	return events
}

// Reset restores the initial state and reports a reset event.
func (f *Form[T]) Reset() error {
	values, err := snapshot.FromValue(f.initial)
	if err != nil {
		return fmt.Errorf("failed to snapshot initial state: %w", err)
	}
	f.mu.Lock()
	f.state = f.initial
	f.values = values
	f.mu.Unlock()

	f.logger.Debug("Form reset")
	f.listenerMu.Lock()
	listeners := append([]func(){}, f.resets...)
	f.listenerMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
	return nil
}

func (f *Form[T]) SetDisabled(name string, disabled bool) error {
	return f.updateSpec(name, func(s *Spec) { s.Disabled = disabled })
}

func (f *Form[T]) SetHidden(name string, hidden bool) error {
	return f.updateSpec(name, func(s *Spec) { s.Hidden = hidden })
}

func (f *Form[T]) SetFieldsetDisabled(fieldset string, disabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabledFieldsets[fieldset] = disabled
}

func (f *Form[T]) updateSpec(name string, fn func(s *Spec)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
	fn(&f.specs[i])
	return nil
}

// JSONSchema describes T for prompt building.
func (f *Form[T]) JSONSchema() (string, error) {
	var zero T
	schema := jsonschema.Reflect(zero)
	data, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return string(data), nil
}

func (f *Form[T]) allowedSet() map[string]bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	allowed := make(map[string]bool, len(f.specs))
	for _, spec := range f.specs {
		allowed[spec.Name] = true
	}
	return allowed
}
