// Package submit drives the submission lifecycle of a tracked form: it
// announces the attempt, hands the form state to a Manager and reports the
// outcome.
package submit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/callbacks"
	"github.com/google/uuid"
)

// Lifecycle receives submission phase changes. *formdirty.FormDirtiness
// implements it.
type Lifecycle interface {
	OnSubmitting()
	OnSubmitSuccess()
	OnSubmitError()
}

type Manager[T any] interface {
	Submit(ctx context.Context, form T) error
}

type ManagerFunc[T any] func(ctx context.Context, form T) error

func (f ManagerFunc[T]) Submit(ctx context.Context, form T) error {
	return f(ctx, form)
}

type StateSource[T any] interface {
	State() T
}

type Driver[T any] struct {
	source    StateSource[T]
	lifecycle Lifecycle
	manager   Manager[T]
	logger    *slog.Logger
}

type options struct {
	logger *slog.Logger
}

type Option func(*options)

// WithLogger sets the logger used for attempt records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func NewDriver[T any](source StateSource[T], lifecycle Lifecycle, manager Manager[T], opts ...Option) *Driver[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Driver[T]{
		source:    source,
		lifecycle: lifecycle,
		manager:   manager,
		logger:    o.logger,
	}
}

// Submit runs one attempt. Exactly one of OnSubmitSuccess and OnSubmitError
// follows the OnSubmitting call, including when the manager panics.
func (d *Driver[T]) Submit(ctx context.Context) error {
	attempt := uuid.NewString()
	form := d.source.State()

	ctx = callbacks.EnsureRunInfo(ctx, "FormSubmit", "Submitter")
	ctx = callbacks.OnStart(ctx, map[string]any{
		"attempt_id": attempt,
		"form_state": form,
	})

	d.logger.Debug("Submitting form", "attempt_id", attempt)
	d.lifecycle.OnSubmitting()

	defer func() {
		if r := recover(); r != nil {
			d.lifecycle.OnSubmitError()
			callbacks.OnError(ctx, fmt.Errorf("panic in form submit: %v", r))
			panic(r)
		}
	}()

	if err := d.manager.Submit(ctx, form); err != nil {
		d.lifecycle.OnSubmitError()
		d.logger.Warn("Form submission failed", "attempt_id", attempt, "error", err)
		callbacks.OnError(ctx, err)
		return fmt.Errorf("failed to submit form: %w", err)
	}

	d.lifecycle.OnSubmitSuccess()
	d.logger.Debug("Form submitted", "attempt_id", attempt)
	callbacks.OnEnd(ctx, map[string]any{
		"attempt_id": attempt,
	})
	return nil
}
