// Package formdirty tracks whether the user modified a form's fields relative
// to their defaults and last successful submission, and mirrors that state
// onto a single presentation class on the form.
package formdirty

import (
	"log/slog"
	"sync"

	"github.com/tbxark/formdirty/dirty"
	"github.com/tbxark/formdirty/field"
	"github.com/tbxark/formdirty/snapshot"
	"github.com/tbxark/formdirty/types"
)

// IndicatorClass is toggled on the form while it has unsubmitted edits.
const IndicatorClass = "formagent-dirty"

// Form is the host form a FormDirtiness observes.
type Form interface {
	OnInput(fn func(types.Field))
	OnReset(fn func())
	ToggleClass(class string, on bool)
	Snapshot() snapshot.Snapshot
}

type submissionState interface {
	phase() types.Phase
}

type idle struct{}

func (idle) phase() types.Phase { return types.PhaseIdle }

// submitting holds the dirtiness accrued before the submission started and
// the values captured when it did.
type submitting struct {
	previous *dirty.NameSet
	snapshot snapshot.Snapshot
}

func (*submitting) phase() types.Phase { return types.PhaseSubmitting }

type options struct {
	logger *slog.Logger
}

type Option func(*options)

// WithLogger sets the logger used for transition records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

type FormDirtiness struct {
	mu        sync.Mutex
	form      Form
	logger    *slog.Logger
	active    *dirty.NameSet
	state     submissionState
	submitted *snapshot.Snapshot
}

// New starts tracking form. It installs the input and reset listeners and
// clears the indicator class.
func New(form Form, opts ...Option) *FormDirtiness {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	d := &FormDirtiness{
		form:   form,
		logger: o.logger,
		active: dirty.NewNameSet(),
		state:  idle{},
	}
	form.OnInput(d.onInput)
	form.OnReset(d.onReset)
	d.updateIndicator()
	return d
}

// OnSubmitting enters the submitting phase. Dirtiness accrued so far is set
// aside and edits made while the request is in flight are tracked separately.
//
// Calling it again before the attempt resolves folds the in-flight edits into
// the set-aside dirtiness and restarts the attempt with a new snapshot.
func (d *FormDirtiness) OnSubmitting() {
	d.mu.Lock()
	defer d.mu.Unlock()

	previous := d.active
	if s, ok := d.state.(*submitting); ok {
		d.logger.Warn("Submission started while another is in flight", "in_flight_dirty", d.active.Size())
		s.previous.Merge(d.active)
		previous = s.previous
	}
	d.state = &submitting{
		previous: previous,
		snapshot: d.form.Snapshot(),
	}
	d.active = dirty.NewNameSet()
	d.logger.Debug("Submission started", "previous_dirty", previous.Size())
	d.updateIndicator()
}

// OnSubmitError leaves the submitting phase. Fields dirty before or during the
// failed attempt are dirty afterwards.
func (d *FormDirtiness) OnSubmitError() {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.state.(*submitting)
	if !ok {
		d.logger.Warn("Submission error reported while idle")
		return
	}
	s.previous.Merge(d.active)
	d.active = s.previous
	d.state = idle{}
	d.logger.Debug("Submission failed", "dirty", d.active.Size())
	d.updateIndicator()
}

// OnSubmitSuccess leaves the submitting phase and makes the current form
// values the baseline for later comparisons. Edits made before the attempt
// were submitted and are no longer tracked; edits made during it remain.
func (d *FormDirtiness) OnSubmitSuccess() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.state.(*submitting); !ok {
		d.logger.Warn("Submission success reported while idle")
	}
	baseline := d.form.Snapshot()
	d.submitted = &baseline
	d.state = idle{}
	d.logger.Debug("Submission succeeded", "dirty", d.active.Size(), "baseline_fields", baseline.Len())
	d.updateIndicator()
}

func (d *FormDirtiness) onInput(f types.Field) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.checkDirtinessAfterUserInteraction(f)
	d.updateIndicator()
}

func (d *FormDirtiness) onReset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.active.Clear()
	d.logger.Debug("Form reset", "phase", d.state.phase())
	d.updateIndicator()
}

func (d *FormDirtiness) checkDirtinessAfterUserInteraction(f types.Field) {
	if field.ShouldSkip(f) {
		d.logger.Debug("Skipping dirtiness check", "field", f.Name, "type", f.Type)
		return
	}
	if field.IsEmpty(f) || field.IsDefault(f) || d.matchesLastSubmission(f) {
		d.active.Delete(f.Name)
		d.logger.Debug("Field clean", "field", f.Name, "phase", d.state.phase())
		return
	}
	d.active.Add(f.Name)
	d.logger.Debug("Field dirty", "field", f.Name, "phase", d.state.phase())
}

func (d *FormDirtiness) matchesLastSubmission(f types.Field) bool {
	if d.submitted == nil {
		return false
	}
	v, ok := d.submitted.Get(f.Name)
	return ok && v == f.Value
}

func (d *FormDirtiness) isDirty() bool {
	_, inFlight := d.state.(*submitting)
	return d.active.Size() > 0 && !inFlight
}

func (d *FormDirtiness) updateIndicator() {
	d.form.ToggleClass(IndicatorClass, d.isDirty())
}

// IsDirty reports whether the indicator class is currently on.
func (d *FormDirtiness) IsDirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isDirty()
}

func (d *FormDirtiness) Phase() types.Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.phase()
}

// DirtyFields returns the names in the active set, sorted.
func (d *FormDirtiness) DirtyFields() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active.Names()
}

// SubmittedSnapshot returns the values of the last successful submission.
func (d *FormDirtiness) SubmittedSnapshot() (snapshot.Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitted == nil {
		return snapshot.Snapshot{}, false
	}
	return *d.submitted, true
}

// SubmittingSnapshot returns the values captured when the in-flight
// submission started.
func (d *FormDirtiness) SubmittingSnapshot() (snapshot.Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.state.(*submitting); ok {
		return s.snapshot, true
	}
	return snapshot.Snapshot{}, false
}
