package formdirty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/formdirty"
	"github.com/tbxark/formdirty/snapshot"
	"github.com/tbxark/formdirty/types"
)

// fakeForm delivers events synchronously and records the indicator class.
type fakeForm struct {
	inputs  []func(types.Field)
	resets  []func()
	classes map[string]bool
	toggles int
	values  map[string]string
}

func newFakeForm() *fakeForm {
	return &fakeForm{classes: map[string]bool{}, values: map[string]string{}}
}

func (f *fakeForm) OnInput(fn func(types.Field)) { f.inputs = append(f.inputs, fn) }
func (f *fakeForm) OnReset(fn func())             { f.resets = append(f.resets, fn) }

func (f *fakeForm) ToggleClass(class string, on bool) {
	f.toggles++
	f.classes[class] = on
}

func (f *fakeForm) Snapshot() snapshot.Snapshot { return snapshot.Of(f.values) }

func (f *fakeForm) marked() bool { return f.classes[formdirty.IndicatorClass] }

func (f *fakeForm) input(field types.Field) {
	f.values[field.Name] = field.Value
	for _, fn := range f.inputs {
		fn(field)
	}
}

func (f *fakeForm) reset() {
	for _, fn := range f.resets {
		fn()
	}
}

func text(name, value string) types.Field {
	return types.Field{Name: name, Type: types.FieldText, Value: value}
}

func TestNew_InstallsListenersAndClearsIndicator(t *testing.T) {
	form := newFakeForm()
	d := formdirty.New(form)

	require.Len(t, form.inputs, 1)
	require.Len(t, form.resets, 1)
	assert.Equal(t, 1, form.toggles)
	assert.False(t, form.marked())
	assert.False(t, d.IsDirty())
	assert.Equal(t, types.PhaseIdle, d.Phase())
	assert.Empty(t, d.DirtyFields())

	_, ok := d.SubmittedSnapshot()
	assert.False(t, ok)
	_, ok = d.SubmittingSnapshot()
	assert.False(t, ok)
}

func TestInput_MarksFieldDirty(t *testing.T) {
	form := newFakeForm()
	d := formdirty.New(form)

	form.input(text("/email", "a@b.c"))
	assert.True(t, d.IsDirty())
	assert.True(t, form.marked())
	assert.Equal(t, []string{"/email"}, d.DirtyFields())

	form.input(text("/email", ""))
	assert.False(t, d.IsDirty(), "emptying the field makes it clean")
	assert.False(t, form.marked())
}

func TestInput_DefaultValueIsClean(t *testing.T) {
	form := newFakeForm()
	d := formdirty.New(form)

	f := types.Field{Name: "/bio", Type: types.FieldTextarea, DefaultValue: "hi", Value: "hello"}
	form.input(f)
	require.True(t, d.IsDirty())

	f.Value = "hi"
	form.input(f)
	assert.False(t, d.IsDirty())
}

func TestInput_IneligibleFieldsNeverChangeState(t *testing.T) {
	form := newFakeForm()
	d := formdirty.New(form)
	form.input(text("/name", "bob"))
	require.Equal(t, []string{"/name"}, d.DirtyFields())

	hidden := text("/token", "x")
	hidden.Hidden = true
	disabled := text("/name", "")
	disabled.Disabled = true
	fieldset := text("/name", "")
	fieldset.InDisabledFieldset = true
	checkbox := types.Field{Name: "/agree", Type: types.FieldCheckbox, Value: "on"}
	unnamed := text("", "x")

	for _, f := range []types.Field{hidden, disabled, fieldset, checkbox, unnamed} {
		form.input(f)
		assert.Equal(t, []string{"/name"}, d.DirtyFields(), "field %+v", f)
		assert.True(t, form.marked())
	}
}

func TestSubmitting_SuppressesIndicator(t *testing.T) {
	form := newFakeForm()
	d := formdirty.New(form)
	form.input(text("/email", "a@b.c"))
	require.True(t, form.marked())

	d.OnSubmitting()
	assert.False(t, form.marked())
	assert.False(t, d.IsDirty())
	assert.Equal(t, types.PhaseSubmitting, d.Phase())
	assert.Empty(t, d.DirtyFields(), "a fresh active set is started")

	snap, ok := d.SubmittingSnapshot()
	require.True(t, ok)
	v, _ := snap.Get("/email")
	assert.Equal(t, "a@b.c", v)

	form.input(text("/name", "bob"))
	assert.False(t, form.marked(), "edits during submission stay suppressed")
	assert.Equal(t, []string{"/name"}, d.DirtyFields())
}

func TestSubmitError_MergesBeforeAndDuring(t *testing.T) {
	form := newFakeForm()
	d := formdirty.New(form)
	form.input(text("/email", "a@b.c"))
	form.input(text("/bio", "hi"))

	d.OnSubmitting()
	form.input(text("/email", "c@d.e"))
	form.input(text("/name", "bob"))
	d.OnSubmitError()

	assert.Equal(t, types.PhaseIdle, d.Phase())
	assert.Equal(t, []string{"/bio", "/email", "/name"}, d.DirtyFields())
	assert.True(t, d.IsDirty())
	assert.True(t, form.marked())
	_, ok := d.SubmittingSnapshot()
	assert.False(t, ok)
	_, ok = d.SubmittedSnapshot()
	assert.False(t, ok, "a failed submission does not set a baseline")
}

func TestSubmitError_NoEditsRestoresPrevious(t *testing.T) {
	form := newFakeForm()
	d := formdirty.New(form)
	form.input(text("/email", "a@b.c"))

	d.OnSubmitting()
	d.OnSubmitError()
	assert.Equal(t, []string{"/email"}, d.DirtyFields())
	assert.True(t, form.marked())
}

func TestSubmitSuccess_UpdatesBaseline(t *testing.T) {
	form := newFakeForm()
	d := formdirty.New(form)
	form.input(text("/email", "a@b.c"))

	d.OnSubmitting()
	d.OnSubmitSuccess()

	assert.Equal(t, types.PhaseIdle, d.Phase())
	assert.False(t, d.IsDirty(), "pre-submission edits were submitted")
	assert.False(t, form.marked())
	snap, ok := d.SubmittedSnapshot()
	require.True(t, ok)
	v, _ := snap.Get("/email")
	assert.Equal(t, "a@b.c", v)

	form.input(text("/email", "x@y.z"))
	assert.True(t, d.IsDirty())

	form.input(text("/email", "a@b.c"))
	assert.False(t, d.IsDirty(), "re-entering the submitted value is clean")
}

func TestSubmitSuccess_KeepsEditsMadeDuringSubmission(t *testing.T) {
	form := newFakeForm()
	d := formdirty.New(form)
	form.input(text("/email", "a@b.c"))

	d.OnSubmitting()
	form.input(text("/name", "bob"))
	d.OnSubmitSuccess()

	assert.Equal(t, []string{"/name"}, d.DirtyFields())
	assert.True(t, form.marked())
}

func TestReset_ClearsInAnyPhase(t *testing.T) {
	form := newFakeForm()
	d := formdirty.New(form)
	form.input(text("/email", "a@b.c"))
	form.reset()
	assert.Empty(t, d.DirtyFields())
	assert.False(t, form.marked())

	form.input(text("/email", "a@b.c"))
	d.OnSubmitting()
	form.input(text("/name", "bob"))
	form.reset()
	assert.Equal(t, types.PhaseSubmitting, d.Phase(), "reset does not end the submission")
	assert.Empty(t, d.DirtyFields())
	assert.False(t, form.marked())

	d.OnSubmitError()
	assert.Equal(t, []string{"/email"}, d.DirtyFields(), "only the in-flight set was cleared")
}

func TestOverlappingSubmitting_MergesInFlightEdits(t *testing.T) {
	form := newFakeForm()
	d := formdirty.New(form)
	form.input(text("/email", "a@b.c"))

	d.OnSubmitting()
	form.input(text("/name", "bob"))
	d.OnSubmitting()
	assert.Equal(t, types.PhaseSubmitting, d.Phase())
	assert.Empty(t, d.DirtyFields())

	snap, ok := d.SubmittingSnapshot()
	require.True(t, ok)
	v, _ := snap.Get("/name")
	assert.Equal(t, "bob", v, "the attempt is re-snapshotted")

	d.OnSubmitError()
	assert.Equal(t, []string{"/email", "/name"}, d.DirtyFields())
}

func TestResolveWhileIdle(t *testing.T) {
	form := newFakeForm()
	d := formdirty.New(form)
	form.input(text("/email", "a@b.c"))

	d.OnSubmitError()
	assert.Equal(t, []string{"/email"}, d.DirtyFields())
	assert.Equal(t, types.PhaseIdle, d.Phase())

	d.OnSubmitSuccess()
	_, ok := d.SubmittedSnapshot()
	assert.True(t, ok, "success records the baseline even without a submitting call")
	assert.Equal(t, types.PhaseIdle, d.Phase())
}
