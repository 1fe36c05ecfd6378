package form_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/formdirty"
	"github.com/tbxark/formdirty/form"
	"github.com/tbxark/formdirty/patch"
	"github.com/tbxark/formdirty/types"
)

type Signup struct {
	Name    string  `json:"name" jsonschema:"description=Full name"`
	Email   string  `json:"email"`
	Bio     string  `json:"bio"`
	Token   string  `json:"token"`
	Agree   bool    `json:"agree"`
	Address Address `json:"address"`
}

type Address struct {
	City string `json:"city"`
}

func newSignupForm(t *testing.T) *form.Form[Signup] {
	t.Helper()
	f, err := form.New(Signup{Bio: "Tell us about you", Token: "t0k"}, []form.Spec{
		{Name: "/name", Label: "Name", Type: types.FieldText, Fieldset: "person"},
		{Name: "/email", Label: "Email", Type: types.FieldText},
		{Name: "/bio", Label: "Bio", Type: types.FieldTextarea},
		{Name: "/token", Type: types.FieldHidden, Hidden: true},
		{Name: "/agree", Type: types.FieldCheckbox},
		{Name: "/address/city", Label: "City"},
	})
	require.NoError(t, err)
	return f
}

func TestSpecsFor(t *testing.T) {
	specs := form.SpecsFor[*Signup]()
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
		assert.Equal(t, types.FieldText, s.Type)
	}
	assert.Equal(t, []string{"/name", "/email", "/bio", "/token", "/address/city"}, names)
	assert.Nil(t, form.SpecsFor[string]())
}

func TestNew_Validation(t *testing.T) {
	_, err := form.New(Signup{}, []form.Spec{{Name: ""}})
	assert.Error(t, err)
	_, err = form.New(Signup{}, []form.Spec{{Name: "/name"}, {Name: "/name"}})
	assert.Error(t, err)

	f, err := form.New(Signup{}, nil)
	require.NoError(t, err)
	assert.Len(t, f.Fields(), 5)
}

func TestField_DefaultsFromInitialState(t *testing.T) {
	f := newSignupForm(t)
	bio, err := f.Field("/bio")
	require.NoError(t, err)
	assert.Equal(t, "Tell us about you", bio.Value)
	assert.Equal(t, "Tell us about you", bio.DefaultValue)
	assert.Equal(t, types.FieldTextarea, bio.Type)

	city, err := f.Field("/address/city")
	require.NoError(t, err)
	assert.Equal(t, types.FieldText, city.Type, "type defaults to text")

	_, err = f.Field("/nope")
	assert.ErrorIs(t, err, form.ErrUnknownField)
}

func TestApply_DispatchesInputEvents(t *testing.T) {
	f := newSignupForm(t)
	var got []types.Field
	f.OnInput(func(field types.Field) { got = append(got, field) })

	err := f.Apply([]patch.Operation{
		{Op: patch.OperationReplace, Path: "/email", Value: "a@b.c"},
		{Op: patch.OperationReplace, Path: "/address/city", Value: "Oslo"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "/email", got[0].Name)
	assert.Equal(t, "a@b.c", got[0].Value)
	assert.Equal(t, "Oslo", got[1].Value)
	assert.Equal(t, "a@b.c", f.State().Email)

	v, ok := f.Snapshot().Get("/email")
	require.True(t, ok)
	assert.Equal(t, "a@b.c", v)
}

func TestApply_RejectsUndeclaredPath(t *testing.T) {
	f := newSignupForm(t)
	err := f.Apply([]patch.Operation{{Op: patch.OperationReplace, Path: "/admin", Value: "x"}})
	assert.ErrorIs(t, err, patch.ErrPathNotAllowed)

	assert.ErrorIs(t, f.SetValue("/admin", "x"), form.ErrUnknownField)
}

func TestReset_RestoresInitialState(t *testing.T) {
	f := newSignupForm(t)
	resets := 0
	f.OnReset(func() { resets++ })

	require.NoError(t, f.SetValue("/name", "bob"))
	require.NoError(t, f.Reset())
	assert.Equal(t, 1, resets)
	assert.Empty(t, f.State().Name)
	assert.Equal(t, "Tell us about you", f.State().Bio)
}

func TestLoad_OnlyChangedFields(t *testing.T) {
	f := newSignupForm(t)
	var names []string
	f.OnInput(func(field types.Field) { names = append(names, field.Name) })

	next := f.State()
	next.Email = "a@b.c"
	next.Name = "bob"
	require.NoError(t, f.Load(next))
	assert.Equal(t, []string{"/email", "/name"}, names)
}

func TestClasses(t *testing.T) {
	f := newSignupForm(t)
	f.ToggleClass("x", true)
	assert.True(t, f.HasClass("x"))
	f.ToggleClass("x", false)
	assert.False(t, f.HasClass("x"))
}

func TestJSONSchema(t *testing.T) {
	f := newSignupForm(t)
	s, err := f.JSONSchema()
	require.NoError(t, err)
	assert.Contains(t, s, "email")
	assert.Contains(t, s, "Full name")
}

func TestInfos(t *testing.T) {
	f := newSignupForm(t)
	require.NoError(t, f.SetValue("/email", "a@b.c"))
	infos := f.Infos(func(name string) bool { return name == "/email" })
	require.Len(t, infos, 6)
	assert.Equal(t, "Email", infos[1].DisplayName)
	assert.True(t, infos[1].Dirty)
	assert.Equal(t, "a@b.c", infos[1].Value)
	assert.Equal(t, "/token", infos[3].DisplayName, "label falls back to the pointer")
}

func TestTrackedForm(t *testing.T) {
	f := newSignupForm(t)
	d := formdirty.New(f)
	assert.False(t, f.HasClass(formdirty.IndicatorClass))

	require.NoError(t, f.SetValue("/email", "a@b.c"))
	assert.True(t, f.HasClass(formdirty.IndicatorClass))

	require.NoError(t, f.SetValue("/bio", "Tell us about you"))
	assert.Equal(t, []string{"/email"}, d.DirtyFields(), "default value is clean")

	require.NoError(t, f.SetValue("/token", "changed"))
	require.NoError(t, f.Apply([]patch.Operation{{Op: patch.OperationReplace, Path: "/agree", Value: true}}))
	assert.Equal(t, []string{"/email"}, d.DirtyFields(), "hidden and checkbox fields are untracked")

	f.SetFieldsetDisabled("person", true)
	require.NoError(t, f.SetValue("/name", "bob"))
	assert.Equal(t, []string{"/email"}, d.DirtyFields(), "fields in a disabled fieldset are skipped")
	f.SetFieldsetDisabled("person", false)

	d.OnSubmitting()
	assert.False(t, f.HasClass(formdirty.IndicatorClass))
	d.OnSubmitSuccess()
	assert.False(t, f.HasClass(formdirty.IndicatorClass))

	require.NoError(t, f.SetValue("/email", "x@y.z"))
	assert.True(t, f.HasClass(formdirty.IndicatorClass))
	require.NoError(t, f.SetValue("/email", "a@b.c"))
	assert.False(t, f.HasClass(formdirty.IndicatorClass), "matches the last submission")

	require.NoError(t, f.SetValue("/name", "alice"))
	require.True(t, f.HasClass(formdirty.IndicatorClass))
	require.NoError(t, f.Reset())
	assert.False(t, f.HasClass(formdirty.IndicatorClass))
	assert.Empty(t, d.DirtyFields())
}

type member struct {
	Name    string   `json:"name"`
	Bio     string   `json:"bio,omitempty"`
	Address *Address `json:"address,omitempty"`
}

func newMemberForm(t *testing.T) *form.Form[member] {
	t.Helper()
	f, err := form.New(member{}, []form.Spec{
		{Name: "/name"},
		{Name: "/bio", Type: types.FieldTextarea},
		{Name: "/address/city"},
	})
	require.NoError(t, err)
	return f
}

func TestLoad_NewNestedObjectReportsItsFields(t *testing.T) {
	f := newMemberForm(t)
	d := formdirty.New(f)
	var got []types.Field
	f.OnInput(func(field types.Field) { got = append(got, field) })

	require.NoError(t, f.Load(member{Address: &Address{City: "Oslo"}}))
	require.Len(t, got, 1)
	assert.Equal(t, "/address/city", got[0].Name)
	assert.Equal(t, "Oslo", got[0].Value)
	assert.Equal(t, []string{"/address/city"}, d.DirtyFields())

	require.NoError(t, f.Load(member{}))
	assert.Nil(t, f.State().Address)
	assert.Empty(t, d.DirtyFields(), "dropping the object clears its fields")
}

func TestLoad_ClearedFieldIsReported(t *testing.T) {
	f := newMemberForm(t)
	d := formdirty.New(f)

	require.NoError(t, f.SetValue("/bio", "hello"))
	require.Equal(t, []string{"/bio"}, d.DirtyFields())

	require.NoError(t, f.Load(member{}))
	assert.Empty(t, f.State().Bio)
	assert.Empty(t, d.DirtyFields())
	assert.False(t, f.HasClass(formdirty.IndicatorClass))
}

func TestSpecUpdatesAreSafeForConcurrentReaders(t *testing.T) {
	f := newSignupForm(t)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			assert.NoError(t, f.SetHidden("/email", i%2 == 0))
			assert.NoError(t, f.SetDisabled("/name", i%2 == 1))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			assert.Len(t, f.AllowedPaths(), 6)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			err := f.Apply([]patch.Operation{{Op: patch.OperationReplace, Path: "/bio", Value: fmt.Sprint(i)}})
			assert.NoError(t, err)
		}
	}()
	wg.Wait()
}
