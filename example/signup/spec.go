package main

import (
	"context"
	"log/slog"

	"github.com/tbxark/formdirty/form"
	"github.com/tbxark/formdirty/submit"
	"github.com/tbxark/formdirty/types"
)

type Signup struct {
	Name     string `json:"name" jsonschema:"description=Full name"`
	Email    string `json:"email" jsonschema:"description=Contact email"`
	Bio      string `json:"bio" jsonschema:"description=Short self introduction"`
	Plan     string `json:"plan" jsonschema:"enum=free,enum=pro,description=Subscription plan"`
	Referrer string `json:"referrer" jsonschema:"description=Referral code"`
}

var signupFields = []form.Spec{
	{Name: "/name", Label: "姓名", Type: types.FieldText},
	{Name: "/email", Label: "邮箱", Type: types.FieldText},
	{Name: "/bio", Label: "简介", Type: types.FieldTextarea, Default: "Hello!"},
	{Name: "/plan", Label: "套餐", Type: types.FieldSelect},
	{Name: "/referrer", Label: "推荐码", Type: types.FieldHidden, Hidden: true},
}

var _ submit.Manager[Signup] = (*SignupManager)(nil)

type SignupManager struct{}

func (SignupManager) Submit(ctx context.Context, form Signup) error {
	slog.Info("Signup submitted", "name", form.Name, "email", form.Email, "plan", form.Plan)
	return nil
}
