package command

import "context"

type Command string

const (
	Edit      Command = "edit"
	Submit    Command = "submit"
	Reset     Command = "reset"
	DoNothing Command = "do_nothing"
)

type Parser interface {
	ParseCommand(ctx context.Context, input string) (Command, error)
}
