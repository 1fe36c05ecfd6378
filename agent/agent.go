// Package agent exposes a dirtiness-tracked form as a conversational agent.
// Each user message either edits fields, submits, or resets the form, and the
// reply reports which fields still carry unsubmitted edits.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formdirty"
	"github.com/tbxark/formdirty/command"
	"github.com/tbxark/formdirty/form"
	"github.com/tbxark/formdirty/patch"
	"github.com/tbxark/formdirty/submit"
)

var _ adk.Agent = (*Agent[any])(nil)

type Agent[T any] struct {
	name        string
	description string
	form        *form.Form[T]
	tracker     *formdirty.FormDirtiness
	driver      *submit.Driver[T]
	parser      command.Parser
	generator   patch.Generator
}

func NewAgent[T any](
	name, description string,
	f *form.Form[T],
	tracker *formdirty.FormDirtiness,
	manager submit.Manager[T],
	parser command.Parser,
	generator patch.Generator,
) *Agent[T] {
	return &Agent[T]{
		name:        name,
		description: description,
		form:        f,
		tracker:     tracker,
		driver:      submit.NewDriver[T](f, tracker, manager),
		parser:      parser,
		generator:   generator,
	}
}

func (a *Agent[T]) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent[T]) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent[T]) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if input == nil || len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no messages in input"),
			})
			return
		}
		resp, err := a.Handle(ctx, input.Messages[len(input.Messages)-1].Content)
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("handle message failed: %w", err),
			})
			return
		}
		gen.Send(&adk.AgentEvent{
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message: &schema.Message{
						Role:    schema.Assistant,
						Content: resp.Message,
					},
					Role: schema.Assistant,
				},
			},
		})
	}()
	return iter
}

// Handle processes a single user message. Failures of the parser, the patch
// generator or the submission are reported in the response, not returned.
func (a *Agent[T]) Handle(ctx context.Context, input string) (*Response, error) {
	cmd, err := a.parser.ParseCommand(ctx, input)
	if err != nil {
		return a.handleError(fmt.Errorf("failed to parse command: %w", err)), nil
	}
	slog.Debug("Parsed command", "command", cmd)

	var message string
	switch cmd {
	case command.Submit:
		if err := a.driver.Submit(ctx); err != nil {
			return a.handleError(err), nil
		}
		message = "表单已成功提交！"
	case command.Reset:
		if err := a.form.Reset(); err != nil {
			return a.handleError(fmt.Errorf("failed to reset form: %w", err)), nil
		}
		message = "表单已重置。"
	case command.Edit:
		changed, err := a.edit(ctx, input)
		if err != nil {
			return a.handleError(err), nil
		}
		if changed == 0 {
			message = "没有从您的输入中识别到需要修改的字段。"
		}
	case command.DoNothing:
	default:
		return nil, fmt.Errorf("unknown command: %s", cmd)
	}
	return a.respond(message, nil), nil
}

func (a *Agent[T]) edit(ctx context.Context, input string) (int, error) {
	dirty := make(map[string]bool)
	for _, name := range a.tracker.DirtyFields() {
		dirty[name] = true
	}
	req := &patch.Request{
		UserInput:    input,
		Fields:       a.form.Infos(func(name string) bool { return dirty[name] }),
		AllowedPaths: a.form.AllowedPaths(),
	}
	if s, err := a.form.JSONSchema(); err == nil {
		req.StateSchema = s
	}
	args, err := a.generator.GeneratePatch(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("failed to generate patch: %w", err)
	}
	if args == nil || len(args.Ops) == 0 {
		return 0, nil
	}
	slog.Debug("Applying patch", "ops", args.Ops)
	if err := a.form.Apply(args.Ops); err != nil {
		return 0, fmt.Errorf("failed to apply patch: %w", err)
	}
	return len(args.Ops), nil
}

func (a *Agent[T]) respond(message string, metadata map[string]string) *Response {
	fields := a.tracker.DirtyFields()
	dirty := a.tracker.IsDirty()
	status := "表单没有未提交的修改。"
	if dirty {
		status = fmt.Sprintf("未提交的修改：%s", strings.Join(fields, ", "))
	}
	if message == "" {
		message = status
	} else {
		message = message + "\n" + status
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &Response{
		Message:     message,
		Phase:       a.tracker.Phase(),
		Dirty:       dirty,
		DirtyFields: fields,
		Metadata:    metadata,
	}
}

func (a *Agent[T]) handleError(err error) *Response {
	slog.Warn("Form agent error", "error", err)
	return a.respond(
		fmt.Sprintf("抱歉，处理您的输入时遇到了问题：%s", err.Error()),
		map[string]string{"error": err.Error()},
	)
}
