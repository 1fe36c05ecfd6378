package command

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formdirty/structured"
)

const (
	parseCommandToolName        = "parse_command_intent"
	parseCommandToolDescription = "Analyze user input and determine the intent: edit, submit, reset or do_nothing."
)

type parseCommandInput struct {
	Intent Command `json:"intent" jsonschema:"required,enum=edit,enum=submit,enum=reset,enum=do_nothing,description=The user's command intent"`
}

type ToolBasedCommandParser struct {
	chain *structured.Chain[string, parseCommandInput]
}

func NewToolBasedCommandParser(chatModel model.ToolCallingChatModel) (*ToolBasedCommandParser, error) {
	chain, err := structured.NewChain[string, parseCommandInput](
		chatModel,
		buildParseCommandPrompt,
		parseCommandToolName,
		parseCommandToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedCommandParser{chain: chain}, nil
}

func (p *ToolBasedCommandParser) ParseCommand(ctx context.Context, input string) (Command, error) {
	result, err := p.chain.Invoke(ctx, input)
	if err != nil {
		return DoNothing, err
	}
	switch result.Intent {
	case Edit, Submit, Reset, DoNothing:
		return result.Intent, nil
	default:
		return DoNothing, fmt.Errorf("unexpected intent %q returned by %s", result.Intent, parseCommandToolName)
	}
}

func buildParseCommandPrompt(ctx context.Context, input string) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf(`You help a user fill in a web form through chat. Decide what the user's latest message asks for.

- submit: the user explicitly wants to send the form as it is now.
- reset: the user explicitly wants to discard every change and start over.
- edit: the message provides or changes values of form fields.
- do_nothing: small talk or anything unrelated to the form.

Call the '%s' tool with the result.`, parseCommandToolName)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(input),
	}, nil
}
