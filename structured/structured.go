// Package structured calls a chat model with a single forced tool and decodes
// the tool arguments into a Go value.
package structured

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

type PromptBuilder[TInput any] func(ctx context.Context, input TInput) ([]*schema.Message, error)

type Chain[TInput, TOutput any] struct {
	promptBuilder PromptBuilder[TInput]
	chatModel     model.ToolCallingChatModel
	toolInfo      *schema.ToolInfo
}

func NewChain[TInput, TOutput any](
	chatModel model.ToolCallingChatModel,
	promptBuilder PromptBuilder[TInput],
	toolName string,
	toolDesc string,
) (*Chain[TInput, TOutput], error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required for tool %s", toolName)
	}
	toolInfo, err := utils.GoStruct2ToolInfo[TOutput](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	return &Chain[TInput, TOutput]{
		promptBuilder: promptBuilder,
		chatModel:     chatModel,
		toolInfo:      toolInfo,
	}, nil
}

// Invoke builds the prompt, forces the model to call the tool and decodes the
// first matching tool call.
func (c *Chain[TInput, TOutput]) Invoke(ctx context.Context, input TInput) (*TOutput, error) {
	messages, err := c.promptBuilder(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("build prompt failed: %w", err)
	}

	slog.Debug("Calling tool", "tool", c.toolInfo.Name, "messages", len(messages))
	response, err := c.chatModel.Generate(ctx, messages,
		model.WithTools([]*schema.ToolInfo{c.toolInfo}),
		model.WithToolChoice(schema.ToolChoiceForced, c.toolInfo.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("call model failed: %w", err)
	}
	if response == nil {
		return nil, fmt.Errorf("empty model response for tool %s", c.toolInfo.Name)
	}

	for _, call := range response.ToolCalls {
		if call.Function.Name != "" && call.Function.Name != c.toolInfo.Name {
			continue
		}
		var result TOutput
		if err := sonic.UnmarshalString(call.Function.Arguments, &result); err != nil {
			return nil, fmt.Errorf("parse ToolCall arguments failed: %w", err)
		}
		return &result, nil
	}
	return nil, fmt.Errorf("no %s ToolCall found in model response: %s", c.toolInfo.Name, response.Content)
}

func (c *Chain[TInput, TOutput]) ToolInfo() *schema.ToolInfo {
	return c.toolInfo
}
