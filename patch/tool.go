package patch

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formdirty/structured"
	"github.com/tbxark/formdirty/types"
)

const (
	updateFormToolName        = "update_form"
	updateFormToolDescription = "Generate RFC6902 JSON Patch operations that update form fields from the user's input. Only include values the user explicitly provided."
)

type ToolBasedGenerator struct {
	chain *structured.Chain[*Request, UpdateFormArgs]
}

func NewToolBasedGenerator(chatModel model.ToolCallingChatModel) (*ToolBasedGenerator, error) {
	chain, err := structured.NewChain[*Request, UpdateFormArgs](
		chatModel,
		buildPatchPrompt,
		updateFormToolName,
		updateFormToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedGenerator{chain: chain}, nil
}

func (g *ToolBasedGenerator) GeneratePatch(ctx context.Context, req *Request) (*UpdateFormArgs, error) {
	result, err := g.chain.Invoke(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}

	if err := ValidateOperations(result.Ops, allowedSet(req.AllowedPaths)); err != nil {
		return nil, fmt.Errorf("generated patches failed validation: %w", err)
	}
	return result, nil
}

func allowedSet(paths []string) map[string]bool {
	allowed := make(map[string]bool, len(paths))
	for _, path := range paths {
		allowed[path] = true
	}
	return allowed
}

func buildPatchPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf("You are a form assistant. Read the user's input and call %s with RFC6902 JSON Patch operations. Rules: only use information the user stated; use replace for existing fields; only use allowed paths; values are strings; if there is nothing to change, return an empty ops list.", updateFormToolName)

	sections := make([]string, 0, 4)
	if s := types.FormatFields(req.Fields); s != "" {
		sections = append(sections, "# Form fields:\n"+s)
	}
	sections = append(sections, "# Allowed paths:\n"+formatAllowedPaths(req.AllowedPaths))
	if req.StateSchema != "" {
		sections = append(sections, fmt.Sprintf("# Form state schema JSON:\n```json\n%s\n```", req.StateSchema))
	}
	if req.UserInput != "" {
		sections = append(sections, "# User input:\n"+req.UserInput)
	}

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(strings.Join(sections, "\n\n")),
	}, nil
}

func formatAllowedPaths(paths []string) string {
	if len(paths) == 0 {
		return "all (no restriction)"
	}
	var sb strings.Builder
	for _, path := range paths {
		sb.WriteString("- ")
		sb.WriteString(path)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
