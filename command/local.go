package command

import (
	"context"
	"errors"
	"strings"
)

type LocalCommandParser struct {
	SubmitKeywords []string
	ResetKeywords  []string
}

func NewLocalCommandParser() *LocalCommandParser {
	return &LocalCommandParser{
		SubmitKeywords: []string{"提交", "submit", "send", "确认", "confirm", "done", "完成"},
		ResetKeywords:  []string{"重置", "reset", "clear", "清空", "restart"},
	}
}

// ParseCommand matches whole-input keywords. Any other non-empty input is an
// edit.
func (p *LocalCommandParser) ParseCommand(ctx context.Context, input string) (Command, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return DoNothing, nil
	}
	for _, keyword := range p.SubmitKeywords {
		if normalized == keyword {
			return Submit, nil
		}
	}
	for _, keyword := range p.ResetKeywords {
		if normalized == keyword {
			return Reset, nil
		}
	}
	return Edit, nil
}

type FailbackCommandParser struct {
	parsers []Parser
}

func NewFailbackCommandParser(parsers ...Parser) *FailbackCommandParser {
	return &FailbackCommandParser{parsers: parsers}
}

func (p *FailbackCommandParser) ParseCommand(ctx context.Context, input string) (Command, error) {
	lastErr := errors.New("no command parser configured")
	for _, parser := range p.parsers {
		cmd, err := parser.ParseCommand(ctx, input)
		if err == nil {
			return cmd, nil
		}
		lastErr = err
	}
	return DoNothing, lastErr
}
