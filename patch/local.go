package patch

import (
	"context"
	"errors"
	"strings"
)

// LocalGenerator reads edits written as "path = value", one per line or
// separated by ";". A path without a leading slash is treated as a top-level
// field. Text that does not look like an edit is ignored.
type LocalGenerator struct{}

func NewLocalGenerator() *LocalGenerator {
	return &LocalGenerator{}
}

func (g *LocalGenerator) GeneratePatch(ctx context.Context, req *Request) (*UpdateFormArgs, error) {
	allowed := allowedSet(req.AllowedPaths)
	args := &UpdateFormArgs{Ops: []Operation{}}
	for _, line := range strings.FieldsFunc(req.UserInput, func(r rune) bool { return r == '\n' || r == ';' }) {
		path, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		path = strings.TrimSpace(path)
		if path == "" || strings.ContainsAny(path, " \t") {
			continue
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		args.Ops = append(args.Ops, Operation{
			Op:    OperationReplace,
			Path:  path,
			Value: strings.TrimSpace(value),
		})
	}
	if err := ValidateOperations(args.Ops, allowed); err != nil {
		return nil, err
	}
	return args, nil
}

// FailbackGenerator returns the first successful result of its generators.
type FailbackGenerator struct {
	generators []Generator
}

func NewFailbackGenerator(generators ...Generator) *FailbackGenerator {
	return &FailbackGenerator{generators: generators}
}

func (g *FailbackGenerator) GeneratePatch(ctx context.Context, req *Request) (*UpdateFormArgs, error) {
	lastErr := errors.New("no patch generator configured")
	for _, generator := range g.generators {
		args, err := generator.GeneratePatch(ctx, req)
		if err == nil {
			return args, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
