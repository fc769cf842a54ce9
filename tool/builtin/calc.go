package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/harshapalnati/agno/tool"
)

// calcTool evaluates arithmetic expressions with CEL. The environment is
// built once at construction; compilation happens per call because the
// expression is the argument.
type calcTool struct {
	env *cel.Env
}

type calcArgs struct {
	Expression string `json:"expression" description:"Arithmetic expression to evaluate"`
}

// NewCalc returns a calculator tool evaluating expressions like "2 + 3 * 4".
func NewCalc() (tool.Tool, error) {
	env, err := cel.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}
	c := &calcTool{env: env}
	return tool.NewFunctionTool(
		"calc",
		"Evaluate an arithmetic expression and return the result",
		tool.SchemaFor(calcArgs{}),
		c.eval,
	), nil
}

func (c *calcTool) eval(_ context.Context, args string) (string, error) {
	expr := strings.TrimSpace(args)
	if expr == "" {
		return "", fmt.Errorf("empty expression")
	}

	ast, iss := c.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return "", fmt.Errorf("compile expression: %w", iss.Err())
	}

	prg, err := c.env.Program(ast)
	if err != nil {
		return "", fmt.Errorf("build program: %w", err)
	}

	out, _, err := prg.Eval(cel.NoVars())
	if err != nil {
		return "", fmt.Errorf("evaluate expression: %w", err)
	}

	return fmt.Sprintf("%v", out.Value()), nil
}
