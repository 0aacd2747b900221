// Package javascript implements the language capability surface for
// JavaScript by shelling out to an esprima interface binary. The binary
// reads source on stdin; with --check-syntax it exits 0/1 for valid and
// invalid source, and without flags it prints the esprima token stream as
// JSON.
package javascript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"codemine/internal/language"
)

const DefaultBinary = "esprima-interface"

type JavaScript struct {
	// Binary is the esprima interface executable, resolved via PATH.
	Binary string
}

func init() {
	language.Register(New(""))
}

func New(binary string) *JavaScript {
	if binary == "" {
		binary = os.Getenv("CODEMINE_ESPRIMA")
	}
	if binary == "" {
		binary = DefaultBinary
	}
	return &JavaScript{Binary: binary}
}

func (*JavaScript) Name() string         { return "javascript" }
func (*JavaScript) Extensions() []string { return []string{".js"} }

func (j *JavaScript) CheckSyntax(ctx context.Context, source []byte) (bool, error) {
	cmd := exec.CommandContext(ctx, j.Binary, "--check-syntax")
	cmd.Stdin = bytes.NewReader(source)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		// Nonzero exit is the binary's verdict, not a malfunction.
		return false, nil
	}
	return false, fmt.Errorf("%s --check-syntax: %w", j.Binary, err)
}

// esprimaToken is the wire format of one token emitted by the binary.
type esprimaToken struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Loc   struct {
		Start struct {
			Line   int `json:"line"`
			Column int `json:"column"`
		} `json:"start"`
		End struct {
			Line   int `json:"line"`
			Column int `json:"column"`
		} `json:"end"`
	} `json:"loc"`
}

func (j *JavaScript) Tokenize(ctx context.Context, source []byte) ([]language.Token, error) {
	cmd := exec.CommandContext(ctx, j.Binary)
	cmd.Stdin = bytes.NewReader(source)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: tokenize: %w", j.Binary, err)
	}

	var raw []esprimaToken
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("%s: decode token stream: %w", j.Binary, err)
	}

	tokens := make([]language.Token, 0, len(raw))
	for _, t := range raw {
		tokens = append(tokens, language.Token{
			Name:  t.Type,
			Value: t.Value,
			Start: language.Position{Line: t.Loc.Start.Line, Column: t.Loc.Start.Column},
			End:   language.Position{Line: t.Loc.End.Line, Column: t.Loc.End.Column},
		})
	}
	return tokens, nil
}

func (j *JavaScript) Summarize(ctx context.Context, source []byte) (language.Summary, error) {
	tokens, err := j.Tokenize(ctx, source)
	if err != nil {
		return language.Summary{}, err
	}
	return language.SummarizeTokens(tokens), nil
}

func (j *JavaScript) Vocabularize(ctx context.Context, source []byte) ([]string, error) {
	tokens, err := j.Tokenize(ctx, source)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		entry, err := StringifyLexeme(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// StringifyLexeme converts one esprima token to its vocabulary form:
// closed-class lexemes verbatim, open-class lexemes as category markers,
// template literals split by their position in the interpolation.
func StringifyLexeme(tok language.Token) (string, error) {
	switch tok.Name {
	case "Keyword", "Punctuator", "Boolean":
		return tok.Value, nil
	case "Null":
		return "null", nil
	case "Identifier":
		return "<IDENTIFIER>", nil
	case "Numeric":
		return "<NUMBER>", nil
	case "String":
		return "<STRING>", nil
	case "RegularExpression":
		return "<REGEXP>", nil
	case "Template":
		return stringifyTemplate(tok.Value)
	default:
		return "", fmt.Errorf("unhandled token type %q", tok.Name)
	}
}

func stringifyTemplate(value string) (string, error) {
	if len(value) < 2 {
		return "", fmt.Errorf("malformed template literal %q", value)
	}
	switch {
	case strings.HasPrefix(value, "`") && strings.HasSuffix(value, "`"):
		return "<STANDALONE-TEMPLATE>", nil
	case strings.HasPrefix(value, "`") && strings.HasSuffix(value, "${"):
		return "<TEMPLATE-HEAD>", nil
	case strings.HasPrefix(value, "}") && strings.HasSuffix(value, "`"):
		return "<TEMPLATE-TAIL>", nil
	case strings.HasPrefix(value, "}") && strings.HasSuffix(value, "${"):
		return "<TEMPLATE-MIDDLE>", nil
	}
	return "", fmt.Errorf("unhandled template literal %q", value)
}
