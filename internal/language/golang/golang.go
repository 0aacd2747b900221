// Package golang implements the language capability surface for Go using
// the standard library scanner and parser.
package golang

import (
	"context"
	"fmt"
	"go/parser"
	"go/scanner"
	gotoken "go/token"
	"strings"

	"codemine/internal/language"
)

type Go struct{}

func init() {
	language.Register(Go{})
}

func (Go) Name() string          { return "go" }
func (Go) Extensions() []string  { return []string{".go"} }

func (Go) CheckSyntax(_ context.Context, source []byte) (bool, error) {
	fset := gotoken.NewFileSet()
	_, err := parser.ParseFile(fset, "source.go", source, 0)
	return err == nil, nil
}

func (g Go) Tokenize(_ context.Context, source []byte) ([]language.Token, error) {
	fset := gotoken.NewFileSet()
	file := fset.AddFile("source.go", fset.Base(), len(source))

	var firstErr error
	handler := func(pos gotoken.Position, msg string) {
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %s", pos, msg)
		}
	}

	var s scanner.Scanner
	s.Init(file, source, handler, 0)

	var tokens []language.Token
	for {
		pos, tok, lit := s.Scan()
		if tok == gotoken.EOF {
			break
		}
		tokens = append(tokens, makeToken(fset.Position(pos), tok, lit))
	}
	if firstErr != nil {
		return nil, fmt.Errorf("tokenize go source: %w", firstErr)
	}
	return tokens, nil
}

func (g Go) Summarize(ctx context.Context, source []byte) (language.Summary, error) {
	tokens, err := g.Tokenize(ctx, source)
	if err != nil {
		return language.Summary{}, err
	}
	return language.SummarizeTokens(tokens), nil
}

func (g Go) Vocabularize(ctx context.Context, source []byte) ([]string, error) {
	tokens, err := g.Tokenize(ctx, source)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		entry, err := stringifyToken(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func makeToken(pos gotoken.Position, tok gotoken.Token, lit string) language.Token {
	text := lit
	if text == "" {
		text = tok.String()
	}
	if tok == gotoken.SEMICOLON {
		// Automatically inserted semicolons scan with a "\n" literal.
		text = ";"
	}

	start := language.Position{Line: pos.Line, Column: pos.Column - 1}
	end := endPosition(start, text)

	return language.Token{
		Name:  classify(tok),
		Value: text,
		Start: start,
		End:   end,
	}
}

// endPosition advances start across the token text; raw string literals
// are the only multi-line tokens the scanner emits here.
func endPosition(start language.Position, text string) language.Position {
	newlines := strings.Count(text, "\n")
	if newlines == 0 {
		return language.Position{Line: start.Line, Column: start.Column + len(text)}
	}
	last := text[strings.LastIndexByte(text, '\n')+1:]
	return language.Position{Line: start.Line + newlines, Column: len(last)}
}

func classify(tok gotoken.Token) string {
	switch {
	case tok.IsKeyword():
		return "Keyword"
	case tok == gotoken.IDENT:
		return "Identifier"
	case tok == gotoken.INT, tok == gotoken.FLOAT, tok == gotoken.IMAG:
		return "Numeric"
	case tok == gotoken.STRING:
		return "String"
	case tok == gotoken.CHAR:
		return "Char"
	default:
		return "Punctuator"
	}
}

func stringifyToken(tok language.Token) (string, error) {
	switch tok.Name {
	case "Keyword", "Punctuator":
		return tok.Value, nil
	case "Identifier":
		return "<IDENTIFIER>", nil
	case "Numeric":
		return "<NUMBER>", nil
	case "String":
		return "<STRING>", nil
	case "Char":
		return "<CHAR>", nil
	default:
		return "", fmt.Errorf("unhandled token class %q", tok.Name)
	}
}
