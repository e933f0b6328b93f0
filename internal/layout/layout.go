// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package layout implements the Haskell-98-style offside-rule layout
// inserter (spec §4.10): a filter sitting between the lexer and the
// parser that turns layout keywords and user braces into an explicit
// block structure, synthesizing `{`, `;`, and `}` tokens where
// indentation alone implies them.
package layout

import (
	"github.com/silt-lang/siltc/internal/diag"
)

// TokenKind distinguishes the handful of token shapes the layout
// algorithm itself branches on; every other lexeme is TokenOther and
// passes through unexamined.
type TokenKind int

const (
	TokenOther TokenKind = iota
	TokenLayoutKeyword
	TokenLBrace
	TokenRBrace
	TokenEOF
)

// Token is one lexeme as the layout inserter receives it from the
// lexer. Indent is the run of spaces/tabs from the start of t's source
// line up to t itself; StartsLine reports whether any newline separates
// t from the previous token (the first token of the whole stream always
// starts a line).
type Token struct {
	Kind       TokenKind
	Text       string
	Indent     string
	StartsLine bool
	Span       diag.Span
}

// Presence distinguishes a token the layout inserter synthesized from
// one carried over unchanged from the lexer (spec §4.10's "presence
// tag distinguishing them from user-written braces").
type Presence int

const (
	PresenceUser Presence = iota
	PresenceSynthetic
)

// OutToken is one token of the layout inserter's output: either an
// original token passed through unchanged, or a synthesized `{`, `;`,
// or `}` marker.
type OutToken struct {
	Token
	Presence Presence
}

type block struct {
	explicit   bool
	lineLeader Token
}

// Insert runs the offside-rule algorithm over tokens (spec §4.10):
//
//   - On a layout keyword ("where", "field"): if the following token is
//     a literal `{`, push an explicit block and pass both tokens through
//     unchanged; otherwise push an implicit block whose line leader is
//     the following token and synthesize a `{` ahead of it.
//   - Before any other token that starts a new line with whitespace
//     exactly equivalent to the current implicit block's line leader,
//     synthesize a `;`.
//   - On a literal `}`: pop implicit blocks, synthesizing a `}` for
//     each, until an explicit block is popped (consuming the literal
//     `}` as that block's close).
//   - At EOF: close every still-open block, synthesizing a `}` for each.
func Insert(tokens []Token) ([]OutToken, error) {
	var out []OutToken
	var stack []block

	emit := func(t Token, presence Presence) {
		out = append(out, OutToken{Token: t, Presence: presence})
	}
	synthesize := func(kind TokenKind, text string) {
		emit(Token{Kind: kind, Text: text}, PresenceSynthetic)
	}

	i := 0
	for i < len(tokens) {
		t := tokens[i]

		if t.Kind == TokenEOF {
			break
		}

		if len(stack) > 0 && !stack[len(stack)-1].explicit && t.StartsLine &&
			t.Indent == stack[len(stack)-1].lineLeader.Indent {
			synthesize(TokenOther, ";")
		}

		switch {
		case t.Kind == TokenLayoutKeyword:
			emit(t, PresenceUser)
			i++
			if i >= len(tokens) || tokens[i].Kind == TokenEOF {
				// A layout keyword with nothing following it still opens
				// an implicit block, immediately closed by the
				// EOF-closing loop below.
				stack = append(stack, block{explicit: false, lineLeader: Token{Indent: ""}})
				synthesize(TokenLBrace, "{")
				continue
			}
			next := tokens[i]
			if next.Kind == TokenLBrace {
				stack = append(stack, block{explicit: true})
				emit(next, PresenceUser)
				i++
				continue
			}
			stack = append(stack, block{explicit: false, lineLeader: next})
			synthesize(TokenLBrace, "{")
			emit(next, PresenceUser)
			i++
			continue

		case t.Kind == TokenRBrace:
			for len(stack) > 0 && !stack[len(stack)-1].explicit {
				stack = stack[:len(stack)-1]
				synthesize(TokenRBrace, "}")
			}
			if len(stack) == 0 {
				return nil, diag.IllFormedInput(t.Span, "unexpected end of scope: `}` with no open block")
			}
			stack = stack[:len(stack)-1]
			emit(t, PresenceUser)
			i++
			continue

		default:
			emit(t, PresenceUser)
			i++
		}
	}

	for len(stack) > 0 {
		stack = stack[:len(stack)-1]
		synthesize(TokenRBrace, "}")
	}

	return out, nil
}
