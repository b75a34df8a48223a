package internal

import (
	"bytes"

	tt "github.com/gnolang/pmconv/internal/types"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// token is a lexed JavaScript token with the position of its first byte.
type token struct {
	Type js.TokenType
	Text string
	Pos  tt.Position
}

// End returns the position of the token's last byte.
func (t token) End() tt.Position {
	return tt.Position{
		Offset: t.Pos.Offset + len(t.Text) - 1,
		Line:   t.Pos.Line,
		Column: t.Pos.Column + len(t.Text) - 1,
	}
}

func (t token) isComment() bool {
	return t.Type == js.CommentToken || t.Type == js.CommentLineTerminatorToken
}

// tokenize lexes src into significant tokens and comments. Whitespace and
// line terminators are dropped. Scanning stops at the first lexer error.
func tokenize(src []byte) []token {
	l := js.NewLexer(parse.NewInputString(string(src)))
	pos := tt.Position{Line: 1, Column: 1}

	var (
		tokens []token
		prev   js.TokenType = js.ErrorToken
	)
	for {
		typ, data := l.Next()
		if (typ == js.DivToken || typ == js.DivEqToken) && regexpAllowed(prev) {
			typ, data = l.RegExp()
		}
		if typ == js.ErrorToken {
			return tokens
		}

		switch typ {
		case js.WhitespaceToken, js.LineTerminatorToken:
		case js.CommentToken, js.CommentLineTerminatorToken:
			tokens = append(tokens, token{Type: typ, Text: string(data), Pos: pos})
		default:
			tokens = append(tokens, token{Type: typ, Text: string(data), Pos: pos})
			prev = typ
		}
		pos = advance(pos, data)
	}
}

// regexpAllowed reports whether a slash after prev starts a regular
// expression rather than a division.
func regexpAllowed(prev js.TokenType) bool {
	switch prev {
	case js.ErrorToken:
		return true
	case js.CloseParenToken, js.CloseBracketToken, js.CloseBraceToken,
		js.ThisToken, js.SuperToken, js.TrueToken, js.FalseToken, js.NullToken,
		js.IncrToken, js.DecrToken:
		return false
	}
	if js.IsIdentifier(prev) || js.IsNumeric(prev) {
		return false
	}
	switch prev {
	case js.StringToken, js.TemplateToken, js.TemplateEndToken, js.RegExpToken, js.PrivateIdentifierToken:
		return false
	}
	return true
}

func advance(pos tt.Position, data []byte) tt.Position {
	pos.Offset += len(data)
	for {
		i := bytes.IndexAny(data, "\r\n")
		if i < 0 {
			pos.Column += len(data)
			return pos
		}
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			i++
		}
		pos.Line++
		pos.Column = 1
		data = data[i+1:]
	}
}
