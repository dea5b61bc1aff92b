package items

import (
	"strings"
	"unicode/utf8"
)

// EscapeChar is the character that escapes a separator in an item.
const EscapeChar = '\\'

type TokenKind int

const (
	TokenLiteral TokenKind = iota
	TokenEscaped
)

// Token is either a run of literal text or a single escaped character.
type Token struct {
	Kind TokenKind
	Text string
}

func (t Token) IsEscaped() bool {
	return t.Kind == TokenEscaped
}

// Tokens is an ordered token sequence produced by Tokenize.
type Tokens []Token

// Tokenize scans raw left to right. A character following escape becomes
// an escaped token and a new literal token is started after it. An escape
// character at the very end of raw escapes nothing and is kept as a
// literal backslash.
//
//	Tokenize(`foo\=bar\\baz`, '\\')
//	=> "foo", Escaped("="), "bar", Escaped("\\"), "baz"
func Tokenize(raw string, escape rune) Tokens {
	tokens := Tokens{{Kind: TokenLiteral}}
	var lit strings.Builder
	escStr := string(escape)

	flush := func() {
		tokens[len(tokens)-1].Text = lit.String()
		lit.Reset()
	}

	// Bytes, not runes: invalid UTF-8 must round-trip unchanged.
	for i := 0; i < len(raw); {
		if !strings.HasPrefix(raw[i:], escStr) {
			lit.WriteByte(raw[i])
			i++
			continue
		}

		i += len(escStr)
		if i == len(raw) {
			lit.WriteString(escStr)
			break
		}

		_, size := utf8.DecodeRuneInString(raw[i:])
		flush()
		tokens = append(tokens,
			Token{Kind: TokenEscaped, Text: raw[i : i+size]},
			Token{Kind: TokenLiteral},
		)
		i += size
	}
	flush()

	return tokens
}

// Unescaped concatenates all tokens, escaped ones as their literal character.
func (ts Tokens) Unescaped() string {
	var b strings.Builder
	for _, t := range ts {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Escaped reconstructs the original input, re-inserting escape before every
// escaped token.
func (ts Tokens) Escaped(escape rune) string {
	var b strings.Builder
	for _, t := range ts {
		if t.IsEscaped() {
			b.WriteRune(escape)
		}
		b.WriteString(t.Text)
	}
	return b.String()
}
