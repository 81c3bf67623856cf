package query

import "strings"

// TokenKind classifies a fragment of query text.
type TokenKind int

const (
	// TokenText is literal text copied to the backend unchanged.
	TokenText TokenKind = iota
	// TokenParam is a :KEY placeholder. Value holds KEY.
	TokenParam
	// TokenPath is an {attribute.path} reference. Value holds the path.
	TokenPath
)

// Token is one fragment of scanned query text.
type Token struct {
	Kind  TokenKind
	Value string
}

// Scan splits query text into literal text, :KEY placeholders, and {path}
// references.
//
// Quoted strings ('...' and "...", with doubled quotes as escapes) are
// never scanned for placeholders. A "::" cast is literal text. A '{' that
// does not start a well-formed path is literal text.
func Scan(text string) []Token {
	var tokens []Token
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, Token{Kind: TokenText, Value: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '\'' || c == '"':
			end := quotedEnd(text, i)
			lit.WriteString(text[i:end])
			i = end

		case c == ':' && i+1 < len(text) && text[i+1] == ':':
			lit.WriteString("::")
			i += 2

		case c == ':' && i+1 < len(text) && isNameStart(text[i+1]):
			end := i + 1
			for end < len(text) && isNamePart(text[end]) {
				end++
			}
			flush()
			tokens = append(tokens, Token{Kind: TokenParam, Value: text[i+1 : end]})
			i = end

		case c == '{':
			end := strings.IndexByte(text[i:], '}')
			if end > 1 && isPath(text[i+1:i+end]) {
				flush()
				tokens = append(tokens, Token{Kind: TokenPath, Value: text[i+1 : i+end]})
				i += end + 1
				continue
			}
			lit.WriteByte(c)
			i++

		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return tokens
}

// Placeholders returns the :KEY placeholder names in text, in order of
// appearance, with repeats.
func Placeholders(text string) []string {
	var names []string
	for _, t := range Scan(text) {
		if t.Kind == TokenParam {
			names = append(names, t.Value)
		}
	}
	return names
}

// quotedEnd returns the index just past the quoted string starting at i.
// An unterminated string runs to the end of text.
func quotedEnd(text string, i int) int {
	q := text[i]
	for j := i + 1; j < len(text); j++ {
		if text[j] != q {
			continue
		}
		if j+1 < len(text) && text[j+1] == q {
			j++
			continue
		}
		return j + 1
	}
	return len(text)
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func isPath(s string) bool {
	for _, seg := range strings.Split(s, ".") {
		if seg == "" || !isNameStart(seg[0]) {
			return false
		}
		for i := 1; i < len(seg); i++ {
			if !isNamePart(seg[i]) {
				return false
			}
		}
	}
	return true
}
