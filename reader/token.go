package reader

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the s-expression lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	TokenEOF TokenType = iota

	TokenLParen          // (
	TokenRParen          // )
	TokenLBracket        // [
	TokenRBracket        // ]
	TokenHashLParen      // #(
	TokenQuote           // '
	TokenQuasiquote      // `
	TokenUnquote         // ,
	TokenUnquoteSplicing // ,@
	TokenDot             // .
	TokenTrue            // #t
	TokenFalse           // #f
	TokenString          // "..." (possibly unterminated)
	TokenAtom            // symbols, numbers, characters, anything else
)

var tokenNames = map[TokenType]string{
	TokenEOF:             "EOF",
	TokenLParen:          "(",
	TokenRParen:          ")",
	TokenLBracket:        "[",
	TokenRBracket:        "]",
	TokenHashLParen:      "#(",
	TokenQuote:           "'",
	TokenQuasiquote:      "`",
	TokenUnquote:         ",",
	TokenUnquoteSplicing: ",@",
	TokenDot:             ".",
	TokenTrue:            "#t",
	TokenFalse:           "#f",
	TokenString:          "STRING",
	TokenAtom:            "ATOM",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token is a lexical token. Pos is the byte offset of its first character
// and is used only for diagnostics.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

// IsEOF reports whether t marks the end of input.
func (t Token) IsEOF() bool {
	return t.Type == TokenEOF
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// fixedTokens maps punctuation literals to their types.
var fixedTokens = map[string]TokenType{
	"(":  TokenLParen,
	")":  TokenRParen,
	"[":  TokenLBracket,
	"]":  TokenRBracket,
	"#(": TokenHashLParen,
	"'":  TokenQuote,
	"`":  TokenQuasiquote,
	",":  TokenUnquote,
	",@": TokenUnquoteSplicing,
	".":  TokenDot,
	"#t": TokenTrue,
	"#f": TokenFalse,
}

// classify returns the token type for a literal produced by the lexer.
func classify(lit string) TokenType {
	if lit == "" {
		return TokenEOF
	}
	if typ, ok := fixedTokens[lit]; ok {
		return typ
	}
	if lit[0] == '"' {
		return TokenString
	}
	return TokenAtom
}
