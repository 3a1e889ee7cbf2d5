package reader

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for s-expression syntax
// ---------------------------------------------------------------------------

// Lexer turns a byte stream into tokens. Positions are byte offsets from the
// start of the stream.
type Lexer struct {
	src *bufio.Reader
	pos int // offset of the next unread byte
	err error
}

// NewLexer creates a lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Lexer{src: br}
}

// NewStringLexer creates a lexer over an in-memory string.
func NewStringLexer(input string) *Lexer {
	return NewLexer(strings.NewReader(input))
}

// Err returns the first read error other than io.EOF.
func (l *Lexer) Err() error {
	return l.err
}

// Pos returns the offset of the next unread byte.
func (l *Lexer) Pos() int {
	return l.pos
}

func (l *Lexer) readByte() (byte, bool) {
	b, err := l.src.ReadByte()
	if err != nil {
		if !errors.Is(err, io.EOF) && l.err == nil {
			l.err = err
		}
		return 0, false
	}
	l.pos++
	return b, true
}

func (l *Lexer) unreadByte() {
	if err := l.src.UnreadByte(); err == nil {
		l.pos--
	}
}

func (l *Lexer) readRune(sb *strings.Builder) bool {
	r, size, err := l.src.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) && l.err == nil {
			l.err = err
		}
		return false
	}
	l.pos += size
	sb.WriteRune(r)
	return true
}

// NextToken returns the next token. At end of input it returns a TokenEOF
// token with an empty literal.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.pos
	lit := l.scan()
	return Token{Type: classify(lit), Literal: lit, Pos: pos}
}

func (l *Lexer) scan() string {
	c, ok := l.readByte()
	if !ok {
		return ""
	}

	var sb strings.Builder
	sb.WriteByte(c)

	switch c {
	case '(', ')', '[', ']', '`', '\'':
		return sb.String()

	case ',':
		if d, ok := l.readByte(); ok {
			if d == '@' {
				return ",@"
			}
			l.unreadByte()
		}
		return ","

	case '"':
		l.readString(&sb)
		return sb.String()

	case '#':
		d, ok := l.readByte()
		if !ok {
			return sb.String()
		}
		sb.WriteByte(d)
		switch d {
		case '(', 't', 'f':
			return sb.String()
		case '\\':
			// #\x takes the next character whatever it is, so #\( and #\
			// (space) are characters rather than delimiters.
			l.readRune(&sb)
		}
		l.readIdentifier(&sb)
		return sb.String()
	}

	l.readIdentifier(&sb)
	return sb.String()
}

// readString copies characters verbatim up to and including an unescaped
// closing quote. If input ends first the literal is left unterminated.
func (l *Lexer) readString(sb *strings.Builder) {
	escaped := false
	for {
		e, ok := l.readByte()
		if !ok {
			return
		}
		sb.WriteByte(e)
		switch {
		case escaped:
			escaped = false
		case e == '\\':
			escaped = true
		case e == '"':
			return
		}
	}
}

// readIdentifier appends bytes until a delimiter or end of input.
func (l *Lexer) readIdentifier(sb *strings.Builder) {
	for {
		e, ok := l.readByte()
		if !ok {
			return
		}
		if IsDelimiter(e) {
			l.unreadByte()
			return
		}
		sb.WriteByte(e)
	}
}

// skipWhitespaceAndComments skips whitespace and ; line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		c, ok := l.readByte()
		if !ok {
			return
		}
		switch {
		case isSpace(c):
			continue
		case c == ';':
			for {
				d, ok := l.readByte()
				if !ok || d == '\n' {
					break
				}
			}
			continue
		}
		l.unreadByte()
		return
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// IsDelimiter reports whether c ends an identifier.
func IsDelimiter(c byte) bool {
	switch c {
	case '(', ')', '[', ']', '"', ',', '`', '\'', ';':
		return true
	}
	return isSpace(c)
}
