package dbd

import (
	"strings"

	"github.com/pkg/errors"
)

type tokKind byte

const (
	tokEOF tokKind = iota
	tokWord
	tokString
	tokPunct
)

type token struct {
	kind tokKind
	text string
	line int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of file"
	case tokString:
		return "\"" + t.text + "\""
	}
	return t.text
}

var ErrSyntax = errors.New("dbd: syntax error")

// lexer splits definition text into words, quoted strings and the
// punctuation ( ) { } ,. A '#' starts a comment running to the end of the
// line; lines starting with '%' are passed through by code generators and
// skipped here.
type lexer struct {
	src  string
	pos  int
	line int
	peek *token
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func isWordByte(c byte) bool {
	switch c {
	case '(', ')', '{', '}', ',', '"', '#', ' ', '\t', '\r', '\n':
		return false
	}
	return true
}

func (l *lexer) skip() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
			if l.pos < len(l.src) && l.src[l.pos] == '%' {
				l.skipLine()
			}
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#':
			l.skipLine()
		case c == '%' && l.pos == 0:
			l.skipLine()
		default:
			return
		}
	}
}

func (l *lexer) skipLine() {
	if i := strings.IndexByte(l.src[l.pos:], '\n'); i >= 0 {
		l.pos += i
	} else {
		l.pos = len(l.src)
	}
}

func (l *lexer) next() (token, error) {
	if l.peek != nil {
		t := *l.peek
		l.peek = nil
		return t, nil
	}
	l.skip()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}
	start := l.pos
	c := l.src[l.pos]
	switch {
	case strings.IndexByte("(){},", c) >= 0:
		l.pos++
		return token{kind: tokPunct, text: string(c), line: l.line}, nil
	case c == '"':
		return l.quoted()
	}
	for l.pos < len(l.src) && isWordByte(l.src[l.pos]) {
		l.pos++
	}
	return token{kind: tokWord, text: l.src[start:l.pos], line: l.line}, nil
}

// quoted reads a string; a backslash keeps the next byte verbatim.
func (l *lexer) quoted() (token, error) {
	line := l.line
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return token{kind: tokString, text: sb.String(), line: line}, nil
		case '\\':
			if l.pos+1 < len(l.src) {
				l.pos++
				c = l.src[l.pos]
			}
		case '\n':
			return token{}, errors.Wrapf(ErrSyntax, "line %d: newline in string", line)
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, errors.Wrapf(ErrSyntax, "line %d: unterminated string", line)
}

func (l *lexer) unread(t token) {
	l.peek = &t
}
