package expr

import (
	"strconv"
)

// TokenType identifies a lexical token.
type TokenType int

const (
	TOKEN_EOF TokenType = iota
	TOKEN_NUMBER
	TOKEN_IDENT
	TOKEN_PLUS
	TOKEN_MINUS
	TOKEN_STAR
	TOKEN_SLASH
	TOKEN_PERCENT
	TOKEN_CARET
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_COMMA
)

var tokenNames = map[TokenType]string{
	TOKEN_EOF:     "end of input",
	TOKEN_NUMBER:  "number",
	TOKEN_IDENT:   "identifier",
	TOKEN_PLUS:    "'+'",
	TOKEN_MINUS:   "'-'",
	TOKEN_STAR:    "'*'",
	TOKEN_SLASH:   "'/'",
	TOKEN_PERCENT: "'%'",
	TOKEN_CARET:   "'^'",
	TOKEN_LPAREN:  "'('",
	TOKEN_RPAREN:  "')'",
	TOKEN_COMMA:   "','",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

// Token is a lexical token with its byte offset.
type Token struct {
	Type    TokenType
	Literal string
	Offset  int
}

// Lexer tokenizes expression source.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// NextToken returns the next token or a lexical error.
func (l *Lexer) NextToken() (Token, error) {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}

	start := l.pos
	single := func(t TokenType) (Token, error) {
		tok := Token{Type: t, Literal: string(l.ch), Offset: start}
		l.readChar()
		return tok, nil
	}

	switch {
	case l.ch == 0:
		if l.pos < len(l.input) {
			return Token{}, &SyntaxError{Offset: start, Message: "unexpected NUL byte"}
		}
		return Token{Type: TOKEN_EOF, Offset: start}, nil
	case l.ch == '+':
		return single(TOKEN_PLUS)
	case l.ch == '-':
		return single(TOKEN_MINUS)
	case l.ch == '*':
		if l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			return Token{Type: TOKEN_CARET, Literal: "**", Offset: start}, nil
		}
		return single(TOKEN_STAR)
	case l.ch == '/':
		return single(TOKEN_SLASH)
	case l.ch == '%':
		return single(TOKEN_PERCENT)
	case l.ch == '^':
		return single(TOKEN_CARET)
	case l.ch == '(':
		return single(TOKEN_LPAREN)
	case l.ch == ')':
		return single(TOKEN_RPAREN)
	case l.ch == ',':
		return single(TOKEN_COMMA)
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		return l.readNumber()
	case isLetter(l.ch):
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return Token{Type: TOKEN_IDENT, Literal: l.input[start:l.pos], Offset: start}, nil
	}
	return Token{}, &SyntaxError{Offset: start, Message: "unexpected character " + strconv.QuoteRune(rune(l.ch))}
}

func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			if !isDigit(l.ch) {
				return Token{}, &SyntaxError{Offset: start, Message: "invalid number literal"}
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return Token{Type: TOKEN_NUMBER, Literal: l.input[start:l.pos], Offset: start}, nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}
