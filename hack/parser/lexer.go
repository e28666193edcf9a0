package parser

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"github.com/marcuscaisey/hackro/hack/token"
)

const eof = -1

const openTag = "<?hh"

// errorHandler is the function which handles syntax errors encountered during lexing.
// It's passed the offending token and a format string and arguments to construct an error message from.
type errorHandler func(tok token.Token, format string, args ...any)

// lexer converts Hack source code into lexical tokens.
// Syntax errors are handled by calling the error handler function which can be set using SetErrorHandler. The default
// error handler is a no-op.
type lexer struct {
	file       *token.File
	src        []byte
	errHandler errorHandler

	ch           rune           // character currently being considered
	pos          token.Position // position of character currently being considered
	offset       int            // offset of character currently being considered
	readOffset   int            // offset of next character to be read
	lastReadSize int            // size of last rune read
}

func newLexer(file *token.File) *lexer {
	l := &lexer{
		file:       file,
		src:        file.Contents,
		errHandler: func(token.Token, string, ...any) {},
		pos: token.Position{
			File: file,
			Line: 1,
		},
	}
	l.next()
	return l
}

// SetErrorHandler sets the error handler function which will be called when a syntax error is encountered.
func (l *lexer) SetErrorHandler(errHandler errorHandler) {
	l.errHandler = errHandler
}

// All lexes the rest of the source code and returns the tokens. The final token is always EOF.
func (l *lexer) All() []token.Token {
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

// Next returns the next token. An EOF token is returned if the end of the source code has been reached.
func (l *lexer) Next() token.Token {
	l.skipWhitespaceAndComments()

	startOffset := l.offset
	tok := token.Token{StartPos: l.pos}

	switch {
	case l.ch == eof:
		tok.Type = token.EOF
		tok.EndPos = l.pos
		return tok
	case l.offset == 0 && bytes.HasPrefix(l.src, []byte(openTag)):
		for range openTag {
			l.next()
		}
		tok.Type = token.OpenTag
	case l.ch == ';':
		l.next()
		tok.Type = token.Semicolon
	case l.ch == ',':
		l.next()
		tok.Type = token.Comma
	case l.ch == '.':
		tok.Type = l.consumeSymbol(token.Dot, "=", token.DotEqual, "..", token.Ellipsis)
	case l.ch == '=':
		tok.Type = l.consumeSymbol(token.Equal, "==", token.EqualEqualEqual, "=>", token.LongArrow, "=", token.EqualEqual, ">", token.DoubleArrow)
	case l.ch == '+':
		tok.Type = l.consumeSymbol(token.Plus, "+", token.PlusPlus, "=", token.PlusEqual)
	case l.ch == '-':
		tok.Type = l.consumeSymbol(token.Minus, "-", token.MinusMinus, "=", token.MinusEqual, ">", token.Arrow)
	case l.ch == '*':
		tok.Type = l.consumeSymbol(token.Asterisk, "=", token.AsteriskEqual)
	case l.ch == '/':
		tok.Type = l.consumeSymbol(token.Slash, "=", token.SlashEqual)
	case l.ch == '%':
		tok.Type = l.consumeSymbol(token.Percent, "=", token.PercentEqual)
	case l.ch == '<':
		tok.Type = l.consumeSymbol(token.Less, "=", token.LessEqual)
	case l.ch == '>':
		tok.Type = l.consumeSymbol(token.Greater, "=", token.GreaterEqual)
	case l.ch == '!':
		tok.Type = l.consumeSymbol(token.Bang, "==", token.BangEqualEqual, "=", token.BangEqual)
	case l.ch == '?':
		tok.Type = l.consumeSymbol(token.Question, "?=", token.QuestionQuestionEq, "?", token.QuestionQuestion, "->", token.QuestionArrow)
	case l.ch == ':':
		tok.Type = l.consumeSymbol(token.Colon, ":", token.ColonColon)
	case l.ch == '|':
		tok.Type = l.consumeSymbol(token.Bar, "|", token.BarBar, ">", token.Pipe)
	case l.ch == '&':
		tok.Type = l.consumeSymbol(token.Amp, "&", token.AmpAmp)
	case l.ch == '^':
		l.next()
		tok.Type = token.Caret
	case l.ch == '~':
		l.next()
		tok.Type = token.Tilde
	case l.ch == '@':
		l.next()
		tok.Type = token.At
	case l.ch == '#':
		l.next()
		tok.Type = token.Hash
	case l.ch == '(':
		l.next()
		tok.Type = token.LeftParen
	case l.ch == ')':
		l.next()
		tok.Type = token.RightParen
	case l.ch == '[':
		l.next()
		tok.Type = token.LeftBrack
	case l.ch == ']':
		l.next()
		tok.Type = token.RightBrack
	case l.ch == '{':
		l.next()
		tok.Type = token.LeftBrace
	case l.ch == '}':
		l.next()
		tok.Type = token.RightBrace
	case l.ch == '$' && l.peek() == '$':
		l.next()
		l.next()
		tok.Type = token.DollarDollar
	case l.ch == '$' && isAlpha(l.peek()):
		l.next()
		l.consumeIdent()
		tok.Type = token.Variable
	case l.ch == '"' || l.ch == '\'':
		tok.Type = token.String
		if !l.consumeString() {
			tok.Type = token.Illegal
			tok.EndPos = l.pos
			tok.Lexeme = string(l.src[startOffset:l.offset])
			l.errHandler(tok, "unterminated string literal")
			return tok
		}
	case isDigit(l.ch):
		tok.Type = l.consumeNumber()
	case isAlpha(l.ch) || l.ch == '\\':
		ident := l.consumeIdent()
		tok.Type = token.IdentType(ident)
		if ident == "re" && l.ch == '"' {
			tok.Type = token.PrefixedString
			if !l.consumeString() {
				tok.Type = token.Illegal
				tok.EndPos = l.pos
				tok.Lexeme = string(l.src[startOffset:l.offset])
				l.errHandler(tok, "unterminated string literal")
				return tok
			}
		}
	default:
		ch := l.ch
		l.next()
		tok.EndPos = l.pos
		tok.Type = token.Illegal
		tok.Lexeme = string(ch)
		if unicode.IsPrint(ch) {
			l.errHandler(tok, "illegal character %c", ch)
		} else {
			l.errHandler(tok, "illegal character %#U", ch)
		}
		return tok
	}

	tok.EndPos = l.pos
	tok.Lexeme = string(l.src[startOffset:l.offset])
	return tok
}

// consumeSymbol consumes the current character and then the longest of the given suffixes which follows it. The
// suffixes are passed as (suffix, type) pairs in order of preference. def is returned if no suffix matches.
func (l *lexer) consumeSymbol(def token.Type, suffixesAndTypes ...any) token.Type {
	l.next()
	for i := 0; i < len(suffixesAndTypes); i += 2 {
		suffix := suffixesAndTypes[i].(string)
		if bytes.HasPrefix(l.src[l.offset:], []byte(suffix)) {
			for range suffix {
				l.next()
			}
			return suffixesAndTypes[i+1].(token.Type)
		}
	}
	return def
}

func (l *lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case isWhitespace(l.ch):
			l.next()
		case l.ch == '/' && l.peek() == '/':
			for l.ch != '\n' && l.ch != eof {
				l.next()
			}
		case l.ch == '/' && l.peek() == '*':
			startPos := l.pos
			startOffset := l.offset
			l.next()
			l.next()
			for !(l.ch == '*' && l.peek() == '/') {
				if l.ch == eof {
					l.errHandler(token.Token{
						StartPos: startPos,
						EndPos:   l.pos,
						Type:     token.Illegal,
						Lexeme:   string(l.src[startOffset:l.offset]),
					}, "unterminated block comment")
					return
				}
				l.next()
			}
			l.next()
			l.next()
		default:
			return
		}
	}
}

func (l *lexer) consumeNumber() token.Type {
	if l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.next()
		l.next()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.next()
		}
		return token.Int
	}
	typ := token.Int
	for isDigit(l.ch) || l.ch == '_' {
		l.next()
	}
	if l.ch == '.' && isDigit(l.peek()) {
		typ = token.Float
		l.next()
		for isDigit(l.ch) {
			l.next()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		typ = token.Float
		l.next()
		if l.ch == '+' || l.ch == '-' {
			l.next()
		}
		for isDigit(l.ch) {
			l.next()
		}
	}
	return typ
}

// consumeString consumes a single or double quoted string literal, including its quotes. Escape sequences are kept
// as they appear in the source.
func (l *lexer) consumeString() (terminated bool) {
	quote := l.ch
	l.next()
	for {
		switch l.ch {
		case eof:
			return false
		case '\\':
			l.next()
			if l.ch != eof {
				l.next()
			}
			continue
		case quote:
			l.next()
			return true
		}
		l.next()
	}
}

func (l *lexer) consumeIdent() string {
	startOffset := l.offset
	for isAlphaNumeric(l.ch) || l.ch == '\\' {
		l.next()
	}
	return string(l.src[startOffset:l.offset])
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\r', '\t', '\n':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

func isAlpha(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r == '_' || r >= utf8.RuneSelf
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}

// next reads the next character into l.ch and advances the lexer.
// If the end of the source code has been reached, l.ch is set to eof.
func (l *lexer) next() {
	if l.ch == eof {
		return
	}

	l.offset = l.readOffset
	l.pos.Offset = l.offset

	if l.ch == '\n' {
		l.pos.Line++
		l.pos.Column = 0
	} else {
		l.pos.Column += l.lastReadSize
	}

	if l.readOffset == len(l.src) {
		l.ch = eof
		return
	}

	r, size := utf8.DecodeRune(l.src[l.readOffset:])
	l.lastReadSize = size
	l.readOffset += size
	if r == utf8.RuneError && size == 1 {
		tok := token.Token{
			StartPos: l.pos,
			EndPos:   l.pos,
			Type:     token.Illegal,
			Lexeme:   string(l.src[l.offset : l.offset+1]),
		}
		tok.EndPos.Column++
		tok.EndPos.Offset++
		l.errHandler(tok, "invalid UTF-8 byte %#x", tok.Lexeme)
	}
	l.ch = r
}

// peek returns the next character without advancing the lexer.
// If the end of the source code has been reached, eof is returned.
func (l *lexer) peek() rune {
	if l.readOffset >= len(l.src) {
		return eof
	}
	r, _ := utf8.DecodeRune(l.src[l.readOffset:])
	return r
}
