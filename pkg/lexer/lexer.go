// Package lexer implements the Soplang tokenizer.
package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokDoor TokenType = iota
	TokHawl
	TokCeli
	TokQor
	TokAkhri
	TokHaddii
	TokHaddiiKale
	TokHaddiiKalena
	TokKuCeli
	TokIntaAy
	TokJooji
	TokSiiWad
	TokIskuDay
	TokQabo
	TokKaKeen
	TokFasalka
	TokKaDhaxal
	TokCusub
	TokNafta

	// Static type keywords
	TokTiro
	TokQoraal
	TokBool
	TokLiis
	TokShey

	// Literal keywords
	TokTrue
	TokFalse
	TokNull

	// Literals
	TokNumber
	TokString

	// Identifiers
	TokIdent

	// Punctuation
	TokLBrace    // {
	TokRBrace    // }
	TokLBracket  // [
	TokRBracket  // ]
	TokLParen    // (
	TokRParen    // )
	TokColon     // :
	TokComma     // ,
	TokSemicolon // ;
	TokDot       // .
	TokAssign    // =

	// Comparison operators
	TokGtEq   // >=
	TokLtEq   // <=
	TokEqEq   // ==
	TokBangEq // !=
	TokGt     // >
	TokLt     // <

	// Logical operators
	TokAndAnd // &&
	TokOrOr   // ||
	TokBang   // !

	// Arithmetic operators
	TokPlus    // +
	TokMinus   // -
	TokStar    // *
	TokSlash   // /
	TokPercent // %

	// Special
	TokEOF
)

// Token represents a single lexer token. Number is set for TokNumber only.
type Token struct {
	Type   TokenType
	Value  string
	Number float64
	Span   ast.Span
}

var keywords = map[string]TokenType{
	"door":          TokDoor,
	"hawl":          TokHawl,
	"howl":          TokHawl,
	"celi":          TokCeli,
	"soo_celi":      TokCeli,
	"qor":           TokQor,
	"akhri":         TokAkhri,
	"haddii":        TokHaddii,
	"haddii_kale":   TokHaddiiKale,
	"haddii_kalena": TokHaddiiKalena,
	"ku_celi":       TokKuCeli,
	"inta_ay":       TokIntaAy,
	"jooji":         TokJooji,
	"sii_wad":       TokSiiWad,
	"isku_day":      TokIskuDay,
	"qabo":          TokQabo,
	"ka_keen":       TokKaKeen,
	"fasalka":       TokFasalka,
	"ka_dhaxal":     TokKaDhaxal,
	"cusub":         TokCusub,
	"nafta":         TokNafta,
	"tiro":          TokTiro,
	"qoraal":        TokQoraal,
	"bool":          TokBool,
	"labadaran":     TokBool,
	"liis":          TokLiis,
	"shey":          TokShey,
	"run":           TokTrue,
	"true":          TokTrue,
	"been":          TokFalse,
	"false":         TokFalse,
	"null":          TokNull,
}

// LookupKeyword reports the keyword token type for word, if any.
func LookupKeyword(word string) (TokenType, bool) {
	t, ok := keywords[word]
	return t, ok
}

// Keywords returns every keyword spelling recognised by the lexer.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	return out
}

// IsKeyword returns true if the token type is a keyword (including type and literal keywords).
func (t TokenType) IsKeyword() bool {
	return t >= TokDoor && t <= TokNull
}

// IsStaticType returns true for the five static type keywords.
func (t TokenType) IsStaticType() bool {
	return t >= TokTiro && t <= TokShey
}

var tokenNames = map[TokenType]string{
	TokNumber:    "NUMBER",
	TokString:    "STRING",
	TokIdent:     "IDENTIFIER",
	TokLBrace:    "{",
	TokRBrace:    "}",
	TokLBracket:  "[",
	TokRBracket:  "]",
	TokLParen:    "(",
	TokRParen:    ")",
	TokColon:     ":",
	TokComma:     ",",
	TokSemicolon: ";",
	TokDot:       ".",
	TokAssign:    "=",
	TokGtEq:      ">=",
	TokLtEq:      "<=",
	TokEqEq:      "==",
	TokBangEq:    "!=",
	TokGt:        ">",
	TokLt:        "<",
	TokAndAnd:    "&&",
	TokOrOr:      "||",
	TokBang:      "!",
	TokPlus:      "+",
	TokMinus:     "-",
	TokStar:      "*",
	TokSlash:     "/",
	TokPercent:   "%",
	TokEOF:       "EOF",
}

var keywordNames = map[TokenType]string{
	TokDoor:         "door",
	TokHawl:         "hawl",
	TokCeli:         "celi",
	TokQor:          "qor",
	TokAkhri:        "akhri",
	TokHaddii:       "haddii",
	TokHaddiiKale:   "haddii_kale",
	TokHaddiiKalena: "haddii_kalena",
	TokKuCeli:       "ku_celi",
	TokIntaAy:       "inta_ay",
	TokJooji:        "jooji",
	TokSiiWad:       "sii_wad",
	TokIskuDay:      "isku_day",
	TokQabo:         "qabo",
	TokKaKeen:       "ka_keen",
	TokFasalka:      "fasalka",
	TokKaDhaxal:     "ka_dhaxal",
	TokCusub:        "cusub",
	TokNafta:        "nafta",
	TokTiro:         "tiro",
	TokQoraal:       "qoraal",
	TokBool:         "bool",
	TokLiis:         "liis",
	TokShey:         "shey",
	TokTrue:         "run",
	TokFalse:        "been",
	TokNull:         "null",
}

// String returns the canonical spelling of a keyword or punctuation token,
// or the category name for literals and identifiers.
func (t TokenType) String() string {
	if s, ok := keywordNames[t]; ok {
		return s
	}
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) skipWhitespaceAndComments() error {
	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v':
			s.advance()
		case ch == '/' && s.peekAt(1) == '/':
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		case ch == '/' && s.peekAt(1) == '*':
			startLine, startCol := s.line, s.col
			s.advance()
			s.advance()
			closed := false
			for !s.atEnd() {
				if s.peek() == '*' && s.peekAt(1) == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				return s.lexError(diagnostics.EUnterminatedComment, startLine, startCol, nil)
			}
		default:
			return nil
		}
	}
	return nil
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentChar(ch byte) bool {
	return isAlpha(ch) || isDigit(ch) || ch == '_'
}

// scanString reads a '...' or "..." literal. The body is taken verbatim:
// there are no escape sequences and newlines are allowed.
func (s *scanner) scanString() (Token, error) {
	startLine, startCol := s.line, s.col
	quote := s.advance()
	start := s.pos

	for !s.atEnd() {
		if s.peek() == quote {
			text := s.source[start:s.pos]
			s.advance()
			return Token{
				Type:  TokString,
				Value: text,
				Span:  s.span(startLine, startCol),
			}, nil
		}
		s.advance()
	}
	return Token{}, s.lexError(diagnostics.EUnterminatedString, startLine, startCol, nil)
}

func (s *scanner) scanNumber() (Token, error) {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}

	// Fractional part only when a digit follows the dot, so `5.x` stays a property access.
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance()
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
		if s.peek() == '.' && isDigit(s.peekAt(1)) {
			for !s.atEnd() && (isDigit(s.peek()) || s.peek() == '.') {
				s.advance()
			}
			return Token{}, s.lexError(diagnostics.EMalformedNumber, startLine, startCol,
				diagnostics.Args{"text": s.source[startPos:s.pos]})
		}
	}

	text := s.source[startPos:s.pos]
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, s.lexError(diagnostics.EMalformedNumber, startLine, startCol, diagnostics.Args{"text": text})
	}
	return Token{
		Type:   TokNumber,
		Value:  text,
		Number: n,
		Span:   s.span(startLine, startCol),
	}, nil
}

func (s *scanner) scanIdentOrKeyword() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isIdentChar(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]
	if tokType, ok := keywords[text]; ok {
		return Token{
			Type:  tokType,
			Value: text,
			Span:  s.span(startLine, startCol),
		}
	}

	return Token{
		Type:  TokIdent,
		Value: text,
		Span:  s.span(startLine, startCol),
	}
}

func (s *scanner) lexError(code string, line, col int, args diagnostics.Args) error {
	diag := diagnostics.New(
		code,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		args,
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Text()
}

func (s *scanner) single(typ TokenType, text string) Token {
	startLine, startCol := s.line, s.col
	for range text {
		s.advance()
	}
	return Token{Type: typ, Value: text, Span: s.span(startLine, startCol)}
}

func (s *scanner) nextToken() (Token, error) {
	if err := s.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	if s.atEnd() {
		return Token{
			Type:  TokEOF,
			Value: "",
			Span:  s.span(s.line, s.col),
		}, nil
	}

	ch := s.peek()
	next := s.peekAt(1)
	startLine, startCol := s.line, s.col

	switch ch {
	case '{':
		return s.single(TokLBrace, "{"), nil
	case '}':
		return s.single(TokRBrace, "}"), nil
	case '[':
		return s.single(TokLBracket, "["), nil
	case ']':
		return s.single(TokRBracket, "]"), nil
	case '(':
		return s.single(TokLParen, "("), nil
	case ')':
		return s.single(TokRParen, ")"), nil
	case ':':
		return s.single(TokColon, ":"), nil
	case ',':
		return s.single(TokComma, ","), nil
	case ';':
		return s.single(TokSemicolon, ";"), nil
	case '.':
		return s.single(TokDot, "."), nil
	case '+':
		return s.single(TokPlus, "+"), nil
	case '-':
		return s.single(TokMinus, "-"), nil
	case '*':
		return s.single(TokStar, "*"), nil
	case '/':
		return s.single(TokSlash, "/"), nil
	case '%':
		return s.single(TokPercent, "%"), nil
	case '=':
		if next == '=' {
			return s.single(TokEqEq, "=="), nil
		}
		return s.single(TokAssign, "="), nil
	case '!':
		if next == '=' {
			return s.single(TokBangEq, "!="), nil
		}
		return s.single(TokBang, "!"), nil
	case '>':
		if next == '=' {
			return s.single(TokGtEq, ">="), nil
		}
		return s.single(TokGt, ">"), nil
	case '<':
		if next == '=' {
			return s.single(TokLtEq, "<="), nil
		}
		return s.single(TokLt, "<"), nil
	case '&':
		if next == '&' {
			return s.single(TokAndAnd, "&&"), nil
		}
		return Token{}, s.lexError(diagnostics.EUnexpectedChar, startLine, startCol, diagnostics.Args{"char": "&"})
	case '|':
		if next == '|' {
			return s.single(TokOrOr, "||"), nil
		}
		return Token{}, s.lexError(diagnostics.EUnexpectedChar, startLine, startCol, diagnostics.Args{"char": "|"})
	case '"', '\'':
		return s.scanString()
	}

	if isDigit(ch) {
		return s.scanNumber()
	}

	if isAlpha(ch) {
		return s.scanIdentOrKeyword(), nil
	}

	r, _ := utf8.DecodeRuneInString(s.source[s.pos:])
	return Token{}, s.lexError(diagnostics.EUnexpectedChar, startLine, startCol, diagnostics.Args{"char": string(r)})
}

// Tokenize breaks source code into a slice of tokens terminated by TokEOF.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
