// Package token declares the type representing a lexical token of Hack code.
package token

import (
	"cmp"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

func init() {
	for t := Illegal; t < typesEnd; t++ {
		if _, ok := typeStrings[t]; !ok {
			panic(fmt.Sprintf("typeStrings is missing entry for Type %d", t))
		}
	}
}

// Constants for special identifiers.
const (
	IdentThis        = "$this"
	IdentPlaceholder = "$_"
)

// Type is the type of a lexical token of Hack code.
type Type int

// The list of all token types.
const (
	Illegal Type = iota
	EOF

	// Keywords
	keywordsStart
	Abstract
	As
	Async
	Await
	Break
	Case
	Catch
	Class
	Clone
	Const
	Continue
	Darray
	Default
	Dict
	Do
	Echo
	Else
	Elseif
	Extends
	False
	Final
	Finally
	For
	Foreach
	Function
	If
	Implements
	Include
	IncludeOnce
	Inout
	Interface
	Is
	Keyset
	List
	New
	Null
	Private
	Protected
	Public
	Readonly
	Require
	RequireOnce
	Return
	Shape
	Static
	Switch
	Throw
	Trait
	True
	Try
	Tuple
	Use
	Varray
	Vec
	While
	Yield
	keywordsEnd

	// Literals
	Ident
	Variable
	String
	PrefixedString
	Int
	Float
	OpenTag

	// Symbols
	symbolsStart
	Semicolon
	Comma
	Dot
	Equal
	Plus
	Minus
	Asterisk
	Slash
	Percent
	Less
	LessEqual
	Greater
	GreaterEqual
	EqualEqual
	BangEqual
	EqualEqualEqual
	BangEqualEqual
	Bang
	Question
	QuestionQuestion
	QuestionArrow
	Colon
	ColonColon
	Arrow
	DoubleArrow
	LongArrow
	Pipe
	Bar
	BarBar
	Amp
	AmpAmp
	Caret
	Tilde
	At
	Hash
	PlusPlus
	MinusMinus
	PlusEqual
	MinusEqual
	AsteriskEqual
	SlashEqual
	DotEqual
	PercentEqual
	QuestionQuestionEq
	Ellipsis
	DollarDollar
	LeftParen
	RightParen
	LeftBrack
	RightBrack
	LeftBrace
	RightBrace
	symbolsEnd

	typesEnd
)

var typeStrings = map[Type]string{
	Illegal:            "illegal",
	EOF:                "EOF",
	keywordsStart:      "keywordsStart",
	Abstract:           "abstract",
	As:                 "as",
	Async:              "async",
	Await:              "await",
	Break:              "break",
	Case:               "case",
	Catch:              "catch",
	Class:              "class",
	Clone:              "clone",
	Const:              "const",
	Continue:           "continue",
	Darray:             "darray",
	Default:            "default",
	Dict:               "dict",
	Do:                 "do",
	Echo:               "echo",
	Else:               "else",
	Elseif:             "elseif",
	Extends:            "extends",
	False:              "false",
	Final:              "final",
	Finally:            "finally",
	For:                "for",
	Foreach:            "foreach",
	Function:           "function",
	If:                 "if",
	Implements:         "implements",
	Include:            "include",
	IncludeOnce:        "include_once",
	Inout:              "inout",
	Interface:          "interface",
	Is:                 "is",
	Keyset:             "keyset",
	List:               "list",
	New:                "new",
	Null:               "null",
	Private:            "private",
	Protected:          "protected",
	Public:             "public",
	Readonly:           "readonly",
	Require:            "require",
	RequireOnce:        "require_once",
	Return:             "return",
	Shape:              "shape",
	Static:             "static",
	Switch:             "switch",
	Throw:              "throw",
	Trait:              "trait",
	True:               "true",
	Try:                "try",
	Tuple:              "tuple",
	Use:                "use",
	Varray:             "varray",
	Vec:                "vec",
	While:              "while",
	Yield:              "yield",
	keywordsEnd:        "keywordsEnd",
	Ident:              "identifier",
	Variable:           "variable",
	String:             "string",
	PrefixedString:     "prefixed string",
	Int:                "integer",
	Float:              "float",
	OpenTag:            "<?hh",
	symbolsStart:       "symbolsStart",
	Semicolon:          ";",
	Comma:              ",",
	Dot:                ".",
	Equal:              "=",
	Plus:               "+",
	Minus:              "-",
	Asterisk:           "*",
	Slash:              "/",
	Percent:            "%",
	Less:               "<",
	LessEqual:          "<=",
	Greater:            ">",
	GreaterEqual:       ">=",
	EqualEqual:         "==",
	BangEqual:          "!=",
	EqualEqualEqual:    "===",
	BangEqualEqual:     "!==",
	Bang:               "!",
	Question:           "?",
	QuestionQuestion:   "??",
	QuestionArrow:      "?->",
	Colon:              ":",
	ColonColon:         "::",
	Arrow:              "->",
	DoubleArrow:        "=>",
	LongArrow:          "==>",
	Pipe:               "|>",
	Bar:                "|",
	BarBar:             "||",
	Amp:                "&",
	AmpAmp:             "&&",
	Caret:              "^",
	Tilde:              "~",
	At:                 "@",
	Hash:               "#",
	PlusPlus:           "++",
	MinusMinus:         "--",
	PlusEqual:          "+=",
	MinusEqual:         "-=",
	AsteriskEqual:      "*=",
	SlashEqual:         "/=",
	DotEqual:           ".=",
	PercentEqual:       "%=",
	QuestionQuestionEq: "??=",
	Ellipsis:           "...",
	DollarDollar:       "$$",
	LeftParen:          "(",
	RightParen:         ")",
	LeftBrack:          "[",
	RightBrack:         "]",
	LeftBrace:          "{",
	RightBrace:         "}",
	symbolsEnd:         "symbolsEnd",
	typesEnd:           "typesEnd",
}

var keywordTypesByIdent = func() map[string]Type {
	keywordTypesByIdent := make(map[string]Type, keywordsEnd-keywordsStart)
	for i := keywordsStart + 1; i < keywordsEnd; i++ {
		keywordTypesByIdent[typeStrings[i]] = i
	}
	return keywordTypesByIdent
}()

// IdentType returns the type of the keyword with the given identifier, or Ident if the identifier is not a
// keyword.
func IdentType(ident string) Type {
	if keywordType, ok := keywordTypesByIdent[ident]; ok {
		return keywordType
	}
	return Ident
}

// IsKeyword reports whether t is a keyword type.
func (t Type) IsKeyword() bool {
	return keywordsStart < t && t < keywordsEnd
}

func (t Type) String() string {
	return typeStrings[t]
}

// Format implements fmt.Formatter. All verbs have the default behaviour, except for 'm' (message) which formats the
// type for use in an error message.
func (t Type) Format(f fmt.State, verb rune) {
	switch verb {
	case 'm':
		fmt.Fprintf(f, "'%s'", t.String())
	default:
		fmt.Fprint(f, t.String())
	}
}

// Token is a lexical token of Hack code.
type Token struct {
	StartPos Position // Position of the first character of the token
	EndPos   Position // Position of the character immediately after the token
	Type     Type
	Lexeme   string
}

// Start returns the position of the first character of the token.
func (t Token) Start() Position {
	return t.StartPos
}

// End returns the position of the character immediately after the token.
func (t Token) End() Position {
	return t.EndPos
}

// IsZero reports whether t is the zero value.
func (t Token) IsZero() bool {
	return t == Token{}
}

func (t Token) String() string {
	if t.Type == EOF {
		return fmt.Sprintf("%s: [%s]", t.StartPos, t.Type)
	}
	if t.Type.IsKeyword() || (symbolsStart < t.Type && t.Type < symbolsEnd) {
		return fmt.Sprintf("%s: %s", t.StartPos, t.Lexeme)
	}
	return fmt.Sprintf("%s: %s [%s]", t.StartPos, t.Lexeme, t.Type)
}

// Position is a position in a file.
type Position struct {
	File   *File
	Line   int // 1-based line number
	Column int // 0-based byte offset from the start of the line
	Offset int // 0-based byte offset from the start of the file
}

// Compare returns
//
//	-1 if p's file comes before other's or p and other are in the same file and p comes before other,
//	 0 if p and other are the same position in the same file,
//	+1 if p's file comes after other's or p and other are in the same file and p comes after other.
func (p Position) Compare(other Position) int {
	if c := cmp.Compare(p.File.name(), other.File.name()); c != 0 {
		return c
	}
	return cmp.Compare(p.Offset, other.Offset)
}

// IsValid reports whether p refers to a file.
func (p Position) IsValid() bool {
	return p.File != nil
}

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.displayColumn())
}

// displayColumn returns the 1-based column of p as it appears in a terminal.
func (p Position) displayColumn() int {
	line := p.File.Line(p.Line)
	return runewidth.StringWidth(string(line[:p.Column])) + 1
}

var yellow = color.New(color.FgYellow).SprintFunc()

// Format implements fmt.Formatter. All verbs have the default behaviour, except for 'm' (message) which formats the
// position for use in an error message.
func (p Position) Format(f fmt.State, verb rune) {
	switch verb {
	case 'm':
		if !p.IsValid() {
			fmt.Fprint(f, "-")
			return
		}
		fmt.Fprint(f, yellow(p.Line), ":", yellow(p.displayColumn()))
	case 's':
		fmt.Fprint(f, p.String())
	default:
		fmt.Fprintf(f, fmt.FormatString(f, verb), struct {
			File   *File
			Line   int
			Column int
			Offset int
		}(p))
	}
}

// Range describes a range of characters in the source code.
type Range interface {
	Start() Position // Start returns the position of the first character of the range.
	End() Position   // End returns the position of the character immediately after the range.
}

// File is a simple representation of a file.
type File struct {
	Name        string
	Contents    []byte
	lineOffsets []int
}

// NewFile returns a new File with the given contents.
func NewFile(name string, contents []byte) *File {
	f := &File{
		Name:     name,
		Contents: contents,
	}
	f.lineOffsets = append(f.lineOffsets, 0)
	for i := range contents {
		if contents[i] == '\n' {
			f.lineOffsets = append(f.lineOffsets, i+1)
		}
	}
	return f
}

func (f *File) name() string {
	if f == nil {
		return ""
	}
	return f.Name
}

// Line returns the nth (1-based) line of the file.
func (f *File) Line(n int) []byte {
	low := f.lineOffsets[n-1]
	high := len(f.Contents)
	if n < len(f.lineOffsets) {
		high = f.lineOffsets[n] - 1 // -1 to exclude the newline
	}
	line := f.Contents[low:high]
	return line
}

// Position returns the Position of the given byte offset into the file.
func (f *File) Position(offset int) Position {
	i := sort.Search(len(f.lineOffsets), func(i int) bool { return f.lineOffsets[i] > offset }) - 1
	return Position{
		File:   f,
		Line:   i + 1,
		Column: offset - f.lineOffsets[i],
		Offset: offset,
	}
}
