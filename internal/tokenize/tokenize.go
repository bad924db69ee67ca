// Package tokenize splits raw text into a span-annotated token stream
// using a small hand-rolled DFA (spec §4.4): a run of letters is a WORD, a
// run of digits (with embedded separators) is a NUMBER, a run of
// punctuation/symbol characters is a PUNCT token, a run of whitespace is a
// SEP token (a newline always starts a new SEP token), and any character matching none of those (stray control
// codepoints, unassigned runes) falls into a catch-all OTHER run —
// emitted, not discarded, so the original text can always be
// reconstructed by concatenating token spans in order. No library in the
// reference corpus does general natural-language tokenization; this is
// plain rune classification over unicode/utf8, which the standard library
// already expresses cleanly.
package tokenize

import "github.com/xmorph/xmorph/internal/ustring"

// Kind classifies a Token.
type Kind uint8

const (
	Word Kind = iota
	Number
	Punct
	Sep
	Other
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "WORD"
	case Number:
		return "NUMBER"
	case Punct:
		return "PUNCT"
	case Sep:
		return "SEP"
	case Other:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// Token is one lexical span of the input, with byte-independent Char
// offsets into the original ustring.String so callers can map results back
// onto the source text.
type Token struct {
	Kind  Kind
	Text  ustring.String
	Start int
	End   int
}

type dfaState int

const (
	stateStart dfaState = iota
	stateWord
	stateNumber
	statePunct
	stateSep
	stateOther
)

// Tokenize splits text into Tokens. Concatenating every Token.Text in
// order reproduces text exactly.
func Tokenize(text ustring.String) []Token {
	var tokens []Token
	state := stateStart
	start := 0

	flush := func(end int) {
		if end <= start {
			return
		}
		var kind Kind
		switch state {
		case stateWord:
			kind = Word
		case stateNumber:
			kind = Number
		case statePunct:
			kind = Punct
		case stateSep:
			kind = Sep
		case stateOther:
			kind = Other
		default:
			return
		}
		tokens = append(tokens, Token{Kind: kind, Text: text.Slice(start, end), Start: start, End: end})
	}

	for i := 0; i < text.Len(); i++ {
		c := text.At(i)
		switch {
		case c.IsLetter():
			if state != stateWord {
				flush(i)
				start = i
			}
			state = stateWord
		case c.IsDigit() || (state == stateNumber && (c == '.' || c == ',') && i+1 < text.Len() && text.At(i+1).IsDigit()):
			if state != stateNumber {
				flush(i)
				start = i
			}
			state = stateNumber
		case c.IsSpace():
			if state != stateSep || c == '\n' {
				flush(i)
				start = i
			}
			state = stateSep
		case c.IsPunct():
			if state != statePunct {
				flush(i)
				start = i
			}
			state = statePunct
		default:
			if state != stateOther {
				flush(i)
				start = i
			}
			state = stateOther
		}
	}
	flush(text.Len())

	return tokens
}

// Join reassembles tokens back into their original ustring.String, for
// round-trip verification and for callers that need to re-stitch a
// sentence after per-token processing.
func Join(tokens []Token) ustring.String {
	var out ustring.String
	for _, t := range tokens {
		out = out.Concat(t.Text)
	}
	return out
}
