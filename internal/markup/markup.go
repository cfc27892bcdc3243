// Package markup parses the small inline tag language found in subtitle
// text (<i>, <b>) into a tree, and renders that tree.
//
// The grammar has four token kinds:
//
//	text   any run of characters that is not a recognised tag
//	open   <i> or <b>, attributes ignored, case-insensitive
//	close  </i> or </b>
//	eof
//
// Unclosed tags are closed at the end of input. A closing tag that matches
// no open tag is dropped.
package markup

import (
	"regexp"
	"strings"
)

type TokenKind int

const (
	TokenText TokenKind = iota
	TokenOpen
	TokenClose
	TokenEOF
)

type Token struct {
	Kind TokenKind
	Tag  string // "i" or "b" for open and close tokens
	Text string
}

type NodeKind int

const (
	NodeText NodeKind = iota
	NodeItalic
	NodeBold
)

type Node struct {
	Kind     NodeKind
	Text     string
	Children []Node
}

var tagRegex = regexp.MustCompile(`(?i)^<(/?)([a-z]+)(?:\s[^>]*)?>`)

// Tokenize splits s into tokens, always ending with TokenEOF.
func Tokenize(s string) []Token {
	var (
		tokens []Token
		text   strings.Builder
	)
	flushText := func() {
		if text.Len() > 0 {
			tokens = append(tokens, Token{Kind: TokenText, Text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		if s[i] == '<' {
			if m := tagRegex.FindStringSubmatch(s[i:]); m != nil {
				tag := strings.ToLower(m[2])
				if tag == "i" || tag == "b" {
					flushText()
					kind := TokenOpen
					if m[1] == "/" {
						kind = TokenClose
					}
					tokens = append(tokens, Token{Kind: kind, Tag: tag})
					i += len(m[0])
					continue
				}
			}
		}
		text.WriteByte(s[i])
		i++
	}
	flushText()

	return append(tokens, Token{Kind: TokenEOF})
}

type parser struct {
	tokens []Token
	pos    int
	open   []string
}

// Parse builds the node tree for s.
func Parse(s string) []Node {
	p := &parser{tokens: Tokenize(s)}
	return p.nodes()
}

func (p *parser) nodes() []Node {
	var out []Node
	for {
		tok := p.tokens[p.pos]
		switch tok.Kind {
		case TokenEOF:
			return out
		case TokenText:
			p.pos++
			out = append(out, Node{Kind: NodeText, Text: tok.Text})
		case TokenOpen:
			p.pos++
			p.open = append(p.open, tok.Tag)
			children := p.nodes()
			out = append(out, Node{Kind: kindOf(tok.Tag), Children: children})
		case TokenClose:
			depth := p.openDepth(tok.Tag)
			if depth < 0 {
				p.pos++
				continue
			}
			if depth == len(p.open)-1 {
				// closes the innermost tag
				p.pos++
			}
			// otherwise leave the token so each enclosing level unwinds
			// until the matching tag consumes it
			p.open = p.open[:len(p.open)-1]
			return out
		}
	}
}

func (p *parser) openDepth(tag string) int {
	for i := len(p.open) - 1; i >= 0; i-- {
		if p.open[i] == tag {
			return i
		}
	}
	return -1
}

func kindOf(tag string) NodeKind {
	if tag == "b" {
		return NodeBold
	}
	return NodeItalic
}
