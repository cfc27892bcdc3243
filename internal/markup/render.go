package markup

import "strings"

// Renderer receives a depth-first walk of a node tree.
type Renderer interface {
	Text(s string)
	Enter(kind NodeKind)
	Leave(kind NodeKind)
}

func Render(nodes []Node, r Renderer) {
	for _, n := range nodes {
		if n.Kind == NodeText {
			r.Text(n.Text)
			continue
		}
		r.Enter(n.Kind)
		Render(n.Children, r)
		r.Leave(n.Kind)
	}
}

// PlainRenderer drops all styling.
type PlainRenderer struct {
	sb strings.Builder
}

func (r *PlainRenderer) Text(s string)  { r.sb.WriteString(s) }
func (r *PlainRenderer) Enter(NodeKind) {}
func (r *PlainRenderer) Leave(NodeKind) {}
func (r *PlainRenderer) String() string { return r.sb.String() }

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiItalic = "\x1b[3m"
)

// ANSIRenderer styles text with terminal escape sequences.
type ANSIRenderer struct {
	sb    strings.Builder
	stack []NodeKind
}

func (r *ANSIRenderer) Text(s string) { r.sb.WriteString(s) }

func (r *ANSIRenderer) Enter(kind NodeKind) {
	r.stack = append(r.stack, kind)
	r.sb.WriteString(ansiCode(kind))
}

// a reset clears every attribute, so the outer ones are written again
func (r *ANSIRenderer) Leave(NodeKind) {
	if len(r.stack) > 0 {
		r.stack = r.stack[:len(r.stack)-1]
	}
	r.sb.WriteString(ansiReset)
	for _, k := range r.stack {
		r.sb.WriteString(ansiCode(k))
	}
}

func (r *ANSIRenderer) String() string { return r.sb.String() }

func ansiCode(kind NodeKind) string {
	if kind == NodeBold {
		return ansiBold
	}
	return ansiItalic
}

// text with tags removed
func Plain(s string) string {
	r := &PlainRenderer{}
	Render(Parse(s), r)
	return r.String()
}

// text with tags turned into terminal styling
func ANSI(s string) string {
	r := &ANSIRenderer{}
	Render(Parse(s), r)
	return r.String()
}
