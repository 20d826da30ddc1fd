package msglog

import (
	"os"
	"strings"

	"github.com/Station-Manager/errors"
	"github.com/mattn/go-isatty"
)

// Style names a rendering transform applied to a text fragment.
type Style string

// Public styles, each backed by a MessageBuilder convenience method.
const (
	StyleText       Style = "text"
	StyleH1         Style = "h1"
	StyleH2         Style = "h2"
	StyleH3         Style = "h3"
	StyleAction     Style = "action"
	StyleLabel      Style = "label"
	StyleHighlight  Style = "highlight"
	StyleValue      Style = "value"
	StylePath       Style = "path"
	StyleDate       Style = "date"
	StyleWarn       Style = "warn"
	StyleError      Style = "error"
	StyleStrikethru Style = "strikethru"
)

// Internal styles used for line prefixes and generated fragments.
const (
	StyleTimestamp    Style = "_timestamp"
	StyleLevel        Style = "_level"
	StyleReqID        Style = "_reqId"
	StyleSID          Style = "_sid"
	StyleEmitter      Style = "_emitter"
	StyleRecordAction Style = "_action"
	StyleElapsed      Style = "_elapsed"
)

// StyleRole separates styles callers may use from those reserved for prefixes.
type StyleRole int

const (
	RoleUnknown StyleRole = iota
	RolePublic
	RoleInternal
)

// StyleRoles is the closed style vocabulary, grouped by role.
var StyleRoles = struct {
	Public   []Style
	Internal []Style
}{
	Public: []Style{
		StyleText, StyleH1, StyleH2, StyleH3, StyleAction, StyleLabel, StyleHighlight,
		StyleValue, StylePath, StyleDate, StyleWarn, StyleError, StyleStrikethru,
	},
	Internal: []Style{
		StyleTimestamp, StyleLevel, StyleReqID, StyleSID, StyleEmitter, StyleRecordAction, StyleElapsed,
	},
}

// Role reports which group of the vocabulary s belongs to.
func (s Style) Role() StyleRole {
	for _, p := range StyleRoles.Public {
		if p == s {
			return RolePublic
		}
	}
	for _, p := range StyleRoles.Internal {
		if p == s {
			return RoleInternal
		}
	}
	return RoleUnknown
}

// StyleFunc renders a text fragment.
type StyleFunc func(string) string

func identity(s string) string { return s }

// StyleTable maps style names to render functions. It is immutable once built
// and may be shared between loggers.
type StyleTable struct {
	fns      map[Style]StyleFunc
	disabled bool
}

// NewStyleTable copies fns into a new table. Nil functions are ignored.
func NewStyleTable(fns map[Style]StyleFunc) *StyleTable {
	t := &StyleTable{fns: make(map[Style]StyleFunc, len(fns))}
	for name, fn := range fns {
		if fn != nil {
			t.fns[name] = fn
		}
	}
	return t
}

// Resolve returns the render function for name, or the identity function when
// the name is absent or styling is disabled.
func (t *StyleTable) Resolve(name Style) StyleFunc {
	if t == nil || t.disabled {
		return identity
	}
	if fn, ok := t.fns[name]; ok {
		return fn
	}
	return identity
}

// Apply renders text with the named style.
func (t *StyleTable) Apply(text string, name Style) string {
	return t.Resolve(name)(text)
}

// Has reports whether name has an entry in the table.
func (t *StyleTable) Has(name Style) bool {
	if t == nil {
		return false
	}
	_, ok := t.fns[name]
	return ok
}

// Enabled reports whether the table styles anything.
func (t *StyleTable) Enabled() bool {
	return t != nil && !t.disabled
}

// Disabled returns a copy of the table that renders every fragment unchanged.
func (t *StyleTable) Disabled() *StyleTable {
	out := &StyleTable{disabled: true}
	if t != nil {
		out.fns = t.fns
	}
	return out
}

const (
	ansiPrefix = "\033["
	ansiSuffix = "m"
	ansiReset  = ansiPrefix + "0" + ansiSuffix
)

func ansi(code string) StyleFunc {
	return func(s string) string {
		var b strings.Builder
		b.Grow(len(s) + len(code) + 8)
		b.WriteString(ansiPrefix)
		b.WriteString(code)
		b.WriteString(ansiSuffix)
		b.WriteString(s)
		b.WriteString(ansiReset)
		return b.String()
	}
}

// ANSIStyles returns the terminal colour table.
func ANSIStyles() *StyleTable {
	return NewStyleTable(map[Style]StyleFunc{
		StyleText:       identity,
		StyleH1:         ansi("1;4"),
		StyleH2:         ansi("1"),
		StyleH3:         ansi("4"),
		StyleAction:     ansi("1;36"),
		StyleLabel:      ansi("36"),
		StyleHighlight:  ansi("1;35"),
		StyleValue:      ansi("32"),
		StylePath:       ansi("4;34"),
		StyleDate:       ansi("35"),
		StyleWarn:       ansi("33"),
		StyleError:      ansi("91"),
		StyleStrikethru: ansi("9"),

		StyleTimestamp:    ansi("90"),
		StyleLevel:        ansi("1"),
		StyleReqID:        ansi("90"),
		StyleSID:          ansi("90"),
		StyleEmitter:      ansi("94"),
		StyleRecordAction: ansi("36"),
		StyleElapsed:      ansi("2"),
	})
}

// PlainStyles returns a table with no entries; every fragment renders as-is.
// Used for structured and file output.
func PlainStyles() *StyleTable {
	return NewStyleTable(nil)
}

// Style table names accepted by StylesByName.
const (
	StylesANSI  = "ansi"
	StylesPlain = "plain"
	StylesAuto  = "auto"
)

// StylesByName returns the table for name. "auto" picks ANSI when out is a
// terminal and plain otherwise.
func StylesByName(name string, out *os.File) (*StyleTable, error) {
	const op errors.Op = "msglog.StylesByName"
	switch strings.ToLower(name) {
	case StylesANSI:
		return ANSIStyles(), nil
	case StylesPlain, emptyString:
		return PlainStyles(), nil
	case StylesAuto:
		if out != nil && (isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())) {
			return ANSIStyles(), nil
		}
		return PlainStyles(), nil
	default:
		return nil, errors.New(op).Msg(errMsgUnknownStyles + " (" + name + ")")
	}
}
