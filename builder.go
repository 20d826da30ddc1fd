package msglog

import (
	"fmt"
	"strings"
)

// messagePart is one fragment of a line. A part carries either a style name,
// an explicit render function, or neither (plain text).
type messagePart struct {
	text  string
	style Style
	fn    StyleFunc
}

func (p messagePart) render(styles *StyleTable) string {
	switch {
	case p.fn != nil:
		return p.fn(p.text)
	case p.style != emptyString:
		return styles.Resolve(p.style)(p.text)
	default:
		return p.text
	}
}

// MessageBuilder accumulates the styled fragments of a single log line.
// Every method except the emit family returns the builder itself so calls can
// be chained:
//
//	log.Info().Action("Loaded").Value(n).Text("records from").Path(file).Emit()
//
// A builder is not safe for concurrent use. Emitting resets it, so the same
// builder can be used for the next line.
type MessageBuilder struct {
	logger   *Logger
	level    string
	rank     int
	parts    []messagePart
	comments []string
	tabCols  int
	withTime bool
	data     map[string]interface{}
}

func newMessageBuilder(l *Logger, level string, rank int) *MessageBuilder {
	return &MessageBuilder{logger: l, level: level, rank: rank}
}

// Level returns the name of the level the builder emits at.
func (b *MessageBuilder) Level() string {
	return b.level
}

// Stylize appends the space-joined args as one part rendered with style.
// Without args nothing is appended.
func (b *MessageBuilder) Stylize(style Style, args ...interface{}) *MessageBuilder {
	if text, ok := joinArgs(args); ok {
		b.parts = append(b.parts, messagePart{text: text, style: style})
	}
	return b
}

// StylizeFunc is Stylize with an ad-hoc render function.
func (b *MessageBuilder) StylizeFunc(fn StyleFunc, args ...interface{}) *MessageBuilder {
	if text, ok := joinArgs(args); ok {
		b.parts = append(b.parts, messagePart{text: text, fn: fn})
	}
	return b
}

func (b *MessageBuilder) Text(args ...interface{}) *MessageBuilder {
	return b.Stylize(StyleText, args...)
}

func (b *MessageBuilder) H1(args ...interface{}) *MessageBuilder {
	return b.Stylize(StyleH1, args...)
}

func (b *MessageBuilder) H2(args ...interface{}) *MessageBuilder {
	return b.Stylize(StyleH2, args...)
}

func (b *MessageBuilder) H3(args ...interface{}) *MessageBuilder {
	return b.Stylize(StyleH3, args...)
}

func (b *MessageBuilder) Action(args ...interface{}) *MessageBuilder {
	return b.Stylize(StyleAction, args...)
}

func (b *MessageBuilder) Label(args ...interface{}) *MessageBuilder {
	return b.Stylize(StyleLabel, args...)
}

func (b *MessageBuilder) Highlight(args ...interface{}) *MessageBuilder {
	return b.Stylize(StyleHighlight, args...)
}

func (b *MessageBuilder) Value(args ...interface{}) *MessageBuilder {
	return b.Stylize(StyleValue, args...)
}

func (b *MessageBuilder) Path(args ...interface{}) *MessageBuilder {
	return b.Stylize(StylePath, args...)
}

func (b *MessageBuilder) Date(args ...interface{}) *MessageBuilder {
	return b.Stylize(StyleDate, args...)
}

func (b *MessageBuilder) Warn(args ...interface{}) *MessageBuilder {
	return b.Stylize(StyleWarn, args...)
}

func (b *MessageBuilder) Error(args ...interface{}) *MessageBuilder {
	return b.Stylize(StyleError, args...)
}

func (b *MessageBuilder) Strikethru(args ...interface{}) *MessageBuilder {
	return b.Stylize(StyleStrikethru, args...)
}

// Plain appends an unstyled part.
func (b *MessageBuilder) Plain(args ...interface{}) *MessageBuilder {
	if text, ok := joinArgs(args); ok {
		b.parts = append(b.parts, messagePart{text: text})
	}
	return b
}

// Indent appends n-1 spaces as a part, so that together with the part
// separator the following text moves n columns. n < 1 is a no-op.
func (b *MessageBuilder) Indent(n int) *MessageBuilder {
	if n >= 1 {
		b.parts = append(b.parts, messagePart{text: strings.Repeat(" ", n-1)})
	}
	return b
}

// IndentWith appends s literally as a part. An empty s is a no-op.
func (b *MessageBuilder) IndentWith(s string) *MessageBuilder {
	if s != emptyString {
		b.parts = append(b.parts, messagePart{text: s})
	}
	return b
}

// Tab sets the line prefix to n tab stops. Unlike Indent it is not a part:
// it is applied once in front of the rendered line and survives Clear and
// Emit. n < 1 removes the prefix.
func (b *MessageBuilder) Tab(n int) *MessageBuilder {
	if n < 1 {
		b.tabCols = 0
		return b
	}
	b.tabCols = n * b.tabSize()
	return b
}

func (b *MessageBuilder) tabSize() int {
	if b.logger != nil && b.logger.tabSize > 0 {
		return b.logger.tabSize
	}
	return DefaultTabSize
}

// Comment appends unstyled text rendered after all parts.
func (b *MessageBuilder) Comment(args ...interface{}) *MessageBuilder {
	if text, ok := joinArgs(args); ok {
		b.comments = append(b.comments, text)
	}
	return b
}

// Data attaches a structured field to the record of the next emitted line.
func (b *MessageBuilder) Data(key string, val interface{}) *MessageBuilder {
	if b.data == nil {
		b.data = make(map[string]interface{})
	}
	b.data[key] = val
	return b
}

// Err appends err's message styled as an error and attaches its cause chain
// to the record data. A nil err is a no-op.
func (b *MessageBuilder) Err(err error) *MessageBuilder {
	if err == nil {
		return b
	}
	b.Error(err.Error())
	chain, ops, root, rootOp := buildErrorChain(err)
	if len(chain) > 0 {
		b.Data("error_chain", chain)
		b.Data("error_root", root)
		b.Data("error_history", joinChain(chain))
		b.Data("error_ops", ops)
		if rootOp != emptyString {
			b.Data("error_root_op", rootOp)
		}
	}
	return b
}

// Clear drops the accumulated parts. Comments, the tab prefix and the bound
// logger are kept.
func (b *MessageBuilder) Clear() *MessageBuilder {
	b.parts = b.parts[:0]
	return b
}

// PartsAsString returns the literal text of the current parts, unstyled and
// space-joined. It has no side effects.
func (b *MessageBuilder) PartsAsString() string {
	texts := make([]string, len(b.parts))
	for i, p := range b.parts {
		texts[i] = p.text
	}
	return strings.Join(texts, " ")
}

// Emit appends args as a final plain part, renders the line and hands it to
// the logger's sink if the level meets the logger's threshold. The builder is
// reset afterwards. A suppressed line renders nothing and returns "".
func (b *MessageBuilder) Emit(args ...interface{}) string {
	b.Plain(args...)
	defer b.reset()

	if b.logger == nil || !b.logger.Enabled(b.rank) {
		return emptyString
	}
	if b.withTime {
		total, interval := b.logger.timer.Elapsed()
		b.parts = append(b.parts, messagePart{text: formatElapsed(total, interval), style: StyleElapsed})
	}

	rendered := b.line(b.logger.styles, true)
	if rendered == emptyString {
		return emptyString
	}
	b.logger.dispatch(b, b.line(nil, false), rendered)
	return rendered
}

// EmitWithTime is Emit with the logger timer's elapsed time appended.
func (b *MessageBuilder) EmitWithTime(args ...interface{}) string {
	b.withTime = true
	return b.Emit(args...)
}

// Ewt is shorthand for EmitWithTime.
func (b *MessageBuilder) Ewt(args ...interface{}) string {
	return b.EmitWithTime(args...)
}

func (b *MessageBuilder) reset() {
	b.Clear()
	b.comments = b.comments[:0]
	b.withTime = false
	b.data = nil
}

// formatParts renders every part in insertion order and joins them with a
// single space.
func (b *MessageBuilder) formatParts(styles *StyleTable, styled bool) string {
	out := make([]string, len(b.parts))
	for i, p := range b.parts {
		if styled {
			out[i] = p.render(styles)
		} else {
			out[i] = p.text
		}
	}
	return strings.Join(out, " ")
}

// line is the tab prefix, the formatted parts and the comments.
func (b *MessageBuilder) line(styles *StyleTable, styled bool) string {
	if len(b.parts) == 0 && len(b.comments) == 0 {
		return emptyString
	}
	segments := make([]string, 0, 2)
	if len(b.parts) > 0 {
		segments = append(segments, b.formatParts(styles, styled))
	}
	if len(b.comments) > 0 {
		segments = append(segments, strings.Join(b.comments, " "))
	}
	return strings.Repeat(" ", b.tabCols) + strings.Join(segments, " ")
}

// joinArgs formats args and joins them with a single space. ok is false when
// there is nothing to join.
func joinArgs(args []interface{}) (text string, ok bool) {
	switch len(args) {
	case 0:
		return emptyString, false
	case 1:
		if s, isStr := args[0].(string); isStr {
			return s, true
		}
		return fmt.Sprint(args[0]), true
	}
	texts := make([]string, len(args))
	for i, a := range args {
		if s, isStr := a.(string); isStr {
			texts[i] = s
			continue
		}
		texts[i] = fmt.Sprint(a)
	}
	return strings.Join(texts, " "), true
}
