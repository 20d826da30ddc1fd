package msglog

import (
	"fmt"
	"reflect"
)

const (
	maxDumpDepth    = 10
	maxDumpElements = 10
)

// Dump emits the structure of v at level, one line per field, element or
// leaf value, indented by nesting depth. Exported struct fields, maps,
// slices and arrays are walked; pointer cycles are reported instead of
// followed; a pointer shared by siblings is walked each time. Nothing is
// walked when level is below the threshold.
func (l *Logger) Dump(level string, v interface{}) {
	if !l.LevelEnabled(level) {
		return
	}
	b := l.Level(level)
	if v == nil {
		b.Label("Dump:").Value("<nil>").Emit()
		return
	}
	d := &dumper{b: b, visited: make(map[uintptr]bool)}
	d.dump(v, emptyString, 0)
}

type dumper struct {
	b *MessageBuilder
	// visited holds the pointers on the current path from the root.
	visited map[uintptr]bool
}

func (d *dumper) line(depth int, label string) *MessageBuilder {
	return d.b.Tab(depth).Label(label + ":")
}

func (d *dumper) dump(v interface{}, prefix string, depth int) {
	if depth > maxDumpDepth {
		d.line(depth, prefix).Warn("<max depth reached>").Emit()
		return
	}
	if v == nil {
		d.line(depth, prefix).Value("<nil>").Emit()
		return
	}

	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Interface || val.Kind() == reflect.Ptr {
		if val.IsNil() {
			d.line(depth, prefix).Value("<nil>").Emit()
			return
		}
		if val.Kind() == reflect.Ptr {
			ptr := val.Pointer()
			if d.visited[ptr] {
				d.line(depth, prefix).Warn("<circular reference>").Emit()
				return
			}
			d.visited[ptr] = true
			defer delete(d.visited, ptr)
		}
		val = val.Elem()
	}
	typ := val.Type()

	switch val.Kind() {
	case reflect.Struct:
		if prefix == emptyString {
			d.b.Tab(depth).Label("Struct:").H3(typ.Name()).Emit()
		} else {
			d.line(depth, prefix).H3(typ.Name(), "{").Emit()
		}
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			fieldVal := val.Field(i)
			if !fieldVal.CanInterface() {
				continue
			}
			fieldPrefix := field.Name
			if prefix != emptyString {
				fieldPrefix = prefix + "." + field.Name
			}
			d.dump(fieldVal.Interface(), fieldPrefix, depth+1)
		}
		if prefix != emptyString {
			d.b.Tab(depth).Plain("}").Emit()
		}

	case reflect.Map:
		d.line(depth, prefix).
			H3(fmt.Sprintf("map[%s]%s", typ.Key(), typ.Elem())).
			Comment(fmt.Sprintf("(len: %d) {", val.Len())).
			Emit()
		iter := val.MapRange()
		for iter.Next() {
			mapPrefix := fmt.Sprintf("%s[%v]", prefix, iter.Key().Interface())
			d.dump(iter.Value().Interface(), mapPrefix, depth+1)
		}
		d.b.Tab(depth).Plain("}").Emit()

	case reflect.Slice, reflect.Array:
		d.line(depth, prefix).
			H3(typ.String()).
			Comment(fmt.Sprintf("(len: %d) {", val.Len())).
			Emit()
		for i := 0; i < val.Len() && i < maxDumpElements; i++ {
			elem := val.Index(i)
			if !elem.CanInterface() {
				continue
			}
			d.dump(elem.Interface(), fmt.Sprintf("%s[%d]", prefix, i), depth+1)
		}
		if val.Len() > maxDumpElements {
			d.b.Tab(depth+1).Comment(fmt.Sprintf("... (%d more elements)", val.Len()-maxDumpElements)).Emit()
		}
		d.b.Tab(depth).Plain("}").Emit()

	default:
		if prefix == emptyString {
			prefix = typ.String()
		}
		d.line(depth, prefix).Value(val.Interface()).Emit()
	}
}
