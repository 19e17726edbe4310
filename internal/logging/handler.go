package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders records as single lines:
//
//	2026-01-02T15:04:05Z INFO daemon: sweep finished items=3
//
// A top-level component attribute is hoisted out of the key=value tail and
// shown before the message. Attributes attached via With are rendered once at
// attach time and reused for every record.
type consoleHandler struct {
	out       io.Writer
	level     *slog.LevelVar
	addSource bool

	component string
	inherited []byte
	prefix    string

	mu *sync.Mutex
}

func newConsoleHandler(out io.Writer, level *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{out: out, level: level, addSource: addSource, mu: &sync.Mutex{}}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	rendered := append([]byte(nil), h.inherited...)
	for _, attr := range attrs {
		if attr.Key == FieldComponent && h.prefix == "" {
			if clone.component == "" {
				clone.component = attr.Value.Resolve().String()
			}
			continue
		}
		rendered = appendAttr(rendered, h.prefix, attr)
	}
	clone.inherited = rendered
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

var linePool = sync.Pool{New: func() any { return new([]byte) }}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	bufp := linePool.Get().(*[]byte)
	buf := (*bufp)[:0]
	defer func() {
		*bufp = buf
		linePool.Put(bufp)
	}()

	when := record.Time
	if when.IsZero() {
		when = time.Now()
	}
	buf = when.UTC().AppendFormat(buf, time.RFC3339)
	buf = append(buf, ' ')
	buf = append(buf, levelTag(record.Level)...)
	buf = append(buf, ' ')

	component := h.component
	if component == "" && h.prefix == "" {
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == FieldComponent {
				component = attr.Value.Resolve().String()
				return false
			}
			return true
		})
	}
	if component != "" {
		buf = append(buf, component...)
		buf = append(buf, ':', ' ')
	}

	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf = append(buf, msg...)
	} else {
		buf = append(buf, "(no message)"...)
	}

	if h.addSource {
		if src := record.Source(); src != nil {
			buf = append(buf, " ["...)
			buf = append(buf, filepath.Base(src.File)...)
			buf = append(buf, ':')
			buf = strconv.AppendInt(buf, int64(src.Line), 10)
			buf = append(buf, ']')
		}
	}

	buf = append(buf, h.inherited...)
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == FieldComponent && h.prefix == "" {
			return true
		}
		buf = appendAttr(buf, h.prefix, attr)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf)
	return err
}

// appendAttr writes " key=value" for the attribute, expanding groups into
// dotted keys.
func appendAttr(buf []byte, prefix string, attr slog.Attr) []byte {
	if attr.Equal(slog.Attr{}) {
		return buf
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = joinKey(prefix, attr.Key)
		}
		for _, nested := range value.Group() {
			buf = appendAttr(buf, next, nested)
		}
		return buf
	}
	key := joinKey(prefix, attr.Key)
	if key == "" {
		return buf
	}
	buf = append(buf, ' ')
	buf = append(buf, key...)
	buf = append(buf, '=')
	return appendValue(buf, value)
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendEscaped(buf, v.String())
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'f', -1, 64)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().UTC().AppendFormat(buf, time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return appendEscaped(buf, err.Error())
		}
		return appendEscaped(buf, fmt.Sprint(v.Any()))
	default:
		return appendEscaped(buf, v.String())
	}
}

// appendEscaped quotes values containing spaces, '=', or quotes so lines stay
// splittable on whitespace.
func appendEscaped(buf []byte, s string) []byte {
	if s == "" {
		return append(buf, `""`...)
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return strconv.AppendQuote(buf, s)
		}
	}
	return append(buf, s...)
}

func levelTag(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// newJSONHandler wraps slog's JSON handler with the field names downstream
// collectors expect: ts, lowercase level, msg, and file:line sources.
func newJSONHandler(out io.Writer, level *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Key = "level"
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.MessageKey:
				attr.Key = "msg"
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	})
}
