package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// sensitiveKeys contains attribute keys that are always masked.
// The publisher's credentials travel through configuration structs, and a
// verbose run must never echo them.
var sensitiveKeys = map[string]bool{
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"access_key":    true,
	"accesskey":     true,
	"secret_key":    true,
	"secretkey":     true,
	"authorization": true,
	"cookie":        true,
	"credential":    true,
	"credentials":   true,
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// DefaultMaxAttrLen is the default truncation length for string attributes.
// Page sources run to megabytes; a log line that quotes one is useless and
// can wedge terminal scrollback.
const DefaultMaxAttrLen = 256

// TrimHandler wraps an slog.Handler to keep log output safe and readable:
// it masks credential-bearing attributes and truncates oversized string
// values before passing records to the underlying handler.
//
// Design decision: a handler wrapper rather than a custom logger because
// it integrates with standard slog APIs and works with any underlying
// handler (text, JSON, etc.).
type TrimHandler struct {
	// handler is the underlying slog handler that receives trimmed records.
	handler slog.Handler

	// maxAttrLen is the rune cap for string attribute values.
	maxAttrLen int
}

// NewTrimHandler creates a TrimHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewTrimHandler(handler slog.Handler) *TrimHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &TrimHandler{
		handler:    handler,
		maxAttrLen: DefaultMaxAttrLen,
	}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *TrimHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle trims the record's attributes and passes it on.
func (h *TrimHandler) Handle(ctx context.Context, r slog.Record) error {
	trimmed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		trimmed.AddAttrs(h.trimAttr(a))
		return true
	})
	return h.handler.Handle(ctx, trimmed)
}

// WithAttrs returns a new handler with the given attributes added,
// trimmed first.
func (h *TrimHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	trimmedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		trimmedAttrs[i] = h.trimAttr(a)
	}
	return &TrimHandler{handler: h.handler.WithAttrs(trimmedAttrs), maxAttrLen: h.maxAttrLen}
}

// WithGroup returns a new handler with the given group name.
func (h *TrimHandler) WithGroup(name string) slog.Handler {
	return &TrimHandler{handler: h.handler.WithGroup(name), maxAttrLen: h.maxAttrLen}
}

// trimAttr masks or truncates a single attribute, recursively handling
// groups.
func (h *TrimHandler) trimAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		trimmedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			trimmedAttrs[i] = h.trimAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(trimmedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		if v := a.Value.String(); utf8.RuneCountInString(v) > h.maxAttrLen {
			runes := []rune(v)
			return slog.String(a.Key, string(runes[:h.maxAttrLen])+"...(truncated)")
		}
	}

	return a
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// The bare "key" keyword is deliberately excluded: it causes false
// positives such as "object_key" and "primary_key". Specific key-related
// names are covered by the sensitiveKeys map.
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "auth", "credential",
	}
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// NewLogger creates a slog.Logger with trimming and masking applied.
//
// Parameters:
//   - w: the io.Writer to write log output to (typically os.Stderr)
//   - verbose: if true, sets log level to Debug; otherwise Info
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewTrimHandler(textHandler))
}

// NewJSONLogger creates a trimming slog.Logger that outputs JSON format.
// Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewTrimHandler(jsonHandler))
}
