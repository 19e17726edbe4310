package logging

import (
	"context"
	"log/slog"

	"substation/internal/services"
)

const (
	// FieldComponent names the subsystem emitting a line; the console handler
	// hoists it in front of the message.
	FieldComponent = "component"
	// FieldItemID carries the library item identifier.
	FieldItemID = "item_id"
	// FieldRunID carries the acquisition run identifier.
	FieldRunID = "run_id"
	// FieldProvider carries the subtitle provider name.
	FieldProvider = "provider"
	// FieldLanguage carries the subtitle language tag.
	FieldLanguage = "language"
	// FieldAlert flags lines that should stand out when scanning logs.
	FieldAlert = "alert"
)

// WithContext returns logger augmented with the item, run, provider, and
// language fields the context carries. A nil logger yields a no-op one.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(argsFromAttrs(fields)...)
}

func contextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.ItemIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldItemID, id))
	}
	if rid, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, rid))
	}
	if name, ok := services.ProviderFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldProvider, name))
	}
	if tag, ok := services.LanguageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldLanguage, tag))
	}
	return fields
}
