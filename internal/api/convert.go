package api

import (
	"substation/internal/language"
	"substation/internal/library"
	"substation/internal/progress"
	"substation/internal/provider"
	"substation/internal/wanted"
)

// FromItem converts a library record to its API representation.
func FromItem(item *library.Item) LibraryItem {
	if item == nil {
		return LibraryItem{}
	}

	dto := LibraryItem{
		ID:        item.ID,
		Title:     item.Title,
		Year:      item.Year,
		Kind:      string(item.Kind),
		Path:      item.Path,
		Monitored: item.Monitored,
	}
	for _, want := range language.ParseMissing(item.MissingSubtitles) {
		dto.MissingLanguages = append(dto.MissingLanguages, want.Tag())
	}
	if !item.CreatedAt.IsZero() {
		dto.CreatedAt = item.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !item.UpdatedAt.IsZero() {
		dto.UpdatedAt = item.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromItems converts a slice of library records into API DTOs.
func FromItems(items []*library.Item) []LibraryItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]LibraryItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}

// FromHistoryEntry converts a history row to its API representation.
func FromHistoryEntry(entry *library.HistoryEntry) HistoryEvent {
	if entry == nil {
		return HistoryEvent{}
	}
	dto := HistoryEvent{
		ID:       entry.ID,
		ItemID:   entry.ItemID,
		Action:   entry.Action,
		Provider: entry.Provider,
		Language: entry.Language,
		Message:  entry.Message,
	}
	if !entry.CreatedAt.IsZero() {
		dto.CreatedAt = entry.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromHistoryEntries converts history rows into API DTOs.
func FromHistoryEntries(entries []*library.HistoryEntry) []HistoryEvent {
	if len(entries) == 0 {
		return nil
	}
	out := make([]HistoryEvent, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromHistoryEntry(entry))
	}
	return out
}

// FromProviderStatuses converts registry diagnostics into API DTOs.
func FromProviderStatuses(statuses []provider.ProviderStatus) []ProviderState {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]ProviderState, 0, len(statuses))
	for _, status := range statuses {
		state := ProviderState{
			Name:      status.Name,
			Throttled: status.Throttled,
			Reason:    status.Reason,
		}
		if status.ThrottledUntil != nil {
			state.ThrottledUntil = status.ThrottledUntil.UTC().Format(dateTimeFormat)
		}
		out = append(out, state)
	}
	return out
}

// FromSweepStatus converts the wanted-sweep snapshot into its API payload.
func FromSweepStatus(status wanted.Status) SweepStatus {
	dto := SweepStatus{
		Running: status.Running,
		Sweeps:  status.Sweeps,
		Pending: status.Pending,
	}
	if status.LastSweep != nil {
		dto.LastSweep = status.LastSweep.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromProgressEvents converts live progress events into API DTOs.
func FromProgressEvents(events []progress.Event) []ActiveRun {
	if len(events) == 0 {
		return nil
	}
	out := make([]ActiveRun, 0, len(events))
	for _, event := range events {
		out = append(out, ActiveRun{
			ID:     event.ID,
			Header: event.Header,
			Name:   event.Name,
			Value:  event.Value,
			Count:  event.Count,
		})
	}
	return out
}
