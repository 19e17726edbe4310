package api

import (
	"context"

	"substation/internal/library"
)

// LibraryReader abstracts library persistence interactions needed for API queries.
type LibraryReader interface {
	ListWanted(ctx context.Context) ([]*library.Item, error)
	History(ctx context.Context, limit int) ([]*library.HistoryEntry, error)
	GetByID(ctx context.Context, id int64) (*library.Item, error)
}

// LibraryService exposes read-only library operations returning API DTOs.
type LibraryService struct {
	store LibraryReader
}

// NewLibraryService constructs a LibraryService around the provided reader.
func NewLibraryService(store LibraryReader) *LibraryService {
	if store == nil {
		return nil
	}
	return &LibraryService{store: store}
}

// Wanted returns the items that still miss subtitle languages.
func (s *LibraryService) Wanted(ctx context.Context) ([]LibraryItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.ListWanted(ctx)
	if err != nil {
		return nil, err
	}
	return FromItems(items), nil
}

// History returns the most recent history events, newest first.
func (s *LibraryService) History(ctx context.Context, limit int) ([]HistoryEvent, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	entries, err := s.store.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	return FromHistoryEntries(entries), nil
}

// Describe fetches a single library item.
func (s *LibraryService) Describe(ctx context.Context, id int64) (*LibraryItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	item, err := s.store.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	dto := FromItem(item)
	return &dto, nil
}
