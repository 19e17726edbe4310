package acquire

import (
	"context"
	"fmt"

	"substation/internal/language"
	"substation/internal/library"
	"substation/internal/logging"
	"substation/internal/notifications"
	"substation/internal/services"
)

// recordSuccess persists the acquired subtitle, rewrites the item's missing
// state without the satisfied wants, appends the history row, and publishes
// the notification. Bookkeeping failures are logged; the subtitle is already
// on disk and the run keeps its result.
func (o *Orchestrator) recordSuccess(ctx context.Context, item *library.Item, result Result, remaining []language.Want) {
	logger := logging.WithContext(ctx, o.logger)

	record := &library.SubtitleRecord{
		ItemID:          item.ID,
		Language:        result.Want.Code,
		HearingImpaired: result.Want.HearingImpaired,
		Forced:          result.Want.Forced,
		Provider:        result.Provider,
		FilePath:        result.Path,
	}
	if _, err := o.store.InsertSubtitle(ctx, record); err != nil {
		logger.Error("persist subtitle record failed", logging.Error(err))
	}

	missing := language.FormatMissing(remaining)
	if err := o.store.UpdateMissing(ctx, item.ID, missing); err != nil {
		logger.Error("update missing state failed", logging.Error(err))
	} else {
		item.MissingSubtitles = missing
	}

	entry := &library.HistoryEntry{
		ItemID:   item.ID,
		Action:   library.ActionDownloaded,
		Provider: result.Provider,
		Language: result.Want.Tag(),
		Message:  result.Message,
	}
	if err := o.store.AppendHistory(ctx, entry); err != nil {
		logger.Error("append history failed", logging.Error(err))
	}

	if o.notifier != nil {
		payload := notifications.Payload{
			"title":    displayTitle(item),
			"language": result.Want.Tag(),
			"provider": result.Provider,
		}
		if err := o.notifier.Publish(ctx, notifications.EventSubtitleAcquired, payload); err != nil {
			logger.Warn("acquired notification failed", logging.Error(err))
		}
	}

	logger.Info("subtitle acquired",
		logging.String(logging.FieldProvider, result.Provider),
		logging.String(logging.FieldLanguage, result.Want.Tag()),
		logging.String("subtitle_path", result.Path),
	)
}

// recordFailure writes the failed history row and publishes the error
// notification for a fatal run error.
func (o *Orchestrator) recordFailure(ctx context.Context, item *library.Item, runErr error) {
	logger := logging.WithContext(ctx, o.logger)

	entry := &library.HistoryEntry{
		ItemID:  item.ID,
		Action:  library.ActionFailed,
		Message: fmt.Sprintf("%s: %v", services.FailureStatus(runErr), runErr),
	}
	if err := o.store.AppendHistory(ctx, entry); err != nil {
		logger.Error("append history failed", logging.Error(err))
	}

	if o.notifier != nil {
		payload := notifications.Payload{
			"context": "acquire",
			"error":   runErr.Error(),
		}
		if err := o.notifier.Publish(ctx, notifications.EventError, payload); err != nil {
			logger.Warn("error notification failed", logging.Error(err))
		}
	}
}
