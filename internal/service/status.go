package service

import (
	"context"
	"log"

	"github.com/podpod/api/internal/client"
	"github.com/podpod/api/internal/model"
)

// StatusReporter propagates podcast outcomes to the status store. Every report
// is best-effort: store failures are logged and swallowed so a failed status
// write never changes the outcome of the request that triggered it.
type StatusReporter struct {
	store client.StatusStore
}

// NewStatusReporter wraps a status store. A nil store turns every report into
// a logged no-op.
func NewStatusReporter(store client.StatusStore) *StatusReporter {
	return &StatusReporter{store: store}
}

// ReportCompletion records the uploaded audio URL and metadata.
func (r *StatusReporter) ReportCompletion(ctx context.Context, podcastID, audioURL string, meta model.AudioMetadata) {
	if r.store == nil {
		log.Printf("Status store not configured, skipping completion update for podcast %s", podcastID)
		return
	}
	if _, err := r.store.UpdateCompletion(ctx, podcastID, audioURL, meta.Length, meta.ContentType, meta.FileSize); err != nil {
		log.Printf("Failed to update podcast %s in Supabase: %v", podcastID, err)
		return
	}
	log.Printf("Updated podcast %s in Supabase", podcastID)
}

// ReportFailure records a failed generation with its reason.
func (r *StatusReporter) ReportFailure(ctx context.Context, podcastID, reason string) {
	if r.store == nil {
		log.Printf("Status store not configured, skipping failure update for podcast %s", podcastID)
		return
	}
	if _, err := r.store.UpdateStatus(ctx, podcastID, client.StatusFailed, reason); err != nil {
		log.Printf("Failed to update podcast %s failure status in Supabase: %v", podcastID, err)
		return
	}
	log.Printf("Updated podcast %s status to failed in Supabase", podcastID)
}
