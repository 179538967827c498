package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mvigneshwaran/health-assistant/internal/apperrors"
	"github.com/mvigneshwaran/health-assistant/internal/domain"
	"github.com/mvigneshwaran/health-assistant/internal/logger"
	"github.com/mvigneshwaran/health-assistant/internal/storage"
)

// HistoryService owns the append-only collection of completed analyses.
// The in-memory collection is authoritative for the session; every append
// rewrites the persisted blob wholesale, best effort.
type HistoryService struct {
	mu      sync.RWMutex
	store   storage.BlobStore
	records []domain.HistoryRecord
}

// NewHistoryService loads the persisted collection once at startup. Load
// failures leave the service running with empty history.
func NewHistoryService(ctx context.Context, store storage.BlobStore) *HistoryService {
	h := &HistoryService{store: store, records: []domain.HistoryRecord{}}

	data, err := store.Load(ctx)
	if err != nil {
		logger.Warn("Failed to load history, starting empty", "error", err)
		return h
	}
	if len(data) == 0 {
		return h
	}
	var records []domain.HistoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("Persisted history is unreadable, starting empty", "error", err)
		return h
	}
	h.records = records
	logger.Infof("Loaded %d history records", len(records))
	return h
}

// Append creates exactly one record for a completed analysis and persists
// the updated collection. The record is always returned; a non-nil error
// only reports a persistence failure that the caller may log and ignore.
func (h *HistoryService) Append(ctx context.Context, profile domain.PatientProfile, result domain.AnalysisResult) (*domain.HistoryRecord, error) {
	rec := domain.HistoryRecord{
		ID:       uuid.NewString(),
		Date:     time.Now().UTC(),
		UserInfo: profile,
		Result:   result,
	}

	h.mu.Lock()
	h.records = append(h.records, rec)
	data, err := json.Marshal(h.records)
	h.mu.Unlock()
	if err != nil {
		return &rec, apperrors.NewPersistenceError(err)
	}

	if err := h.store.Save(ctx, data); err != nil {
		perr := apperrors.NewPersistenceError(err)
		logger.Error("History write failed, in-memory records remain authoritative", perr.LogFields()...)
		return &rec, perr
	}
	return &rec, nil
}

// All returns the records in insertion order.
func (h *HistoryService) All() []domain.HistoryRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.HistoryRecord, len(h.records))
	copy(out, h.records)
	return out
}

// AllByDateDesc returns the records newest first. The sort is stable, so
// records sharing a timestamp keep their insertion order.
func (h *HistoryService) AllByDateDesc() []domain.HistoryRecord {
	out := h.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// FindByID resolves one record by its id.
func (h *HistoryService) FindByID(id string) (*domain.HistoryRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for i := range h.records {
		if h.records[i].ID == id {
			rec := h.records[i]
			return &rec, true
		}
	}
	return nil, false
}
