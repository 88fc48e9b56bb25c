package media

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/PIS-2020-2021/PIS/internal/model"
)

// Service fronts a Store with the session Cache.
type Service struct {
	store Store
	cache *Cache
	log   zerolog.Logger
}

// NewService returns a Service with an empty cache.
func NewService(st Store, log zerolog.Logger) *Service {
	return &Service{store: st, cache: NewCache(), log: log.With().Str("component", "media").Logger()}
}

// Cache exposes the prefetched collections.
func (s *Service) Cache() *Cache { return s.cache }

// Upload stores a new collection and caches it.
func (s *Service) Upload(ctx context.Context, kind model.MediaKind, items []model.MediaItem) (string, error) {
	id, err := s.store.Put(ctx, kind, items)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", kind, err)
	}
	s.cache.Put(kind, id, items)
	return id, nil
}

// Copy duplicates a collection and returns the new ID.
func (s *Service) Copy(ctx context.Context, kind model.MediaKind, collectionID string) (string, error) {
	id, err := s.store.Copy(ctx, kind, collectionID)
	if err != nil {
		return "", err
	}
	if items, ok := s.cache.Get(kind, collectionID); ok {
		s.cache.Put(kind, id, items)
	}
	s.log.Debug().Str("kind", string(kind)).Str("from", collectionID).Str("to", id).Msg("collection copied")
	return id, nil
}

// Fetch loads a collection into the cache unless it is already there.
func (s *Service) Fetch(ctx context.Context, kind model.MediaKind, collectionID string) error {
	if _, ok := s.cache.Get(kind, collectionID); ok {
		return nil
	}
	items, err := s.store.Get(ctx, kind, collectionID)
	if err != nil {
		return fmt.Errorf("fetch %s %s: %w", kind, collectionID, err)
	}
	s.cache.Put(kind, collectionID, items)
	return nil
}

// Delete removes a collection from the store and the cache.
func (s *Service) Delete(ctx context.Context, kind model.MediaKind, collectionID string) error {
	s.cache.Evict(kind, collectionID)
	if err := s.store.Delete(ctx, kind, collectionID); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, collectionID, err)
	}
	return nil
}
