package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"minihotel/internal/domain"
)

const roomsKey = "rooms"

func roomKey(id int64) string { return fmt.Sprintf("room:%d", id) }

// CatalogService is the read-through cached view of the room catalog.
type CatalogService struct {
	rooms    domain.RoomCatalog
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewCatalogService wires the catalog; c may be nil to disable caching.
func NewCatalogService(r domain.RoomCatalog, c domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{rooms: r, cache: c, cacheTTL: ttl}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Room, error) {
	var out []domain.Room
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, roomsKey, &out); ok {
			return out, nil
		}
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	out = append([]domain.Room(nil), rooms...)
	s.store(ctx, roomsKey, out)
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (domain.Room, error) {
	key := roomKey(id)
	var room domain.Room
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &room); ok {
			return room, nil
		}
	}
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return domain.Room{}, fmt.Errorf("room %d: %w", id, err)
	}
	s.store(ctx, key, room)
	return room, nil
}

// Invalidate drops the cached list and the given rooms.
func (s *CatalogService) Invalidate(ctx context.Context, ids ...int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, roomsKey)
	for _, id := range ids {
		_ = s.cache.Del(ctx, roomKey(id))
	}
}

func (s *CatalogService) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog cache set failed")
	}
}
