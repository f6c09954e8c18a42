package domain

import "context"

// RoomCatalog is the read side of the room catalog.
type RoomCatalog interface {
	ListRooms(ctx context.Context) ([]Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
}

// RoomWriter persists catalog entries.
type RoomWriter interface {
	UpsertRoom(ctx context.Context, room Room) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// SearchFilters are the catalog search inputs. Searching is not wired to
// the catalog yet; the filters are only kept on the session.
type SearchFilters struct {
	Location string `json:"location"`
	CheckIn  *Date  `json:"check_in,omitempty"`
	CheckOut *Date  `json:"check_out,omitempty"`
	Guests   int    `json:"guests"`
}
