package static

import (
	"context"

	"minihotel/internal/domain"
)

// Rooms is the storefront's built-in catalog.
var Rooms = []domain.Room{
	{
		ID:       1,
		Name:     "Cosy Standard",
		Type:     "Standard room",
		Price:    3500,
		Image:    "/img/bd367f9f-5923-4469-8775-f266a80f5447.jpg",
		Features: []string{"Wi-Fi", "Air conditioning", "TV", "Mini-bar"},
		Rating:   4.8,
		Reviews:  156,
		Size:     25,
		Guests:   2,
		Beds:     1,
	},
	{
		ID:       2,
		Name:     "Premium Suite",
		Type:     "Suite",
		Price:    8500,
		Image:    "/img/312ed3a0-425a-4550-a3e5-37c1ce1db9d9.jpg",
		Features: []string{"Wi-Fi", "Jacuzzi", "Balcony", "Safe", "Bathrobes"},
		Rating:   4.9,
		Reviews:  89,
		Size:     45,
		Guests:   4,
		Beds:     2,
	},
	{
		ID:       3,
		Name:     "Family Comfort",
		Type:     "Family room",
		Price:    5500,
		Image:    "/img/73eb5b79-edef-4dd4-8147-ff30b52c0765.jpg",
		Features: []string{"Wi-Fi", "Kitchen", "Living room", "Baby cot"},
		Rating:   4.7,
		Reviews:  234,
		Size:     35,
		Guests:   3,
		Beds:     2,
	},
}

type Catalog struct{ rooms []domain.Room }

// New returns a catalog over rooms, or over Rooms when none are given.
func New(rooms ...domain.Room) *Catalog {
	if len(rooms) == 0 {
		rooms = Rooms
	}
	return &Catalog{rooms: append([]domain.Room(nil), rooms...)}
}

func (c *Catalog) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return append([]domain.Room(nil), c.rooms...), nil
}

func (c *Catalog) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	for _, r := range c.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Room{}, domain.ErrNotFound
}
