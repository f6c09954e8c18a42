package domain

import "strconv"

type Room struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Price       int64    `json:"price"` // per night, whole currency units
	Image       string   `json:"image"`
	Features    []string `json:"features"`
	Rating      float64  `json:"rating"`
	Reviews     int      `json:"reviews"`
	Size        int      `json:"size"` // m²
	Guests      int      `json:"guests"`
	Beds        int      `json:"beds"`
	Description *string  `json:"description,omitempty"`
	Gallery     []string `json:"gallery,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
}

var defaultGallery = []string{
	"/img/bd367f9f-5923-4469-8775-f266a80f5447.jpg",
	"/img/312ed3a0-425a-4550-a3e5-37c1ce1db9d9.jpg",
	"/img/73eb5b79-edef-4dd4-8147-ff30b52c0765.jpg",
}

var defaultAmenities = []string{
	"Free Wi-Fi",
	"Air conditioning",
	"TV",
	"Mini-bar",
	"Safe",
	"Hair dryer",
	"Bathrobes",
	"Slippers",
}

// RoomDetails is the extended view shown before booking.
type RoomDetails struct {
	Room
	Description string   `json:"description"`
	Gallery     []string `json:"gallery"`
	Amenities   []string `json:"amenities"`
}

// Details fills in the storefront defaults for any override the room lacks.
func (r Room) Details() RoomDetails {
	d := RoomDetails{Room: r, Gallery: r.Gallery, Amenities: r.Amenities}
	if r.Description != nil && *r.Description != "" {
		d.Description = *r.Description
	} else {
		d.Description = r.Name + " is the perfect place for a comfortable stay. The room has everything you need, " +
			"and its modern design comes with a cosy, homely atmosphere."
	}
	if len(d.Gallery) == 0 {
		d.Gallery = append([]string(nil), defaultGallery...)
	}
	if len(d.Amenities) == 0 {
		d.Amenities = append([]string(nil), defaultAmenities...)
	}
	return d
}

type GuestOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// GuestOptions is the only selectable domain for a booking's guest count.
func (r Room) GuestOptions() []GuestOption {
	out := make([]GuestOption, 0, r.Guests)
	for i := 1; i <= r.Guests; i++ {
		label := strconv.Itoa(i) + " guests"
		if i == 1 {
			label = "1 guest"
		}
		out = append(out, GuestOption{Value: i, Label: label})
	}
	return out
}

// DefaultGuests is the preselected guest count of a fresh booking form.
func (r Room) DefaultGuests() int {
	if r.Guests < 2 {
		return r.Guests
	}
	return 2
}
