package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "minihotel/internal/adapters/redis"
	"minihotel/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var got domain.Room
	ok, err := c.Get(ctx, "room:1", &got)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := domain.Room{ID: 1, Name: "Cosy Standard", Price: 3500, Guests: 2}
	if err := c.Set(ctx, "room:1", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("minihotel:room:1") {
		t.Fatalf("expected prefixed key in redis, have %v", mr.Keys())
	}

	ok, err = c.Get(ctx, "room:1", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.ID != 1 || got.Name != "Cosy Standard" || got.Price != 3500 {
		t.Fatalf("unexpected room: %+v", got)
	}

	if err := c.Del(ctx, "room:1"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "room:1", &got); ok {
		t.Fatalf("expected miss after del")
	}
}

func TestCache_TTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "rooms", []domain.Room{{ID: 1}}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(31 * time.Second)

	var rooms []domain.Room
	if ok, _ := c.Get(ctx, "rooms", &rooms); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCache_Ping(t *testing.T) {
	c, mr := newCache(t)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	mr.Close()
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping to fail after shutdown")
	}
}
