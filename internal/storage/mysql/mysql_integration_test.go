//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"minihotel/internal/domain"
	mysqlrepo "minihotel/internal/storage/mysql"
	"minihotel/internal/storage/static"
)

func pstr(s string) *string { return &s }

// migrationsDir honours MIGRATIONS_DIR and falls back to the repo's migrations/.
func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("migrations dir %s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=minihotel",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "minihotel")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func TestRepo_MySQL_UpsertAndQuery(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Arrange: the built-in catalog plus one room with every override set
	for _, r := range static.Rooms {
		if err := repo.UpsertRoom(ctx, r); err != nil {
			t.Fatalf("UpsertRoom %d: %v", r.ID, err)
		}
	}
	custom := domain.Room{
		ID:          42,
		Name:        "Penthouse",
		Type:        "Suite",
		Price:       25000,
		Image:       "/img/penthouse.jpg",
		Features:    []string{"Terrace"},
		Rating:      5.0,
		Reviews:     3,
		Size:        120,
		Guests:      6,
		Beds:        3,
		Description: pstr("Top floor"),
		Gallery:     []string{"/img/p1.jpg", "/img/p2.jpg"},
		Amenities:   []string{"Sauna"},
	}
	if err := repo.UpsertRoom(ctx, custom); err != nil {
		t.Fatalf("UpsertRoom custom: %v", err)
	}

	// Upsert is idempotent and updates in place
	custom.Price = 26000
	if err := repo.UpsertRoom(ctx, custom); err != nil {
		t.Fatalf("UpsertRoom again: %v", err)
	}

	// Assert
	rooms, err := repo.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if len(rooms) != len(static.Rooms)+1 {
		t.Fatalf("expected %d rooms, got %d", len(static.Rooms)+1, len(rooms))
	}
	if rooms[0].ID != 1 || rooms[0].Price != 3500 || rooms[0].Rating != 4.8 || len(rooms[0].Features) != 4 {
		t.Fatalf("unexpected first room: %+v", rooms[0])
	}
	if rooms[0].Description != nil || rooms[0].Gallery != nil || rooms[0].Amenities != nil {
		t.Fatalf("absent overrides must stay absent: %+v", rooms[0])
	}

	got, err := repo.GetRoom(ctx, 42)
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	if got.Price != 26000 || got.Description == nil || *got.Description != "Top floor" ||
		len(got.Gallery) != 2 || got.Amenities[0] != "Sauna" {
		t.Fatalf("unexpected room: %+v", got)
	}

	if _, err := repo.GetRoom(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetRoom missing: %v", err)
	}
}
