package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"minihotel/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// valJSON stores nil slices as SQL NULL so optional overrides stay absent.
func valJSON(v []string) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Repo is the MySQL room catalog.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertRoom(ctx context.Context, room domain.Room) error {
	features, err := json.Marshal(nonNil(room.Features))
	if err != nil {
		return err
	}
	gallery, err := valJSON(room.Gallery)
	if err != nil {
		return err
	}
	amenities, err := valJSON(room.Amenities)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertRoomSQL,
		room.ID,
		room.Name,
		room.Type,
		room.Price,
		room.Image,
		string(features),
		room.Rating,
		room.Reviews,
		room.Size,
		room.Guests,
		room.Beds,
		valStr(room.Description),
		gallery,
		amenities,
	)
	return err
}

func (r *Repo) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, listRoomsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	room, err := scanRoom(r.db.QueryRowContext(ctx, getRoomSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, domain.ErrNotFound
	}
	return room, err
}

type scanner interface{ Scan(dest ...any) error }

func scanRoom(s scanner) (domain.Room, error) {
	var (
		room               domain.Room
		features           []byte
		gallery, amenities []byte
		description        sql.NullString
	)
	if err := s.Scan(
		&room.ID,
		&room.Name,
		&room.Type,
		&room.Price,
		&room.Image,
		&features,
		&room.Rating,
		&room.Reviews,
		&room.Size,
		&room.Guests,
		&room.Beds,
		&description,
		&gallery,
		&amenities,
	); err != nil {
		return domain.Room{}, err
	}

	if err := json.Unmarshal(features, &room.Features); err != nil {
		return domain.Room{}, err
	}
	if len(gallery) > 0 {
		if err := json.Unmarshal(gallery, &room.Gallery); err != nil {
			return domain.Room{}, err
		}
	}
	if len(amenities) > 0 {
		if err := json.Unmarshal(amenities, &room.Amenities); err != nil {
			return domain.Room{}, err
		}
	}
	if description.Valid {
		d := description.String
		room.Description = &d
	}
	return room, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
