package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-event-finder/internal/domain/entity"
	"github.com/oksasatya/go-event-finder/internal/domain/repository"
)

const selectEvent = `
	SELECT e.id::text, e.title, e.description, e.location, e.date,
	       e.max_participants, e.current_participants, e.creator_id::text,
	       e.cover_url, e.created_at, e.updated_at,
	       ARRAY(
	           SELECT p.user_id::text FROM event_participants p
	           WHERE p.event_id = e.id
	           ORDER BY p.joined_at, p.user_id
	       ) AS participants
	FROM events e
`

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row pgx.Row) (*entity.Event, error) {
	e := &entity.Event{}
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.Date,
		&e.MaxParticipants, &e.CurrentParticipants, &e.CreatorID,
		&e.CoverURL, &e.CreatedAt, &e.UpdatedAt, &e.Participants); err != nil {
		return nil, err
	}
	if e.Participants == nil {
		e.Participants = []string{}
	}
	return e, nil
}

func (r *EventRepository) Create(ctx context.Context, e *entity.Event) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (title, description, location, date, max_participants, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, current_participants, created_at, updated_at
	`, e.Title, e.Description, e.Location, e.Date, e.MaxParticipants, e.CreatorID)

	if err := row.Scan(&e.ID, &e.CurrentParticipants, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return fmt.Errorf("insert event -> %w", err)
	}
	e.Participants = []string{}
	return nil
}

func (r *EventRepository) List(ctx context.Context, f entity.EventFilter) ([]entity.Event, error) {
	var (
		where []string
		args  []any
	)
	if f.Location != "" {
		args = append(args, f.Location)
		where = append(where, "strpos(lower(e.location), lower($"+strconv.Itoa(len(args))+")) > 0")
	}
	if f.Search != "" {
		args = append(args, f.Search)
		n := strconv.Itoa(len(args))
		where = append(where, "(strpos(lower(e.title), lower($"+n+")) > 0 OR strpos(lower(e.description), lower($"+n+")) > 0)")
	}

	q := selectEvent
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY e.date ASC, e.created_at ASC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select events -> %w", err)
	}
	defer rows.Close()

	out := make([]entity.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event -> %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	e, err := scanEvent(r.pool.QueryRow(ctx, selectEvent+" WHERE e.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select event -> %w", err)
	}
	return e, nil
}

// Update relies on the row lock taken by UPDATE, so the participant count it
// compares against can't move underneath a concurrent join.
func (r *EventRepository) Update(ctx context.Context, e *entity.Event) (*entity.Event, error) {
	if !validID(e.ID) {
		return nil, repository.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE events
		SET title = $2, description = $3, location = $4, date = $5,
		    max_participants = $6, updated_at = now()
		WHERE id = $1 AND $6 >= current_participants
	`, e.ID, e.Title, e.Description, e.Location, e.Date, e.MaxParticipants)
	if err != nil {
		return nil, fmt.Errorf("update event -> %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := r.exists(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, repository.ErrCapacityBelowParticipants
		}
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, e.ID)
}

func (r *EventRepository) SetCoverURL(ctx context.Context, id, url string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `UPDATE events SET cover_url = $2, updated_at = now() WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("update cover -> %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event -> %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddParticipant locks the event row for the whole check-and-append.
// Capacity is checked before membership.
func (r *EventRepository) AddParticipant(ctx context.Context, eventID, userID string) (*entity.Event, error) {
	if !validID(eventID) {
		return nil, repository.ErrNotFound
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin join -> %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var maxParticipants, current int
	err = tx.QueryRow(ctx, `
		SELECT max_participants, current_participants
		FROM events WHERE id = $1
		FOR UPDATE
	`, eventID).Scan(&maxParticipants, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lock event -> %w", err)
	}
	if current >= maxParticipants {
		return nil, repository.ErrCapacityReached
	}

	var joined bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM event_participants WHERE event_id = $1 AND user_id::text = $2)
	`, eventID, userID).Scan(&joined); err != nil {
		return nil, fmt.Errorf("check participant -> %w", err)
	}
	if joined {
		return nil, repository.ErrDuplicateParticipant
	}

	tag, err := tx.Exec(ctx, `
		UPDATE events
		SET current_participants = current_participants + 1, updated_at = now()
		WHERE id = $1 AND current_participants < max_participants
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("increment participants -> %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, repository.ErrCapacityReached
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)
	`, eventID, userID); err != nil {
		if isUniqueViolation(err, "") {
			return nil, repository.ErrDuplicateParticipant
		}
		return nil, fmt.Errorf("insert participant -> %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit join -> %w", err)
	}
	return r.GetByID(ctx, eventID)
}

func (r *EventRepository) exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check event -> %w", err)
	}
	return ok, nil
}

var _ repository.EventRepository = (*EventRepository)(nil)
