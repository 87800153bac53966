package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tropharbour-backend/internal/domains/booking/model"
	"tropharbour-backend/pkg/database"
)

const bookingColumns = `id, tour_id, user_id, tour_name, price, currency, session_id, paid, created_at, paid_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) BookingRepository {
	return &postgresRepository{pool: pool}
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID, &b.TourID, &b.UserID, &b.TourName, &b.Price,
		&b.Currency, &b.SessionID, &b.Paid, &b.CreatedAt, &b.PaidAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func scanBookings(rows pgx.Rows) ([]*model.Booking, error) {
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// Create inserts a pending booking
func (r *postgresRepository) Create(ctx context.Context, b *model.Booking) error {
	query := `
    INSERT INTO bookings (` + bookingColumns + `)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
  `
	_, err := r.pool.Exec(ctx, query,
		b.ID, b.TourID, b.UserID, b.TourName, b.Price,
		b.Currency, b.SessionID, b.Paid, b.CreatedAt, b.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, model.ErrBookingNotFound) {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, err
}

func (r *postgresRepository) FindBySession(ctx context.Context, sessionID string) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE session_id = $1`
	b, err := scanBooking(r.pool.QueryRow(ctx, query, sessionID))
	if err != nil && !errors.Is(err, model.ErrBookingNotFound) {
		return nil, fmt.Errorf("get booking by session: %w", err)
	}
	return b, err
}

// MarkPaid locks the row so concurrent deliveries of the same event update
// it once.
func (r *postgresRepository) MarkPaid(ctx context.Context, sessionID string, paidAt time.Time) (*model.Booking, bool, error) {
	var updated bool
	b, err := database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Booking, error) {
		b, err := scanBooking(tx.QueryRow(ctx,
			`SELECT `+bookingColumns+` FROM bookings WHERE session_id = $1 FOR UPDATE`, sessionID))
		if err != nil {
			return nil, err
		}
		if b.Paid {
			return b, nil
		}

		if _, err := tx.Exec(ctx,
			`UPDATE bookings SET paid = TRUE, paid_at = $2 WHERE id = $1`, b.ID, paidAt); err != nil {
			return nil, fmt.Errorf("mark booking paid: %w", err)
		}
		b.Paid = true
		b.PaidAt = &paidAt
		updated = true
		return b, nil
	})
	if err != nil {
		return nil, false, err
	}
	return b, updated, nil
}

// ListByUser returns a user's bookings, newest first
func (r *postgresRepository) ListByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	query := `
    SELECT ` + bookingColumns + `
    FROM bookings
    WHERE user_id = $1
    ORDER BY created_at DESC
  `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("scan user bookings: %w", err)
	}
	return bookings, nil
}

func (r *postgresRepository) List(ctx context.Context, page, limit int) (*model.Page, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	query := `
    SELECT ` + bookingColumns + `
    FROM bookings
    ORDER BY created_at DESC
    LIMIT $1 OFFSET $2
  `
	rows, err := r.pool.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("scan bookings: %w", err)
	}

	return &model.Page{Bookings: bookings, Total: total, Page: page, Limit: limit}, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookingNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteStalePending(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE paid = FALSE AND created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete stale bookings: %w", err)
	}
	return tag.RowsAffected(), nil
}
