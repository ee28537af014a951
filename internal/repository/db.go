package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repositories need.
type DB interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	querier
}

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrSerializationFailure marks a transaction aborted by Postgres to preserve
// serializability (40001) or broken out of a deadlock (40P01). The whole unit of
// work may be retried.
var ErrSerializationFailure = errors.New("serialization failure")

const (
	constraintActiveSeat    = "tickets_active_seat_uniq"
	constraintPNR           = "bookings_pnr_uniq"
	constraintTransactionID = "payments_transaction_id_uniq"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// translateError maps Postgres errors that carry domain meaning.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		switch pgErr.ConstraintName {
		case constraintActiveSeat:
			return &domain.SeatConflictError{Seat: seatFromDetail(pgErr.Detail)}
		case constraintPNR, constraintTransactionID:
			return fmt.Errorf("%w: %s", domain.ErrReferenceCollision, pgErr.ConstraintName)
		}
	case "40001", "40P01":
		return fmt.Errorf("%w: %s", ErrSerializationFailure, pgErr.Message)
	}
	return err
}

// seatFromDetail extracts the seat from "Key (flight_id, seat_no)=(1, A1) already exists."
func seatFromDetail(detail string) string {
	i := strings.Index(detail, ")=(")
	if i < 0 {
		return ""
	}
	rest := detail[i+3:]
	j := strings.Index(rest, ")")
	if j < 0 {
		return ""
	}
	values := strings.Split(rest[:j], ", ")
	return values[len(values)-1]
}
