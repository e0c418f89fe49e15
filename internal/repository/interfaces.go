package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of *pgxpool.Pool the repositories use.
// pgxmock.PgxPoolIface satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// StudentFilter narrows student listings. Zero fields match everything.
type StudentFilter struct {
	Semester int
	Branch   string
	// Subject keeps students whose subject list is empty or contains the code.
	Subject string
}

// SubjectFilter narrows subject listings. Zero fields match everything.
type SubjectFilter struct {
	Semester int
	Branch   string
}

// AttendanceFilter narrows attendance listings. Zero fields match everything.
type AttendanceFilter struct {
	From        time.Time
	To          time.Time
	Semester    int
	Branch      string
	SubjectCode string
	RollNo      string
}
