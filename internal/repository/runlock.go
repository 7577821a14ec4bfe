package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dompetapp/dompet/internal/database"
)

// dispatchLockKey identifies the dispatch-run advisory lock across every
// process sharing the database.
const dispatchLockKey = 7340221

// RunLock serializes dispatch runs across processes with a Postgres
// advisory lock. Advisory locks are session-scoped, so the lock holds a
// dedicated connection from TryLock until Unlock.
type RunLock struct {
	pool *pgxpool.Pool

	mu   sync.Mutex
	conn *pgxpool.Conn
}

func NewRunLock(db *database.DB) *RunLock {
	return &RunLock{pool: db.Pool}
}

func (l *RunLock) TryLock(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		return false, nil
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}

	var got bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, dispatchLockKey).Scan(&got); err != nil {
		conn.Release()
		return false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !got {
		conn.Release()
		return false, nil
	}

	l.conn = conn
	return true, nil
}

func (l *RunLock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return nil
	}

	_, err := l.conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, dispatchLockKey)
	l.conn.Release()
	l.conn = nil
	if err != nil {
		return fmt.Errorf("advisory unlock: %w", err)
	}
	return nil
}
