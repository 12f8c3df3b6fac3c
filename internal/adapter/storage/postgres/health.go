package postgres

import (
	"context"
	"errors"
	"fmt"
)

// ErrSchemaMissing is reported when the database answers but the ledger
// tables have not been created.
var ErrSchemaMissing = errors.New("ledger schema not applied")

// HealthCheck reports whether PostgreSQL is reachable and carries the ledger schema.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := h.pool.Ping(ctx); err != nil {
		return err
	}

	var present bool
	if err := h.pool.QueryRow(ctx, `SELECT to_regclass('public.transactions') IS NOT NULL`).Scan(&present); err != nil {
		return fmt.Errorf("probing ledger schema: %w", err)
	}
	if !present {
		return ErrSchemaMissing
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
