package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Cleaner purges published outbox rows past their retention window so the
// table stays bounded without losing in-flight messages.
type Cleaner struct {
	pool       *pgxpool.Pool
	table      pgx.Identifier
	opts       CleanerOptions
	tableLabel string
}

func NewCleaner(pool *pgxpool.Pool, table pgx.Identifier, opts CleanerOptions) (*Cleaner, error) {
	if pool == nil {
		return nil, invalidConfig("pool is required")
	}
	if len(table) == 0 {
		return nil, invalidConfig("table is required")
	}
	opts.setDefaults()
	if opts.Logger == nil {
		opts.Logger = logrusNop()
	}
	return &Cleaner{
		pool:       pool,
		table:      table,
		opts:       opts,
		tableLabel: TableLabel(table),
	}, nil
}

func (c *Cleaner) Run(ctx context.Context) error {
	if ctx == nil {
		return invalidConfig("ctx is required")
	}

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := c.cleanOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			c.opts.Logger.WithError(err).Warn("outbox: clean tick failed")
		}
	}
}

func (c *Cleaner) cleanOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-c.opts.Retention)
	q := fmt.Sprintf(
		`DELETE FROM %s WHERE published_at IS NOT NULL AND published_at < $1`,
		c.table.Sanitize(),
	)
	tag, err := c.pool.Exec(ctx, q, cutoff)
	if err != nil {
		return fmt.Errorf("outbox clean: %w", err)
	}
	if n := tag.RowsAffected(); n > 0 {
		c.opts.Logger.WithField("table", c.tableLabel).WithField("rows", n).Debug("outbox: purged published messages")
	}
	return nil
}
