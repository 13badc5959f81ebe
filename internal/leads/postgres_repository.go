package leads

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the pool surface the repository needs. *pgxpool.Pool
// satisfies it in production; pgxmock substitutes it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresRepository mirrors accepted leads into the relational
// database so they can be queried without grepping the JSONL log.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Record inserts one accepted lead row.
func (r *PostgresRepository) Record(ctx context.Context, rec *Record) error {
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}

	query := `
		INSERT INTO leads (
			id, submitted_at, ip, user_agent,
			form_id, page, referrer, service,
			name, phone, contact_method, comment,
			consent, policy_version,
			utm_source, utm_medium, utm_campaign, utm_content, utm_term,
			gclid, yclid
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	if _, err := r.pool.Exec(ctx, query,
		id,
		rec.Date,
		rec.IP,
		rec.UA,
		rec.FormID,
		rec.Page,
		rec.Referrer,
		rec.Service,
		rec.Name,
		rec.Phone,
		rec.ContactMethod,
		rec.Comment,
		rec.Consent,
		rec.PolicyVersion,
		rec.Tracking.UTMSource,
		rec.Tracking.UTMMedium,
		rec.Tracking.UTMCampaign,
		rec.Tracking.UTMContent,
		rec.Tracking.UTMTerm,
		rec.Tracking.GCLID,
		rec.Tracking.YCLID,
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

var _ Recorder = (*PostgresRepository)(nil)
