// Package contacts manages the outreach pool: ingest, listing, and the
// contact fields the ranking engine scores on.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"speedrun_backend/internal/speedrun/domain"
)

// ErrNotFound is returned when a contact does not exist in the pool.
var ErrNotFound = errors.New("contact not found")

const contactColumns = `id, rep_id, name, email, phone, company_name, company_size, buyer_role,
	relationship, deal_stage, source, timezone, notes, subject, estimated_deal_value,
	engagement_score, ready_to_buy_score, company_engagement, last_touch_at, created_at, updated_at`

// Repository persists pool contacts on postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a contact into the pool.
func (r *Repository) Create(ctx context.Context, c domain.Contact) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO contacts (`+contactColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		c.ID, c.RepID, c.Name, c.Email, c.Phone, c.CompanyName, c.CompanySize, c.Role,
		c.Relationship, c.DealStage, c.Source, c.Timezone, c.Notes, c.Subject,
		c.EstimatedDealValue, c.EngagementScore, c.ReadyToBuyScore, c.CompanyEngagement,
		c.LastTouchAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// ByID loads one contact scoped to the representative.
func (r *Repository) ByID(ctx context.Context, repID, contactID uuid.UUID) (domain.Contact, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE rep_id = $1 AND id = $2`,
		repID, contactID,
	)
	c, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Contact{}, ErrNotFound
	}
	if err != nil {
		return domain.Contact{}, fmt.Errorf("query contact: %w", err)
	}
	return c, nil
}

// PoolForRep loads the representative's whole pool in creation order.
// Creation order is the ranking tie-breaker, so it must be stable.
func (r *Repository) PoolForRep(ctx context.Context, repID uuid.UUID) ([]domain.Contact, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE rep_id = $1 ORDER BY created_at ASC, id ASC`,
		repID,
	)
	if err != nil {
		return nil, fmt.Errorf("query pool: %w", err)
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool: %w", err)
	}
	return out, nil
}

// TouchContact stamps the last outreach time so freshness decay restarts.
func (r *Repository) TouchContact(ctx context.Context, repID, contactID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE contacts SET last_touch_at = $3, updated_at = $3 WHERE rep_id = $1 AND id = $2`,
		repID, contactID, at,
	)
	if err != nil {
		return fmt.Errorf("touch contact: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(&c.ID, &c.RepID, &c.Name, &c.Email, &c.Phone, &c.CompanyName,
		&c.CompanySize, &c.Role, &c.Relationship, &c.DealStage, &c.Source, &c.Timezone,
		&c.Notes, &c.Subject, &c.EstimatedDealValue, &c.EngagementScore,
		&c.ReadyToBuyScore, &c.CompanyEngagement, &c.LastTouchAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Contact{}, err
	}
	return c, nil
}
