package sanctions

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/banking/sanctions-screening/internal/domain"
)

const loadActiveEntriesSQL = `
SELECT id::text,
       entity_name,
       COALESCE(aliases, '{}'::text[]),
       COALESCE(source, ''),
       COALESCE(list_name, ''),
       COALESCE(entity_type, 'individual'),
       COALESCE(to_char(date_of_birth, 'YYYY-MM-DD'), ''),
       COALESCE(nationality, ''),
       COALESCE(passport_number, ''),
       COALESCE(country, ''),
       COALESCE(to_char(designation_date, 'YYYY-MM-DD'), ''),
       COALESCE(reason, '')
FROM sanctions_list
WHERE is_active = TRUE
ORDER BY id`

// PostgresProvider loads active sanctions entries from PostgreSQL
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider creates a provider backed by a connection pool
func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// Load reads every active entry
func (p *PostgresProvider) Load(ctx context.Context) ([]domain.SanctionsEntry, error) {
	rows, err := p.pool.Query(ctx, loadActiveEntriesSQL)
	if err != nil {
		return nil, fmt.Errorf("query sanctions_list: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SanctionsEntry, error) {
		var (
			e          domain.SanctionsEntry
			entityType string
		)
		err := row.Scan(
			&e.ID, &e.Name, &e.Aliases, &e.Source, &e.ListName, &entityType,
			&e.DateOfBirth, &e.Nationality, &e.PassportNumber, &e.Country,
			&e.DesignationDate, &e.Reason,
		)
		e.EntityType = domain.EntityType(entityType)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan sanctions_list: %w", err)
	}
	return entries, nil
}
