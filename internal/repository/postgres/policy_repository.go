// internal/repository/postgres/policy_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

type policyRepository struct {
	db *DB
}

func NewPolicyRepository(db *DB) *policyRepository {
	return &policyRepository{db: db}
}

type policyRow struct {
	Version          int       `db:"version"`
	HoldingCostRate  float64   `db:"holding_cost_rate"`
	StockoutCostRate float64   `db:"stockout_cost_rate"`
	ServiceLevel     float64   `db:"service_level"`
	CreatedAt        time.Time `db:"created_at"`
}

func (row policyRow) toVersion() domain.PolicyVersion {
	return domain.PolicyVersion{
		Version: row.Version,
		Policy: domain.Policy{
			HoldingCostRate:  row.HoldingCostRate,
			StockoutCostRate: row.StockoutCostRate,
			ServiceLevel:     row.ServiceLevel,
		},
		CreatedAt: row.CreatedAt,
	}
}

func (r *policyRepository) SavePolicy(ctx context.Context, policy domain.Policy) (*domain.PolicyVersion, error) {
	query := `
		INSERT INTO policy_versions (holding_cost_rate, stockout_cost_rate, service_level, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING version, created_at
	`

	saved := domain.PolicyVersion{Policy: policy}
	err := r.db.QueryRowContext(
		ctx,
		query,
		policy.HoldingCostRate,
		policy.StockoutCostRate,
		policy.ServiceLevel,
	).Scan(&saved.Version, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save policy: %w", err)
	}

	log.Debug().Int("version", saved.Version).Msg("policy: new version saved")
	return &saved, nil
}

// CurrentPolicy returns the highest stored version, or nil when no
// policy has ever been saved.
func (r *policyRepository) CurrentPolicy(ctx context.Context) (*domain.PolicyVersion, error) {
	query := `
		SELECT version, holding_cost_rate, stockout_cost_rate, service_level, created_at
		FROM policy_versions
		ORDER BY version DESC
		LIMIT 1
	`

	var row policyRow
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch current policy: %w", err)
	}

	current := row.toVersion()
	return &current, nil
}

func (r *policyRepository) ListPolicyVersions(ctx context.Context, limit int) ([]domain.PolicyVersion, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT version, holding_cost_rate, stockout_cost_rate, service_level, created_at
		FROM policy_versions
		ORDER BY version DESC
		LIMIT $1
	`

	var rows []policyRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list policy versions: %w", err)
	}

	versions := make([]domain.PolicyVersion, 0, len(rows))
	for _, row := range rows {
		versions = append(versions, row.toVersion())
	}

	return versions, nil
}
