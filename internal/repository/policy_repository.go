// internal/repository/policy_repository.go
package repository

import (
	"context"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

type PolicyRepository interface {
	// SavePolicy stores a new policy version and returns it with the
	// assigned version number.
	SavePolicy(ctx context.Context, policy domain.Policy) (*domain.PolicyVersion, error)
	CurrentPolicy(ctx context.Context) (*domain.PolicyVersion, error)
	ListPolicyVersions(ctx context.Context, limit int) ([]domain.PolicyVersion, error)
}
