package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

// PolicyStore persists the active policy as a small JSON file so CLI
// runs and the server agree on rates without a database round trip.
type PolicyStore struct {
	path string
	mu   sync.Mutex
}

func NewPolicyStore(path string) *PolicyStore {
	return &PolicyStore{path: path}
}

// Load reads the stored policy. The second return value reports whether
// a file was present; a missing file is not an error.
func (ps *PolicyStore) Load() (domain.Policy, bool, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	data, err := os.ReadFile(ps.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.DefaultPolicy(), false, nil
	}
	if err != nil {
		return domain.DefaultPolicy(), false, fmt.Errorf("failed to read policy file: %w", err)
	}

	var file domain.PolicyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return domain.DefaultPolicy(), false, fmt.Errorf("failed to decode policy file %s: %w", ps.path, err)
	}

	policy := file.Policy()
	if err := policy.Validate(); err != nil {
		return domain.DefaultPolicy(), false, fmt.Errorf("policy file %s holds invalid values: %w", ps.path, err)
	}

	return policy, true, nil
}

// Save validates and writes the policy, creating the parent directory
// if needed.
func (ps *PolicyStore) Save(policy domain.Policy) error {
	if err := policy.Validate(); err != nil {
		return err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if dir := filepath.Dir(ps.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create policy directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(policy.File(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode policy: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(ps.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write policy file: %w", err)
	}

	return nil
}

// Path returns the backing file location.
func (ps *PolicyStore) Path() string {
	return ps.path
}
