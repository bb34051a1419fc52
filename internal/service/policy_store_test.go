package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

func TestPolicyStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "policy.json")
	store := NewPolicyStore(path)

	want := domain.Policy{
		HoldingCostRate:  0.3,
		StockoutCostRate: 0.6,
		ServiceLevel:     0.99,
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, found, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("expected stored policy to be found")
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}

	// The file carries the serialization version marker.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var file domain.PolicyFile
	if err := json.Unmarshal(data, &file); err != nil {
		t.Fatalf("stored policy is not valid JSON: %v", err)
	}
	if file.Version != domain.PolicyFileVersion {
		t.Errorf("file version = %d, want %d", file.Version, domain.PolicyFileVersion)
	}
}

func TestPolicyStore_MissingFile(t *testing.T) {
	store := NewPolicyStore(filepath.Join(t.TempDir(), "absent.json"))

	policy, found, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Error("expected found=false for missing file")
	}
	if policy != domain.DefaultPolicy() {
		t.Errorf("missing file should yield defaults, got %+v", policy)
	}
}

func TestPolicyStore_RejectsInvalidPolicy(t *testing.T) {
	store := NewPolicyStore(filepath.Join(t.TempDir(), "policy.json"))

	bad := domain.Policy{HoldingCostRate: 0.25, StockoutCostRate: 0.5, ServiceLevel: 1.5}
	if err := store.Save(bad); err == nil {
		t.Fatal("expected Save to reject out-of-range service level")
	}
}

func TestPolicyStore_InvalidFileContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	if err := os.WriteFile(path, []byte(`{"version":1,"service_level":2}`), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewPolicyStore(path)
	if _, _, err := store.Load(); err == nil {
		t.Fatal("expected Load to reject invalid stored values")
	}
}
