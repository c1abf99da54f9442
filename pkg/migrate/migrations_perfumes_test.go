package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPerfumesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_perfumes.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no perfumes migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS perfumes",
		"scent_notes TEXT[]",
		"CHECK (stock_count >= 0)",
		"CHECK (price >= 0)",
		"DROP TABLE IF EXISTS perfumes",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestStockAdjustmentsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_stock_adjustments.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no stock adjustments migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS stock_adjustments",
		"CHECK (change_type IN ('in', 'out'))",
		"CHECK (quantity > 0)",
		"FOREIGN KEY (perfume_id) REFERENCES perfumes(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS stock_adjustments",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
