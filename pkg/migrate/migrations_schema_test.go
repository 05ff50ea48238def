package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSquadMembersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_payments.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no payments migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS payments",
		"CREATE TABLE IF NOT EXISTS squad_members",
		"FOREIGN KEY (payment_id) REFERENCES payments(id) ON DELETE CASCADE",
		"CHECK (amount_paid_paise >= 0)",
		"CHECK (settled_paise >= 0)",
		"uq_squad_members_payment_phone",
		"DROP TABLE IF EXISTS squad_members",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEntryMigrationRejectsNonPositiveAmounts(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_payment_entries.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no payment entries migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}

	if !strings.Contains(string(data), "CHECK (amount_paise > 0)") {
		t.Errorf("payment entries must reject zero and negative amounts")
	}
}
