package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMediaItemsMigrationMatchesCatalogSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_media_items.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no media_items migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS media_items",
		"id TEXT PRIMARY KEY",
		"timestamp BIGINT NOT NULL",
		"is_group BOOLEAN NOT NULL DEFAULT FALSE",
		"group_id TEXT",
		"r2_key TEXT NOT NULL",
		"DROP TABLE IF EXISTS media_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
