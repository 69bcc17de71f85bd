package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phantomos-app/phantomos-backend/pkg/migrate"
)

func TestValidateMigrationsDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestInitMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS publishers",
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE TABLE IF NOT EXISTS invitations",
		"CREATE TABLE IF NOT EXISTS game_ips",
		"CREATE TABLE IF NOT EXISTS ip_assets",
		"CREATE TABLE IF NOT EXISTS connectors",
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS product_assets",
		"CREATE TABLE IF NOT EXISTS sales",
		"CREATE TABLE IF NOT EXISTS audit_logs",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_product_assets_pair",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_product_assets_primary",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_connector_external",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
