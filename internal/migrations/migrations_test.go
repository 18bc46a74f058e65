package migrations

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

func TestMigrationsAreVersionedInOrder(t *testing.T) {
	entries, err := embedMigrations.ReadDir(".")
	if err != nil {
		t.Fatalf("Failed to read embedded migrations: %v", err)
	}

	want := []string{"00001_init.sql", "00002_user_roles.sql"}
	if len(entries) != len(want) {
		t.Fatalf("embedded migrations = %d, want %d", len(entries), len(want))
	}
	for i, entry := range entries {
		if entry.Name() != want[i] {
			t.Errorf("migration %d = %s, want %s", i, entry.Name(), want[i])
		}
	}
}

func TestMigrationContents(t *testing.T) {
	tests := []struct {
		file string
		want []string
	}{
		{
			file: "00001_init.sql",
			want: []string{
				"CREATE SEQUENCE IF NOT EXISTS invoice_req_no_seq",
				"req_no       VARCHAR(32) NOT NULL UNIQUE",
				"order_no   VARCHAR(64) NOT NULL UNIQUE REFERENCES orders(order_no)",
			},
		},
		{
			file: "00002_user_roles.sql",
			want: []string{
				"ALTER TABLE users ADD COLUMN email",
				"CHECK (role IN ('staff', 'provider'))",
				"DROP COLUMN IF EXISTS role",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			data, err := embedMigrations.ReadFile(tt.file)
			if err != nil {
				t.Fatalf("read %s: %v", tt.file, err)
			}
			content := string(data)
			for _, section := range []string{"-- +goose Up", "-- +goose Down"} {
				if !strings.Contains(content, section) {
					t.Errorf("%s has no %q section", tt.file, section)
				}
			}
			for _, w := range tt.want {
				if !strings.Contains(content, w) {
					t.Errorf("%s does not contain %q", tt.file, w)
				}
			}
		})
	}
}

func TestUnreachableDatabase(t *testing.T) {
	db, err := sql.Open("pgx", "postgres://nobody@127.0.0.1:1/none?connect_timeout=1")
	if err != nil {
		t.Skipf("Cannot create test DB handle: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := Run(ctx, db, zap.NewNop()); err == nil {
		t.Error("Run() on unreachable database returned nil error")
	}
	if _, err := Version(ctx, db); err == nil {
		t.Error("Version() on unreachable database returned nil error")
	}
}
