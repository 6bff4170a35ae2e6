package sqlite

import (
	"context"
	"testing"
)

func TestTablesExistAfterMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	rows, err := client.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	defer rows.Close()

	tables := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan table row: %v", err)
		}
		tables[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate table rows: %v", err)
	}

	required := []string{"user_reputation", "user_warnings", "moderation_log", "subscribers"}
	for _, name := range required {
		if _, ok := tables[name]; !ok {
			t.Fatalf("required table %q not found", name)
		}
	}
}
