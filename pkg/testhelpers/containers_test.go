//go:build integration

package testhelpers

import (
	"context"
	"testing"
)

func TestTestDB_MigrationsApplied(t *testing.T) {
	testDB := GetTestDB(t)

	ctx := context.Background()

	for _, table := range []string{"installations", "feedbacks"} {
		var exists bool
		err := testDB.DB.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)",
			table).Scan(&exists)
		if err != nil {
			t.Fatalf("failed to query %s: %v", table, err)
		}
		if !exists {
			t.Errorf("expected table %s to exist", table)
		}
	}
}

func TestTestRedis_Ping(t *testing.T) {
	r := GetTestRedis(t)

	if err := r.Client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestTestDynamo_TablesCreated(t *testing.T) {
	d := GetTestDynamo(t)

	out, err := d.Client.ListTables(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tables failed: %v", err)
	}

	found := map[string]bool{}
	for _, name := range out.TableNames {
		found[name] = true
	}
	for _, table := range []string{d.Config.InstallationsTable, d.Config.FeedbacksTable} {
		if !found[table] {
			t.Errorf("expected table %s", table)
		}
	}
}
