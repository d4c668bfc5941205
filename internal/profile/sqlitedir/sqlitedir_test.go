package sqlitedir

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/neu-cs4530/team-project-6l/internal/profile"
)

func openTestDir(t *testing.T) *Directory {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "profiles.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestUpsertAndResolve(t *testing.T) {
	d := openTestDir(t)
	ctx := context.Background()

	p := profile.Profile{ID: "u1", Username: "alice", DisplayName: "Alice", Avatar: "misa"}
	if err := d.Upsert(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := d.ResolveUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != p {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, p)
	}

	if _, err := d.ResolveUsername(ctx, "nobody"); err != profile.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsert_ReplacesByID(t *testing.T) {
	d := openTestDir(t)
	ctx := context.Background()

	if err := d.Upsert(ctx, profile.Profile{ID: "u1", Username: "alice"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := d.Upsert(ctx, profile.Profile{ID: "u1", Username: "alice", DisplayName: "Alice v2", Avatar: "bob"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := d.ResolveUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.DisplayName != "Alice v2" || got.Avatar != "bob" {
		t.Fatalf("update not applied: %+v", got)
	}

	users, err := d.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("upsert by id must not duplicate rows, got %d", len(users))
	}
}

func TestUpsert_DefaultsDisplayName(t *testing.T) {
	d := openTestDir(t)
	ctx := context.Background()

	if err := d.Upsert(ctx, profile.Profile{ID: "u1", Username: "alice"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := d.ResolveUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.DisplayName != "alice" {
		t.Fatalf("display name should default to username, got %q", got.DisplayName)
	}

	if err := d.Upsert(ctx, profile.Profile{Username: "no-id"}); err == nil {
		t.Fatalf("missing id should be rejected")
	}
}

func TestList_OrderedByUsername(t *testing.T) {
	d := openTestDir(t)
	ctx := context.Background()

	for _, u := range []string{"carol", "alice", "bob"} {
		if err := d.Upsert(ctx, profile.Profile{ID: "id-" + u, Username: u}); err != nil {
			t.Fatalf("upsert %s: %v", u, err)
		}
	}

	users, err := d.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	for i, want := range []string{"alice", "bob", "carol"} {
		if users[i].Username != want {
			t.Fatalf("order mismatch at %d: got %q want %q", i, users[i].Username, want)
		}
	}
}
