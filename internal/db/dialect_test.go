package db

import (
	"path/filepath"
	"testing"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "fgate-test.db")
	conn, err := Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	if !IsSQLite(conn) {
		t.Fatalf("expected sqlite dialect, got %q", DialectName(conn))
	}
}

func TestOpen_EmptyDSN(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestDialectExpressions(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "fgate-test.db")
	conn, err := Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if expr := CaseInsensitiveLikeExpr(conn, "name"); expr != "LOWER(name) LIKE ?" {
		t.Fatalf("unexpected like expression %q", expr)
	}
	if pattern := NormalizeLikePattern(conn, "%Alice%"); pattern != "%alice%" {
		t.Fatalf("unexpected pattern %q", pattern)
	}
	if expr := MonthBucketExpr(conn, "created_at"); expr != "strftime('%Y-%m', created_at)" {
		t.Fatalf("unexpected month bucket expression %q", expr)
	}
}
