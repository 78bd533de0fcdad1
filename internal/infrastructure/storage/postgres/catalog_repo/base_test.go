package catalog_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"
)

func newTestRepo() *BaseCatalogRepo[any] {
	return NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "code", "name", "version"}, func() any { return nil })
}

func TestParseOrderBy(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{name: "Empty defaults to name", orderBy: "", want: "name ASC"},
		{name: "Plain field", orderBy: "code", want: "code ASC"},
		{name: "Descending prefix", orderBy: "-code", want: "code DESC"},
		{name: "Explicit ascending prefix", orderBy: "+name", want: "name ASC"},
		{name: "Unknown field rejected", orderBy: "evil; DROP TABLE", wantErr: true},
		{name: "Bare minus rejected", orderBy: "-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.orderBy)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for orderBy %q, got %q", tt.orderBy, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOrderBy failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("orderBy mismatch\nwant: %s\ngot:  %s", tt.want, got)
			}
		})
	}
}

func TestBaseSelect_SearchFilter(t *testing.T) {
	repo := newTestRepo()

	pattern := "%acme%"
	q := repo.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "SELECT id, code, name, version FROM test_table WHERE deletion_mark = $1 AND (name ILIKE $2 OR code ILIKE $3)"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	if len(args) != 3 {
		t.Fatalf("args count mismatch, want 3, got %d", len(args))
	}
	if args[1] != pattern || args[2] != pattern {
		t.Errorf("search args mismatch: %v", args)
	}
}
