package query_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/legal-lab/pkg/query"
)

func newTestProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "legal_cases", "c").
		Project("id", "Id").
		Project("user_id", "UserId").
		Project("file_name", "FileName").
		Project("created_at", "CreatedAt")
}

func TestProjectionMap(t *testing.T) {
	pm := newTestProjection()

	if pm.Table() != "public.legal_cases c" {
		t.Errorf("Table() = %q, want %q", pm.Table(), "public.legal_cases c")
	}
	if pm.Columns() != "c.id, c.user_id, c.file_name, c.created_at" {
		t.Errorf("Columns() = %q", pm.Columns())
	}
	if pm.Column("FileName") != "c.file_name" {
		t.Errorf("Column(FileName) = %q, want %q", pm.Column("FileName"), "c.file_name")
	}
	if pm.Column("Unknown") != "Unknown" {
		t.Errorf("Column(Unknown) = %q, want input returned", pm.Column("Unknown"))
	}
	if len(pm.ColumnList()) != 4 {
		t.Errorf("len(ColumnList()) = %d, want 4", len(pm.ColumnList()))
	}
}

func TestBuilder_BuildCount_NoConditions(t *testing.T) {
	sql, args := query.NewBuilder(newTestProjection(), "CreatedAt").BuildCount()

	if sql != "SELECT COUNT(*) FROM public.legal_cases c" {
		t.Errorf("BuildCount() sql = %q", sql)
	}
	if len(args) != 0 {
		t.Errorf("BuildCount() args = %v, want empty", args)
	}
}

func TestBuilder_BuildPage_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		pageSize   int
		wantSuffix string
	}{
		{"first page", 1, 20, "LIMIT 20 OFFSET 0"},
		{"second page", 2, 20, "LIMIT 20 OFFSET 20"},
		{"third page small", 3, 5, "LIMIT 5 OFFSET 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := query.NewBuilder(newTestProjection(), "CreatedAt").BuildPage(tt.page, tt.pageSize)
			if !strings.HasSuffix(sql, tt.wantSuffix) {
				t.Errorf("BuildPage() = %q, want suffix %q", sql, tt.wantSuffix)
			}
		})
	}
}

func TestBuilder_OrderBy(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		descending bool
		wantOrder  string
	}{
		{"ascending by file name", "FileName", false, "ORDER BY c.file_name ASC"},
		{"descending by created", "CreatedAt", true, "ORDER BY c.created_at DESC"},
		{"empty uses default", "", false, "ORDER BY c.created_at ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := query.NewBuilder(newTestProjection(), "CreatedAt").OrderBy(tt.field, tt.descending).BuildPage(1, 10)
			if !strings.Contains(sql, tt.wantOrder) {
				t.Errorf("BuildPage() missing %q, got %q", tt.wantOrder, sql)
			}
		})
	}
}

func TestBuilder_OrderByFields_SkipsUnknown(t *testing.T) {
	fields := query.ParseSortFields("-CreatedAt,DROP TABLE,FileName")
	sql, _ := query.NewBuilder(newTestProjection(), "CreatedAt").OrderByFields(fields).BuildSelect()

	if !strings.Contains(sql, "ORDER BY c.created_at DESC, c.file_name ASC") {
		t.Errorf("BuildSelect() = %q", sql)
	}
	if strings.Contains(sql, "DROP") {
		t.Errorf("BuildSelect() leaked unknown sort field: %q", sql)
	}
}

func TestBuilder_MultipleConditions(t *testing.T) {
	name := "lease"
	sql, args := query.NewBuilder(newTestProjection(), "CreatedAt").
		WhereEquals("UserId", "user-1").
		WhereContains("FileName", &name).
		WhereEquals("Id", nil).
		BuildCount()

	if !strings.Contains(sql, "c.user_id = $1 AND c.file_name ILIKE $2") {
		t.Errorf("BuildCount() = %q", sql)
	}
	if len(args) != 2 || args[0] != "user-1" || args[1] != "%lease%" {
		t.Errorf("BuildCount() args = %v", args)
	}
}

func TestBuilder_WhereSearchAndIn(t *testing.T) {
	search := "acme"
	sql, args := query.NewBuilder(newTestProjection(), "CreatedAt").
		WhereIn("Id", []any{"a", "b"}).
		WhereSearch(&search, "FileName", "UserId").
		BuildCount()

	if !strings.Contains(sql, "c.id IN ($1, $2)") {
		t.Errorf("BuildCount() missing IN clause, got %q", sql)
	}
	if !strings.Contains(sql, "(c.file_name ILIKE $3 OR c.user_id ILIKE $4)") {
		t.Errorf("BuildCount() missing search clause, got %q", sql)
	}
	if len(args) != 4 {
		t.Errorf("len(args) = %d, want 4", len(args))
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		input string
		want  []query.SortField
	}{
		{"", nil},
		{"FileName", []query.SortField{{Field: "FileName"}}},
		{"-CreatedAt, FileName", []query.SortField{{Field: "CreatedAt", Descending: true}, {Field: "FileName"}}},
		{",,", []query.SortField{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
