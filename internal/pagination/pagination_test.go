package pagination

import "testing"

func TestDefaults(t *testing.T) {
	t.Run("fills_missing_values", func(t *testing.T) {
		p := PageRequest{}
		p.Defaults()
		if p.Page != 1 || p.Limit != 10 {
			t.Errorf("expected 1/10, got %d/%d", p.Page, p.Limit)
		}
	})

	t.Run("keeps_explicit_values", func(t *testing.T) {
		p := PageRequest{Page: 3, Limit: 25}
		p.Defaults()
		if p.Page != 3 || p.Limit != 25 {
			t.Errorf("expected 3/25, got %d/%d", p.Page, p.Limit)
		}
	})
}

func TestOffset(t *testing.T) {
	cases := []struct {
		page, limit, want int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 25, 50},
	}
	for _, c := range cases {
		p := PageRequest{Page: c.page, Limit: c.limit}
		if got := p.Offset(); got != c.want {
			t.Errorf("page %d limit %d: expected offset %d, got %d", c.page, c.limit, c.want, got)
		}
	}
}

func TestNewMeta(t *testing.T) {
	t.Run("middle_page", func(t *testing.T) {
		meta := NewMeta(PageRequest{Page: 2, Limit: 10}, 25)
		if meta.TotalPages != 3 {
			t.Errorf("expected 3 total pages, got %d", meta.TotalPages)
		}
		if !meta.HasNext || !meta.HasPrev {
			t.Errorf("expected hasNext and hasPrev, got %+v", meta)
		}
	})

	t.Run("first_page", func(t *testing.T) {
		meta := NewMeta(PageRequest{Page: 1, Limit: 10}, 25)
		if meta.HasPrev {
			t.Error("expected hasPrev false on first page")
		}
		if !meta.HasNext {
			t.Error("expected hasNext true on first page")
		}
	})

	t.Run("last_page", func(t *testing.T) {
		meta := NewMeta(PageRequest{Page: 3, Limit: 10}, 25)
		if meta.HasNext {
			t.Error("expected hasNext false on last page")
		}
		if !meta.HasPrev {
			t.Error("expected hasPrev true on last page")
		}
	})

	t.Run("empty_set", func(t *testing.T) {
		meta := NewMeta(PageRequest{Page: 1, Limit: 10}, 0)
		if meta.TotalPages != 0 || meta.HasNext || meta.HasPrev {
			t.Errorf("expected empty meta, got %+v", meta)
		}
	})

	t.Run("exact_multiple", func(t *testing.T) {
		meta := NewMeta(PageRequest{Page: 2, Limit: 10}, 20)
		if meta.TotalPages != 2 {
			t.Errorf("expected 2 total pages, got %d", meta.TotalPages)
		}
		if meta.HasNext {
			t.Error("expected hasNext false on final exact page")
		}
	})
}
