package core

import "testing"

func TestPaginationClean(t *testing.T) {
	tests := []struct {
		name      string
		in        Pagination
		defLimit  int
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", in: Pagination{}, defLimit: 20, wantPage: 1, wantLimit: 20},
		{name: "custom default limit", in: Pagination{}, defLimit: 10, wantPage: 1, wantLimit: 10},
		{name: "negative page", in: Pagination{Page: -3, Limit: 5}, defLimit: 20, wantPage: 1, wantLimit: 5},
		{name: "limit capped", in: Pagination{Page: 2, Limit: 1000}, defLimit: 20, wantPage: 2, wantLimit: 100},
		{name: "kept as is", in: Pagination{Page: 4, Limit: 50}, defLimit: 20, wantPage: 4, wantLimit: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Clean(tt.defLimit)
			if p.Page != tt.wantPage || p.Limit != tt.wantLimit {
				t.Errorf("Clean() = {%d %d}; want {%d %d}", p.Page, p.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestPageMeta(t *testing.T) {
	p := Pagination{Page: 2, Limit: 10}
	p.Clean(0)
	if off := p.Offset(); off != 10 {
		t.Errorf("Offset() = %d; want 10", off)
	}

	meta := NewPageMeta(p, 25)
	if meta.Pages != 3 {
		t.Errorf("Pages = %d; want 3", meta.Pages)
	}
	if !meta.HasNext() {
		t.Error("HasNext() = false; want true")
	}
	if !meta.HasPrev() {
		t.Error("HasPrev() = false; want true")
	}

	empty := NewPageMeta(Pagination{Page: 1, Limit: 10}, 0)
	if empty.Pages != 0 || empty.HasNext() || empty.HasPrev() {
		t.Errorf("empty meta = %+v; want zero pages, no next/prev", empty)
	}
}
