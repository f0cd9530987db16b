package sizing

import "testing"

func TestForNodeCount_PowerOfTwoPageSize(t *testing.T) {
	tests := []struct {
		name           string
		nodeCount      int64
		threads        int
		pagesPerThread int
	}{
		{"small graph", 1000, 4, 4},
		{"medium graph", 1_000_000, 8, 4},
		{"large graph", 1_000_000_000, 16, 4},
		{"single thread", 500_000, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ForNodeCount(tt.nodeCount, tt.threads, tt.pagesPerThread)
			if err != nil {
				t.Fatalf("ForNodeCount returned error: %v", err)
			}
			if g.PageSize&(g.PageSize-1) != 0 {
				t.Errorf("page size %d is not a power of two", g.PageSize)
			}
			if g.PageSize < MinPageSize || g.PageSize > MaxPageSize {
				t.Errorf("page size %d out of bounds [%d, %d]", g.PageSize, MinPageSize, MaxPageSize)
			}
			if g.PageCount*g.PageSize < tt.nodeCount {
				t.Errorf("capacity %d*%d does not cover node count %d", g.PageCount, g.PageSize, tt.nodeCount)
			}
		})
	}
}

func TestForNodeCount_ZeroAndNegative(t *testing.T) {
	g, err := ForNodeCount(0, 4, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.PageCount < 1 {
		t.Errorf("expected at least one page for zero nodes, got %d", g.PageCount)
	}
}

func TestForNodeCount_TooManyPages(t *testing.T) {
	// A node count that, even at MaxPageSize, needs more pages than a
	// 32-bit index can address.
	huge := int64(MaxPageSize) * int64(maxPageCount) * 2
	_, err := ForNodeCount(huge, 1, 1)
	if err == nil {
		t.Fatal("expected TooManyPagesError, got nil")
	}
	var tmp *TooManyPagesError
	if !asTooManyPages(err, &tmp) {
		t.Fatalf("expected *TooManyPagesError, got %T: %v", err, err)
	}
}

func asTooManyPages(err error, target **TooManyPagesError) bool {
	if e, ok := err.(*TooManyPagesError); ok {
		*target = e
		return true
	}
	return false
}

func TestForUnknownNodeCount(t *testing.T) {
	g := ForUnknownNodeCount(7, 4)
	if g.PageSize != MinPageSize {
		t.Errorf("expected MinPageSize when node count is unknown, got %d", g.PageSize)
	}
	if g.PageCount&(g.PageCount-1) != 0 {
		t.Errorf("page count %d is not a power of two", g.PageCount)
	}
	if g.PageCount < 28 {
		t.Errorf("expected page count to cover threads*pagesPerThread=28, got %d", g.PageCount)
	}
}

func TestGeometry_PageShiftAndMask(t *testing.T) {
	g := Geometry{PageSize: 1024}
	if shift := g.PageShift(); shift != 10 {
		t.Errorf("PageShift() = %d, want 10", shift)
	}
	if mask := g.PageMask(); mask != 1023 {
		t.Errorf("PageMask() = %d, want 1023", mask)
	}
}
