package compressor

import (
	"fmt"
	"testing"
)

func TestNewOriginalTable(t *testing.T) {
	tests := []struct {
		caption  string
		entries  []int
		colCount int
		wantErr  bool
	}{
		{
			caption:  "a well-formed table",
			entries:  []int{1, 2, 3, 4, 5, 6},
			colCount: 3,
		},
		{
			caption:  "empty entries are not allowed",
			entries:  []int{},
			colCount: 3,
			wantErr:  true,
		},
		{
			caption:  "the column count must be positive",
			entries:  []int{1, 2, 3},
			colCount: 0,
			wantErr:  true,
		},
		{
			caption:  "the entries length must be a multiple of the column count",
			entries:  []int{1, 2, 3, 4, 5},
			colCount: 3,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			orig, err := NewOriginalTable(tt.entries, tt.colCount)
			if tt.wantErr {
				if err == nil {
					t.Fatal("an error must occur")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if orig == nil {
				t.Fatal("NewOriginalTable returns nil without any error")
			}
		})
	}
}

func testCompressors(t *testing.T) []Compressor {
	t.Helper()

	return []Compressor{
		NewUniqueEntriesTable(),
		NewRowDisplacementTable(0),
	}
}

func TestCompressorsPreserveEveryEntry(t *testing.T) {
	tests := []struct {
		caption  string
		entries  []int
		colCount int
	}{
		{
			caption: "a sparse table with duplicate rows",
			entries: []int{
				0, 0, 0, 0, 0,
				0, 0, -2, 0, 0,
				3, 0, 0, 0, 1,
				0, 0, -2, 0, 0,
				0, 0, 0, 0, 0,
				3, 0, 0, 0, 1,
			},
			colCount: 5,
		},
		{
			caption: "a dense table",
			entries: []int{
				1, 2, 3,
				4, 5, 6,
				7, 8, 9,
			},
			colCount: 3,
		},
		{
			caption: "a table of only empty entries",
			entries: []int{
				0, 0, 0,
				0, 0, 0,
			},
			colCount: 3,
		},
		{
			caption:  "a single-column table",
			entries:  []int{1, 0, -1, 0},
			colCount: 1,
		},
	}
	for _, tt := range tests {
		for _, comp := range testCompressors(t) {
			t.Run(fmt.Sprintf("%T %v", comp, tt.caption), func(t *testing.T) {
				orig, err := NewOriginalTable(tt.entries, tt.colCount)
				if err != nil {
					t.Fatal(err)
				}
				if err := comp.Compress(orig); err != nil {
					t.Fatal(err)
				}

				rowCount, colCount := comp.OriginalTableSize()
				if rowCount != len(tt.entries)/tt.colCount || colCount != tt.colCount {
					t.Fatalf("table size is mismatched; want: %vx%v, got: %vx%v", len(tt.entries)/tt.colCount, tt.colCount, rowCount, colCount)
				}

				for row := 0; row < rowCount; row++ {
					for col := 0; col < colCount; col++ {
						want := tt.entries[row*colCount+col]
						got, err := comp.Lookup(row, col)
						if err != nil {
							t.Fatal(err)
						}
						if got != want {
							t.Errorf("an entry is mismatched; row: %v, col: %v, want: %v, got: %v", row, col, want, got)
						}
					}
				}
			})
		}
	}
}

func TestCompressorsRejectOutOfRangeIndexes(t *testing.T) {
	entries := []int{
		0, 1, 0,
		2, 0, 3,
	}
	for _, comp := range testCompressors(t) {
		t.Run(fmt.Sprintf("%T", comp), func(t *testing.T) {
			orig, err := NewOriginalTable(entries, 3)
			if err != nil {
				t.Fatal(err)
			}
			if err := comp.Compress(orig); err != nil {
				t.Fatal(err)
			}

			invalid := [][2]int{
				{-1, 0},
				{0, -1},
				{2, 0},
				{0, 3},
			}
			for _, pos := range invalid {
				if _, err := comp.Lookup(pos[0], pos[1]); err == nil {
					t.Errorf("an error must occur; row: %v, col: %v", pos[0], pos[1])
				}
			}
		})
	}
}

func TestUniqueEntriesTableDeduplicatesRows(t *testing.T) {
	entries := []int{
		1, 2, 3,
		4, 5, 6,
		1, 2, 3,
		1, 2, 3,
	}
	orig, err := NewOriginalTable(entries, 3)
	if err != nil {
		t.Fatal(err)
	}
	tab := NewUniqueEntriesTable()
	if err := tab.Compress(orig); err != nil {
		t.Fatal(err)
	}

	if len(tab.UniqueEntries) != 6 {
		t.Errorf("unique entries length is mismatched; want: %v, got: %v", 6, len(tab.UniqueEntries))
	}
	wantRowNums := []int{0, 1, 0, 0}
	for row, want := range wantRowNums {
		if tab.RowNums[row] != want {
			t.Errorf("row number is mismatched; row: %v, want: %v, got: %v", row, want, tab.RowNums[row])
		}
	}
}

func TestRowDisplacementTableOverlaysSparseRows(t *testing.T) {
	// Rows with disjoint non-empty columns can share one displacement slot.
	entries := []int{
		1, 0, 0, 0,
		0, 2, 0, 0,
		0, 0, 3, 0,
		0, 0, 0, 4,
	}
	orig, err := NewOriginalTable(entries, 4)
	if err != nil {
		t.Fatal(err)
	}
	tab := NewRowDisplacementTable(0)
	if err := tab.Compress(orig); err != nil {
		t.Fatal(err)
	}

	if len(tab.Entries) >= len(entries) {
		t.Errorf("the compressed table must be smaller than the original; original: %v, compressed: %v", len(entries), len(tab.Entries))
	}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			want := entries[row*4+col]
			got, err := tab.Lookup(row, col)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("an entry is mismatched; row: %v, col: %v, want: %v, got: %v", row, col, want, got)
			}
		}
	}
}
