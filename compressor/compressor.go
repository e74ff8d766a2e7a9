// Package compressor shrinks sparse two-dimensional tables. Parsing tables
// are mostly error entries, so row deduplication followed by row displacement
// cuts their size considerably while keeping O(1) lookup.
package compressor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// OriginalTable is an uncompressed table in row-major order.
type OriginalTable struct {
	entries  []int
	rowCount int
	colCount int
}

func NewOriginalTable(entries []int, colCount int) (*OriginalTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("entries must not be empty")
	}
	if colCount <= 0 {
		return nil, fmt.Errorf("colCount must be >=1")
	}
	if len(entries)%colCount != 0 {
		return nil, fmt.Errorf("entries length must be a multiple of the column count; entries length: %v, column count: %v", len(entries), colCount)
	}

	return &OriginalTable{
		entries:  entries,
		rowCount: len(entries) / colCount,
		colCount: colCount,
	}, nil
}

type Compressor interface {
	Compress(orig *OriginalTable) error
	Lookup(row, col int) (int, error)
	OriginalTableSize() (int, int)
}

var (
	_ Compressor = &UniqueEntriesTable{}
	_ Compressor = &RowDisplacementTable{}
)

// UniqueEntriesTable stores each distinct row once. States of a parsing table
// frequently share their whole action row, so this pass alone removes most of
// the duplication.
type UniqueEntriesTable struct {
	UniqueEntries    []int
	RowNums          []int
	OriginalRowCount int
	OriginalColCount int
}

func NewUniqueEntriesTable() *UniqueEntriesTable {
	return &UniqueEntriesTable{}
}

func (tab *UniqueEntriesTable) Lookup(row, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return 0, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	return tab.UniqueEntries[tab.RowNums[row]*tab.OriginalColCount+col], nil
}

func (tab *UniqueEntriesTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

func (tab *UniqueEntriesTable) Compress(orig *OriginalTable) error {
	var uniqueEntries []int
	rowNums := make([]int, orig.rowCount)
	key2RowNum := map[string]int{}
	for row := 0; row < orig.rowCount; row++ {
		start := row * orig.colCount
		key := rowKey(orig.entries[start : start+orig.colCount])
		rowNum, ok := key2RowNum[key]
		if !ok {
			rowNum = len(key2RowNum)
			key2RowNum[key] = rowNum
			uniqueEntries = append(uniqueEntries, orig.entries[start:start+orig.colCount]...)
		}
		rowNums[row] = rowNum
	}

	tab.UniqueEntries = uniqueEntries
	tab.RowNums = rowNums
	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount

	return nil
}

func rowKey(row []int) string {
	var b strings.Builder
	for _, v := range row {
		b.WriteString(strconv.Itoa(v))
		b.WriteByte(',')
	}
	return b.String()
}

const ForbiddenValue = -1

// RowDisplacementTable overlays rows into one array, sliding each row until
// its non-empty cells fall onto empty slots. Bounds records which row owns a
// slot so a lookup can tell a real entry from another row's spill.
type RowDisplacementTable struct {
	OriginalRowCount int
	OriginalColCount int
	EmptyValue       int
	Entries          []int
	Bounds           []int
	RowDisplacement  []int
}

func NewRowDisplacementTable(emptyValue int) *RowDisplacementTable {
	return &RowDisplacementTable{
		EmptyValue: emptyValue,
	}
}

func (tab *RowDisplacementTable) Lookup(row int, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return tab.EmptyValue, fmt.Errorf("indexes are out of range: [%v, %v]", row, col)
	}
	d := tab.RowDisplacement[row]
	if tab.Bounds[d+col] != row {
		return tab.EmptyValue, nil
	}
	return tab.Entries[d+col], nil
}

func (tab *RowDisplacementTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

func (tab *RowDisplacementTable) Compress(orig *OriginalTable) error {
	type rowShape struct {
		rowNum      int
		nonEmptyCol []int
	}
	shapes := make([]rowShape, orig.rowCount)
	for row := 0; row < orig.rowCount; row++ {
		shapes[row].rowNum = row
		for col := 0; col < orig.colCount; col++ {
			if orig.entries[row*orig.colCount+col] != tab.EmptyValue {
				shapes[row].nonEmptyCol = append(shapes[row].nonEmptyCol, col)
			}
		}
	}
	// Packing the densest rows first leaves the sparse rows to fill the gaps.
	sort.SliceStable(shapes, func(i, j int) bool {
		return len(shapes[i].nonEmptyCol) > len(shapes[j].nonEmptyCol)
	})

	entries := make([]int, len(orig.entries))
	bounds := make([]int, len(orig.entries))
	for i := range entries {
		entries[i] = tab.EmptyValue
		bounds[i] = ForbiddenValue
	}
	rowDisplacement := make([]int, orig.rowCount)
	bottom := orig.colCount

	nextDisplacement := 0
	for _, shape := range shapes {
		if len(shape.nonEmptyCol) == 0 {
			continue
		}

	search:
		for {
			for _, col := range shape.nonEmptyCol {
				if entries[nextDisplacement+col] != tab.EmptyValue {
					nextDisplacement++
					continue search
				}
			}
			break
		}

		rowDisplacement[shape.rowNum] = nextDisplacement
		for _, col := range shape.nonEmptyCol {
			entries[nextDisplacement+col] = orig.entries[shape.rowNum*orig.colCount+col]
			bounds[nextDisplacement+col] = shape.rowNum
		}
		bottom = nextDisplacement + orig.colCount
		nextDisplacement++
	}

	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount
	tab.Entries = entries[:bottom]
	tab.Bounds = bounds[:bottom]
	tab.RowDisplacement = rowDisplacement

	return nil
}
