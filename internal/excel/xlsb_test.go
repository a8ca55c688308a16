package excel

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// biffWriter 按 BIFF12 记录格式写出测试用的二进制部件
type biffWriter struct {
	buf bytes.Buffer
}

func (b *biffWriter) record(typ int, payload []byte) {
	if typ < 0x80 {
		b.buf.WriteByte(byte(typ))
	} else {
		b.buf.WriteByte(byte(typ&0x7F) | 0x80)
		b.buf.WriteByte(byte(typ >> 7))
	}
	size := len(payload)
	for {
		c := byte(size & 0x7F)
		size >>= 7
		if size > 0 {
			b.buf.WriteByte(c | 0x80)
			continue
		}
		b.buf.WriteByte(c)
		break
	}
	b.buf.Write(payload)
}

func wideString(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := binary.LittleEndian.AppendUint32(nil, uint32(len(units)))
	for _, u := range units {
		out = binary.LittleEndian.AppendUint16(out, u)
	}
	return out
}

func u32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }

func cellHeader(col int) []byte {
	return append(u32(uint32(col)), 0, 0, 0, 0)
}

func (b *biffWriter) row(r int) {
	b.record(brtRowHdr, append(u32(uint32(r)), make([]byte, 9)...))
}

func (b *biffWriter) cell(typ, col int, value []byte) {
	b.record(typ, append(cellHeader(col), value...))
}

type xlsbSheet struct {
	name string
	body []byte
}

func writeXLSB(t *testing.T, path string, shared []string, sheets ...xlsbSheet) {
	t.Helper()

	var book biffWriter
	book.record(131, nil) // BrtBeginBook
	rels := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`
	parts := map[string][]byte{}
	for i, s := range sheets {
		relID := "rId" + string(rune('1'+i))
		target := "worksheets/sheet" + string(rune('1'+i)) + ".bin"
		payload := append(u32(0), u32(uint32(i+1))...)
		payload = append(payload, wideString(relID)...)
		payload = append(payload, wideString(s.name)...)
		book.record(brtBundleSh, payload)
		rels += `<Relationship Id="` + relID + `" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="` + target + `"/>`
		parts["xl/"+target] = s.body
	}
	book.record(132, nil) // BrtEndBook
	rels += `<Relationship Id="rIdSST" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings" Target="sharedStrings.bin"/>`
	rels += `</Relationships>`

	var sst biffWriter
	for _, s := range shared {
		sst.record(brtSSTItem, append([]byte{0}, wideString(s)...))
	}

	parts[xlsbWorkbookPart] = book.buf.Bytes()
	parts[xlsbRelsPart] = []byte(rels)
	parts[xlsbSSTPart] = sst.buf.Bytes()

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for name, data := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0644))
}

func TestOpen_XLSB(t *testing.T) {
	t.Parallel()

	var pivot biffWriter
	pivot.row(0)
	pivot.cell(brtCellIsst, 0, u32(0))
	pivot.cell(brtCellIsst, 1, u32(1))
	pivot.cell(brtCellSt, 2, wideString("Sum of Dollars"))
	pivot.row(1)
	pivot.cell(brtCellIsst, 0, u32(2))
	pivot.cell(brtCellRk, 1, u32(10<<2|0x02))
	pivot.cell(brtCellReal, 2, binary.LittleEndian.AppendUint64(nil, math.Float64bits(1200.25)))
	// 第 3 行缺失，第 4 行稀疏
	pivot.row(3)
	pivot.cell(brtCellSt, 0, wideString("Café Nord"))
	pivot.cell(brtCellBlank, 1, nil)
	pivot.cell(brtCellRk, 2, u32(1050<<2|0x03))
	pivot.row(4)
	pivot.cell(brtCellError, 0, []byte{0x2A})
	pivot.cell(brtFmlaBool, 1, []byte{1})
	pivot.cell(brtFmlaNum, 2, binary.LittleEndian.AppendUint64(nil, math.Float64bits(-3)))

	var notes biffWriter
	notes.row(0)
	notes.cell(brtCellSt, 0, wideString("read me"))

	path := filepath.Join(t.TempDir(), "SPINS ending 01-26-25.xlsb")
	writeXLSB(t, path, []string{"Row Labels", "Sum of Units", "KROGER"},
		xlsbSheet{name: "Notes", body: notes.buf.Bytes()},
		xlsbSheet{name: "Ret_Brand_Pivot", body: pivot.buf.Bytes()},
	)

	wb, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })

	assert.Equal(t, []string{"Notes", "Ret_Brand_Pivot"}, wb.SheetNames())

	grid, err := wb.Grid("Ret_Brand_Pivot")
	require.NoError(t, err)
	require.Equal(t, 5, grid.Rows())
	assert.Equal(t, []string{"Row Labels", "Sum of Units", "Sum of Dollars"}, grid[0])
	assert.Equal(t, []string{"KROGER", "10", "1200.25"}, grid[1])
	assert.Empty(t, grid[2])
	assert.Equal(t, "Café Nord", grid.Cell(3, 0))
	assert.Equal(t, "", grid.Cell(3, 1))
	assert.Equal(t, "10.5", grid.Cell(3, 2))
	assert.Equal(t, []string{"#N/A", "TRUE", "-3"}, grid[4])

	notesGrid, err := wb.Grid("Notes")
	require.NoError(t, err)
	assert.Equal(t, "read me", notesGrid.Cell(0, 0))

	_, err = wb.Grid("Missing")
	assert.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestOpen_XLSBCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	notZip := filepath.Join(dir, "garbage.xlsb")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip"), 0644))
	_, err := Open(notZip)
	assert.True(t, errors.Is(err, ErrFileUnreadable))

	// 共享字符串下标越界只影响该工作表
	var sheet biffWriter
	sheet.row(0)
	sheet.cell(brtCellIsst, 0, u32(7))
	path := filepath.Join(dir, "bad-sst.xlsb")
	writeXLSB(t, path, nil, xlsbSheet{name: "Data", body: sheet.buf.Bytes()})

	wb, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	_, err = wb.Grid("Data")
	assert.Error(t, err)
	assert.Empty(t, Sheets(wb))

	// 截断的记录
	var truncated biffWriter
	truncated.row(0)
	truncated.buf.Write([]byte{brtCellReal, 16, 0, 0})
	path = filepath.Join(dir, "truncated.xlsb")
	writeXLSB(t, path, nil, xlsbSheet{name: "Data", body: truncated.buf.Bytes()})

	wb2, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb2.Close() })
	_, err = wb2.Grid("Data")
	assert.ErrorIs(t, err, errXLSBCorrupt)
}

func TestDecodeRK(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10.0, decodeRK(10<<2|0x02))
	neg := int32(-7)
	assert.Equal(t, -7.0, decodeRK(uint32(neg<<2)|0x02))
	assert.Equal(t, 10.5, decodeRK(1050<<2|0x03))
	// 浮点：取 double 高 32 位
	hi := uint32(math.Float64bits(2.5) >> 32)
	assert.Equal(t, 2.5, decodeRK(hi))
}
