package excel

import (
	"archive/zip"
	"bufio"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

// BIFF12 记录类型（只处理读取单元格值需要的部分）
const (
	brtRowHdr     = 0
	brtCellBlank  = 1
	brtCellRk     = 2
	brtCellError  = 3
	brtCellBool   = 4
	brtCellReal   = 5
	brtCellSt     = 6
	brtCellIsst   = 7
	brtFmlaString = 8
	brtFmlaNum    = 9
	brtFmlaBool   = 10
	brtFmlaError  = 11
	brtSSTItem    = 19
	brtBundleSh   = 156
)

const (
	xlsbWorkbookPart = "xl/workbook.bin"
	xlsbRelsPart     = "xl/_rels/workbook.bin.rels"
	xlsbSSTPart      = "xl/sharedStrings.bin"

	xlsbMaxRecord = 64 << 20
	xlsbMaxRows   = 1 << 20
	xlsbMaxCols   = 1 << 14
)

var errXLSBCorrupt = errors.New("corrupt xlsb record")

var xlsbErrors = map[byte]string{
	0x00: "#NULL!",
	0x07: "#DIV/0!",
	0x0F: "#VALUE!",
	0x17: "#REF!",
	0x1D: "#NAME?",
	0x24: "#NUM!",
	0x2A: "#N/A",
	0x2B: "#GETTING_DATA",
}

// xlsbWorkbook 二进制工作簿(.xlsb)实现：打开时读工作表目录和共享字符串，Grid 时再解码对应工作表
type xlsbWorkbook struct {
	zr    *zip.ReadCloser
	names []string
	parts map[string]string // sheet 名 → zip 内路径
	sst   []string
}

func openXLSB(filePath string) (*xlsbWorkbook, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsb: %v", ErrFileUnreadable, err)
	}
	wb := &xlsbWorkbook{zr: zr, parts: make(map[string]string)}
	if err := wb.load(); err != nil {
		_ = zr.Close()
		return nil, fmt.Errorf("%w: %v", ErrFileUnreadable, err)
	}
	return wb, nil
}

func (w *xlsbWorkbook) load() error {
	targets, sstPart, err := w.readRels()
	if err != nil {
		return err
	}

	err = w.eachRecord(xlsbWorkbookPart, func(typ int, data []byte) error {
		if typ != brtBundleSh {
			return nil
		}
		// hsState(4) iTabID(4) strRelID strName
		if len(data) < 8 {
			return errXLSBCorrupt
		}
		relID, off, err := readWideString(data, 8)
		if err != nil {
			return err
		}
		name, _, err := readWideString(data, off)
		if err != nil {
			return err
		}
		target, ok := targets[relID]
		if !ok {
			return fmt.Errorf("sheet %q: relationship %q not found", name, relID)
		}
		w.names = append(w.names, name)
		w.parts[name] = target
		return nil
	})
	if err != nil {
		return err
	}

	if w.find(sstPart) == nil {
		return nil
	}
	return w.eachRecord(sstPart, func(typ int, data []byte) error {
		if typ != brtSSTItem {
			return nil
		}
		// RichStr: flags(1) + XLWideString，富文本格式段忽略
		if len(data) < 1 {
			return errXLSBCorrupt
		}
		s, _, err := readWideString(data, 1)
		if err != nil {
			return err
		}
		w.sst = append(w.sst, s)
		return nil
	})
}

type xlsbRelationships struct {
	Items []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// readRels 返回 rId → 部件路径，以及共享字符串部件路径
func (w *xlsbWorkbook) readRels() (map[string]string, string, error) {
	f := w.find(xlsbRelsPart)
	if f == nil {
		return nil, "", fmt.Errorf("missing %s", xlsbRelsPart)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", xlsbRelsPart, err)
	}
	defer rc.Close()

	var rels xlsbRelationships
	if err := xml.NewDecoder(rc).Decode(&rels); err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", xlsbRelsPart, err)
	}

	targets := make(map[string]string, len(rels.Items))
	sstPart := xlsbSSTPart
	for _, rel := range rels.Items {
		target := strings.TrimPrefix(rel.Target, "/")
		if !strings.HasPrefix(rel.Target, "/") {
			target = path.Join("xl", rel.Target)
		}
		targets[rel.ID] = target
		if strings.HasSuffix(rel.Type, "/sharedStrings") {
			sstPart = target
		}
	}
	return targets, sstPart, nil
}

func (w *xlsbWorkbook) find(name string) *zip.File {
	for _, f := range w.zr.File {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// eachRecord 顺序读取部件中的 BIFF12 记录
func (w *xlsbWorkbook) eachRecord(part string, fn func(typ int, data []byte) error) error {
	f := w.find(part)
	if f == nil {
		return fmt.Errorf("missing %s", part)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", part, err)
	}
	defer rc.Close()

	r := bufio.NewReader(rc)
	for {
		typ, data, err := readRecord(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", part, err)
		}
		if err := fn(typ, data); err != nil {
			return fmt.Errorf("%s: %w", part, err)
		}
	}
}

// readRecord 记录头：类型 1-2 字节、长度 1-4 字节，每字节低 7 位有效，最高位表示还有后续字节
func readRecord(r *bufio.Reader) (int, []byte, error) {
	b0, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	typ := int(b0 & 0x7F)
	if b0&0x80 != 0 {
		b1, err := r.ReadByte()
		if err != nil {
			return 0, nil, errXLSBCorrupt
		}
		typ |= int(b1&0x7F) << 7
	}

	size := 0
	for i := 0; i < 4; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, nil, errXLSBCorrupt
		}
		size |= int(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			break
		}
	}
	if size > xlsbMaxRecord {
		return 0, nil, errXLSBCorrupt
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return 0, nil, errXLSBCorrupt
	}
	return typ, data, nil
}

// readWideString 读取 UTF-16LE 字符串（4 字节字符数前缀；0xFFFFFFFF 表示空值），返回新的偏移
func readWideString(data []byte, off int) (string, int, error) {
	if off+4 > len(data) {
		return "", off, errXLSBCorrupt
	}
	n := binary.LittleEndian.Uint32(data[off:])
	off += 4
	if n == math.MaxUint32 {
		return "", off, nil
	}
	end := off + int(n)*2
	if int(n) > len(data) || end > len(data) {
		return "", off, errXLSBCorrupt
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(data[off+2*i:])
	}
	return string(utf16.Decode(units)), end, nil
}

// decodeRK RkNumber：bit0 表示值已乘 100，bit1 表示 30 位有符号整数，否则为 double 的高 30 位
func decodeRK(rk uint32) float64 {
	var v float64
	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&^0x03) << 32)
	}
	if rk&0x01 != 0 {
		v /= 100
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (w *xlsbWorkbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

// Grid 解码工作表单元格为原始文本；数值不套用格式
func (w *xlsbWorkbook) Grid(sheet string) (model.RawGrid, error) {
	part, ok := w.parts[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	var grid model.RawGrid
	row := -1
	err := w.eachRecord(part, func(typ int, data []byte) error {
		if typ == brtRowHdr {
			if len(data) < 4 {
				return errXLSBCorrupt
			}
			row = int(binary.LittleEndian.Uint32(data))
			if row >= xlsbMaxRows {
				return errXLSBCorrupt
			}
			return nil
		}
		if typ < brtCellBlank || typ > brtFmlaError || row < 0 {
			return nil
		}

		// Cell: column(4) + 样式和标志(4)
		if len(data) < 8 {
			return errXLSBCorrupt
		}
		col := int(binary.LittleEndian.Uint32(data))
		if col >= xlsbMaxCols {
			return errXLSBCorrupt
		}
		value, err := w.cellValue(typ, data[8:])
		if err != nil {
			return err
		}
		if value == "" {
			return nil
		}

		for len(grid) <= row {
			grid = append(grid, nil)
		}
		for len(grid[row]) <= col {
			grid[row] = append(grid[row], "")
		}
		grid[row][col] = value
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return grid, nil
}

func (w *xlsbWorkbook) cellValue(typ int, v []byte) (string, error) {
	switch typ {
	case brtCellBlank:
		return "", nil
	case brtCellRk:
		if len(v) < 4 {
			return "", errXLSBCorrupt
		}
		return formatNumber(decodeRK(binary.LittleEndian.Uint32(v))), nil
	case brtCellReal, brtFmlaNum:
		if len(v) < 8 {
			return "", errXLSBCorrupt
		}
		return formatNumber(math.Float64frombits(binary.LittleEndian.Uint64(v))), nil
	case brtCellBool, brtFmlaBool:
		if len(v) < 1 {
			return "", errXLSBCorrupt
		}
		if v[0] != 0 {
			return "TRUE", nil
		}
		return "FALSE", nil
	case brtCellError, brtFmlaError:
		if len(v) < 1 {
			return "", errXLSBCorrupt
		}
		if s, ok := xlsbErrors[v[0]]; ok {
			return s, nil
		}
		return "#ERR", nil
	case brtCellSt, brtFmlaString:
		s, _, err := readWideString(v, 0)
		return s, err
	case brtCellIsst:
		if len(v) < 4 {
			return "", errXLSBCorrupt
		}
		idx := int(binary.LittleEndian.Uint32(v))
		if idx >= len(w.sst) {
			return "", fmt.Errorf("shared string %d out of range", idx)
		}
		return w.sst[idx], nil
	}
	return "", nil
}

func (w *xlsbWorkbook) Close() error {
	return w.zr.Close()
}
