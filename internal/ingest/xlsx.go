package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/mossholt/autotab-cli/internal/dataset"
)

// xlsxReader pulls rows from one worksheet of an .xlsx workbook. The format
// is a ZIP of XML parts; only workbook.xml, its relationships, the shared
// string table, and the selected sheet are touched.
type xlsxReader struct{}

func (xlsxReader) Format() string { return "xlsx" }

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxReader) Read(p string, opts Options) (*dataset.Dataset, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	sheetIdx := opts.Sheet
	if sheetIdx <= 0 {
		sheetIdx = 1
	}
	target := sheetPath(zr, sheetIdx)
	sheetXML := zipPart(zr, target)
	if sheetXML == nil {
		return nil, fmt.Errorf("worksheet %d not found", sheetIdx)
	}
	shared := sharedStrings(zipPart(zr, "xl/sharedStrings.xml"))

	rr := &rowReader{dec: xml.NewDecoder(bytes.NewReader(sheetXML)), shared: shared}
	header, ok := rr.next()
	if !ok || len(header) == 0 {
		return &dataset.Dataset{}, nil
	}
	var rows [][]string
	for {
		row, ok := rr.next()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	return buildDataset(header, rows)
}

// sheetPath resolves the ZIP path of the idx-th (1-based) sheet via the
// workbook relationships, falling back to the conventional sheetN.xml name.
func sheetPath(zr *zip.Reader, idx int) string {
	rels := make(map[string]string)
	if data := zipPart(zr, "xl/_rels/workbook.xml.rels"); data != nil {
		dec := xml.NewDecoder(bytes.NewReader(data))
		for {
			tok, err := dec.Token()
			if err != nil {
				break
			}
			if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "Relationship" {
				var id, tgt string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "Id":
						id = a.Value
					case "Target":
						tgt = a.Value
					}
				}
				if id != "" && tgt != "" {
					rels[id] = tgt
				}
			}
		}
	}
	if data := zipPart(zr, "xl/workbook.xml"); data != nil {
		dec := xml.NewDecoder(bytes.NewReader(data))
		n := 0
		for {
			tok, err := dec.Token()
			if err != nil {
				break
			}
			if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "sheet" {
				n++
				if n != idx {
					continue
				}
				for _, a := range se.Attr {
					if a.Name.Local == "id" {
						if tgt, ok := rels[a.Value]; ok {
							tgt = strings.TrimPrefix(tgt, "/")
							if !strings.HasPrefix(tgt, "xl/") {
								tgt = path.Join("xl", tgt)
							}
							return tgt
						}
					}
				}
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", idx)
}

func zipPart(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil
			}
			defer rc.Close()
			b, _ := io.ReadAll(rc)
			return b
		}
	}
	return nil
}

func sharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inT := false
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "si" {
				buf.Reset()
			}
			if se.Name.Local == "t" {
				inT = true
			}
		case xml.EndElement:
			if se.Name.Local == "t" {
				inT = false
			}
			if se.Name.Local == "si" {
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write([]byte(se))
			}
		}
	}
	return out
}

// rowReader streams <row> elements, resolving shared-string cells and cell
// references like "C12" to 0-based column indices.
type rowReader struct {
	dec    *xml.Decoder
	shared []string
	cur    []string
	width  int
}

func (r *rowReader) next() ([]string, bool) {
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				inRow = true
				r.cur = nil
				r.width = 0
			}
			if inRow && se.Name.Local == "c" {
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				idx := colIndex(ref)
				if idx < 0 {
					idx = len(r.cur)
				}
				if idx+1 > r.width {
					r.width = idx + 1
				}
				val := r.cellValue(typ)
				for len(r.cur) <= idx {
					r.cur = append(r.cur, "")
				}
				r.cur[idx] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				for len(r.cur) < r.width {
					r.cur = append(r.cur, "")
				}
				return r.cur, true
			}
		}
	}
}

func (r *rowReader) cellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					tk, err := r.dec.Token()
					if err != nil {
						break
					}
					if ed, ok := tk.(xml.EndElement); ok && (ed.Name.Local == "v" || ed.Name.Local == "t") {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						sb.Write([]byte(ch))
					}
				}
				val = sb.String()
			}
		case xml.EndElement:
			if se.Name.Local == "c" {
				if typ == "s" {
					if i := atoi(val); i >= 0 && i < len(r.shared) {
						return r.shared[i]
					}
					return ""
				}
				return val
			}
		}
	}
}

// colIndex converts a cell reference like "C12" to 2. Returns -1 when the
// reference carries no column letters.
func colIndex(ref string) int {
	i := 0
	for i < len(ref) && (ref[i]|0x20) >= 'a' && (ref[i]|0x20) <= 'z' {
		i++
	}
	if i == 0 {
		return -1
	}
	idx := 0
	for j := 0; j < i; j++ {
		idx = idx*26 + int(ref[j]|0x20) - 'a' + 1
	}
	return idx - 1
}

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return -1
		}
		n = n*10 + int(s[i]-'0')
	}
	if s == "" {
		return -1
	}
	return n
}
