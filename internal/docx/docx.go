// Package docx reads and writes Word documents for translation. It
// enumerates paragraphs (body and table cells, nested tables included)
// as text units with stable integer IDs, and writes replacement text
// back by splicing into the original document.xml bytes, so untouched
// paragraphs and every other archive entry survive byte-identical.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alzakaria14/translator-program/internal"
)

const documentPath = "word/document.xml"

type zipEntry struct {
	name string
	data []byte
}

// paragraph records the byte spans needed to splice a replacement into
// document.xml: the opening <w:p> tag, the optional w:pPr properties
// element, and the start of the closing tag.
type paragraph struct {
	start      int
	openEnd    int
	closeStart int
	pprStart   int
	pprEnd     int
	selfClose  bool
	text       string
}

// Document is an opened .docx file. IDs handed out by Units are indexes
// into the document's paragraph list and stay valid for its lifetime.
type Document struct {
	entries  []zipEntry
	docXML   []byte
	paras    []paragraph
	replaced map[int]string
}

// Open reads a .docx file into memory and parses its main document part.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read docx archive: %w", err)
	}

	d := &Document{replaced: make(map[int]string)}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		d.entries = append(d.entries, zipEntry{name: f.Name, data: content})
		if f.Name == documentPath {
			d.docXML = content
		}
	}
	if d.docXML == nil {
		return nil, fmt.Errorf("not a Word document: missing %s", documentPath)
	}

	d.paras, err = parseParagraphs(d.docXML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", documentPath, err)
	}
	return d, nil
}

// Units enumerates the document's paragraphs in document order. Blank
// paragraphs are included with empty text; callers decide what to skip.
func (d *Document) Units() []internal.TextUnit {
	units := make([]internal.TextUnit, len(d.paras))
	for i, p := range d.paras {
		units[i] = internal.TextUnit{ID: i, Text: p.text}
	}
	return units
}

// SetText records a replacement for the paragraph with the given ID. The
// paragraph's properties (style) are kept; its runs are replaced by a
// single run holding text, the same degradation a plain-text rewrite of
// a styled paragraph always has.
func (d *Document) SetText(id int, text string) error {
	if id < 0 || id >= len(d.paras) {
		return fmt.Errorf("no paragraph with id %d", id)
	}
	d.replaced[id] = text
	return nil
}

// Save writes the document, with all recorded replacements applied, to
// path. The source file is never modified.
func (d *Document) Save(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	zw := zip.NewWriter(out)
	rendered := d.render()
	for _, entry := range d.entries {
		w, err := zw.Create(entry.name)
		if err != nil {
			out.Close()
			return fmt.Errorf("failed to add %s: %w", entry.name, err)
		}
		data := entry.data
		if entry.name == documentPath {
			data = rendered
		}
		if _, err := w.Write(data); err != nil {
			out.Close()
			return fmt.Errorf("failed to write %s: %w", entry.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// render splices the recorded replacements into the original
// document.xml bytes. Paragraphs without a replacement, and everything
// between paragraphs, pass through untouched.
func (d *Document) render() []byte {
	if len(d.replaced) == 0 {
		return d.docXML
	}

	var buf bytes.Buffer
	cursor := 0
	for i, p := range d.paras {
		text, ok := d.replaced[i]
		if !ok {
			continue
		}
		if p.selfClose {
			buf.Write(d.docXML[cursor:p.start])
			open := bytes.TrimSuffix(d.docXML[p.start:p.openEnd], []byte("/>"))
			buf.Write(open)
			buf.WriteByte('>')
		} else {
			buf.Write(d.docXML[cursor:p.openEnd])
		}
		if p.pprEnd > p.pprStart {
			buf.Write(d.docXML[p.pprStart:p.pprEnd])
		}
		writeRun(&buf, text)
		if p.selfClose {
			buf.WriteString("</w:p>")
			cursor = p.openEnd
		} else {
			cursor = p.closeStart
		}
	}
	buf.Write(d.docXML[cursor:])
	return buf.Bytes()
}

// writeRun emits one run carrying text, with tab and newline characters
// rendered as <w:tab/> and <w:br/> elements, mirroring how Units reads
// them. Empty text produces no run, leaving the paragraph bare.
func writeRun(buf *bytes.Buffer, text string) {
	if text == "" {
		return
	}
	buf.WriteString(`<w:r>`)
	start := 0
	flush := func(end int) {
		if end > start {
			buf.WriteString(`<w:t xml:space="preserve">`)
			xml.EscapeText(buf, []byte(text[start:end]))
			buf.WriteString(`</w:t>`)
		}
	}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\t':
			flush(i)
			buf.WriteString(`<w:tab/>`)
			start = i + 1
		case '\n':
			flush(i)
			buf.WriteString(`<w:br/>`)
			start = i + 1
		}
	}
	flush(len(text))
	buf.WriteString(`</w:r>`)
}

// parseParagraphs walks document.xml with raw tokens, recording byte
// spans for every top-level w:p element and extracting its plain text
// (w:t character data; w:tab as tab, w:br and w:cr as newline).
// Paragraphs nested inside another paragraph (text-box content) belong
// to their host paragraph's structure and are not recorded separately.
func parseParagraphs(data []byte) ([]paragraph, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		paras    []paragraph
		cur      paragraph
		textBuf  bytes.Buffer
		inPara   bool
		pDepth   int
		elem     int
		runDepth int
		inText   bool
		inPPr    bool
	)

	prev := dec.InputOffset()
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		offset := dec.InputOffset()

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == "w" && t.Name.Local == "p" {
				if !inPara {
					inPara = true
					pDepth = 1
					elem = 0
					runDepth = 0
					inText = false
					inPPr = false
					textBuf.Reset()
					tag := data[prev:offset]
					cur = paragraph{
						start:     int(prev),
						openEnd:   int(offset),
						selfClose: bytes.HasSuffix(tag, []byte("/>")),
					}
				} else {
					pDepth++
					elem++
				}
				break
			}
			if inPara {
				if pDepth == 1 && t.Name.Space == "w" {
					switch t.Name.Local {
					case "pPr":
						if elem == 0 && cur.pprEnd == 0 {
							cur.pprStart = int(prev)
							inPPr = true
						}
					case "r":
						runDepth++
					case "t":
						if runDepth > 0 {
							inText = true
						}
					case "tab":
						if runDepth > 0 {
							textBuf.WriteByte('\t')
						}
					case "br", "cr":
						if runDepth > 0 {
							textBuf.WriteByte('\n')
						}
					}
				}
				elem++
			}

		case xml.EndElement:
			if t.Name.Space == "w" && t.Name.Local == "p" {
				if !inPara {
					break
				}
				if pDepth > 1 {
					pDepth--
					elem--
					break
				}
				cur.closeStart = int(prev)
				cur.text = textBuf.String()
				paras = append(paras, cur)
				inPara = false
				pDepth = 0
				break
			}
			if inPara {
				elem--
				if pDepth == 1 && t.Name.Space == "w" {
					switch t.Name.Local {
					case "pPr":
						if inPPr {
							cur.pprEnd = int(offset)
							inPPr = false
						}
					case "r":
						if runDepth > 0 {
							runDepth--
						}
					case "t":
						inText = false
					}
				}
			}

		case xml.CharData:
			if inPara && pDepth == 1 && inText {
				textBuf.Write(t)
			}
		}

		prev = offset
	}

	if inPara {
		return nil, errors.New("unterminated paragraph element")
	}
	return paras, nil
}
