package docx

import (
	"encoding/xml"
	"strings"
)

// Table holds rows of cells. Table-level properties and the column grid are
// preserved as raw markup.
type Table struct {
	start    xml.StartElement
	children []node
}

// Rows returns the table's rows in document order.
func (t *Table) Rows() []*Row {
	var rows []*Row
	for _, c := range t.children {
		if r, ok := c.(*Row); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

func (t *Table) writeXML(b *strings.Builder) {
	writeStartTag(b, t.start)
	for _, c := range t.children {
		c.writeXML(b)
	}
	writeEndTag(b, t.start.Name)
}

func parseTable(d *xml.Decoder, start xml.StartElement) (*Table, error) {
	t := &Table{start: start}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "tr":
				row, err := parseRow(d, el)
				if err != nil {
					return nil, err
				}
				t.children = append(t.children, row)
			default:
				r, err := captureElement(d, el)
				if err != nil {
					return nil, err
				}
				t.children = append(t.children, r)
			}
		case xml.EndElement:
			if el.Name.Local == "tbl" {
				return t, nil
			}
		}
	}
}

// Row is a table row.
type Row struct {
	start    xml.StartElement
	children []node
}

// Cells returns the row's cells in document order.
func (r *Row) Cells() []*Cell {
	var cells []*Cell
	for _, c := range r.children {
		if cell, ok := c.(*Cell); ok {
			cells = append(cells, cell)
		}
	}
	return cells
}

func (r *Row) writeXML(b *strings.Builder) {
	writeStartTag(b, r.start)
	for _, c := range r.children {
		c.writeXML(b)
	}
	writeEndTag(b, r.start.Name)
}

func parseRow(d *xml.Decoder, start xml.StartElement) (*Row, error) {
	row := &Row{start: start}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "tc":
				cell, err := parseCell(d, el)
				if err != nil {
					return nil, err
				}
				row.children = append(row.children, cell)
			default:
				r, err := captureElement(d, el)
				if err != nil {
					return nil, err
				}
				row.children = append(row.children, r)
			}
		case xml.EndElement:
			if el.Name.Local == "tr" {
				return row, nil
			}
		}
	}
}

// Cell contains block content: paragraphs and, possibly, nested tables.
type Cell struct {
	start    xml.StartElement
	children []node
}

// Paragraphs returns the cell's direct paragraphs.
func (c *Cell) Paragraphs() []*Paragraph {
	var paras []*Paragraph
	for _, ch := range c.children {
		if p, ok := ch.(*Paragraph); ok {
			paras = append(paras, p)
		}
	}
	return paras
}

// Tables returns tables nested directly inside the cell.
func (c *Cell) Tables() []*Table {
	var tables []*Table
	for _, ch := range c.children {
		if t, ok := ch.(*Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

func (c *Cell) writeXML(b *strings.Builder) {
	writeStartTag(b, c.start)
	for _, ch := range c.children {
		ch.writeXML(b)
	}
	writeEndTag(b, c.start.Name)
}

func parseCell(d *xml.Decoder, start xml.StartElement) (*Cell, error) {
	children, err := parseBlockChildren(d, "tc")
	if err != nil {
		return nil, err
	}
	return &Cell{start: start, children: children}, nil
}

// parseBlockChildren parses mixed block content (paragraphs, tables, raw
// markup) until the named end element closes. Shared by body, table cells
// and header/footer parts.
func parseBlockChildren(d *xml.Decoder, endLocal string) ([]node, error) {
	var children []node
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				p, err := parseParagraph(d, el)
				if err != nil {
					return nil, err
				}
				children = append(children, p)
			case "tbl":
				t, err := parseTable(d, el)
				if err != nil {
					return nil, err
				}
				children = append(children, t)
			default:
				r, err := captureElement(d, el)
				if err != nil {
					return nil, err
				}
				children = append(children, r)
			}
		case xml.EndElement:
			if el.Name.Local == endLocal {
				return children, nil
			}
		}
	}
}
