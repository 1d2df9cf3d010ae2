package circuit

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/b3dgs/lionengine-sub021/game/tilemap"
)

var ErrMalformedCircuits = errors.New("malformed circuits config")

type xmlCircuits struct {
	XMLName  xml.Name     `xml:"circuits"`
	Circuits []xmlCircuit `xml:"circuit"`
}

type xmlCircuit struct {
	Type   string     `xml:"type,attr"`
	In     string     `xml:"in,attr"`
	Out    string     `xml:"out,attr"`
	Tiles  []xmlTile  `xml:"tile"`
	Ranges []xmlRange `xml:"tiles"`
}

type xmlTile struct {
	Sheet  string `xml:"sheet,attr"`
	Number string `xml:"number,attr"`
}

type xmlRange struct {
	Sheet string `xml:"sheet,attr"`
	Start string `xml:"start,attr"`
	End   string `xml:"end,attr"`
}

// Export writes the table as a circuits XML document. Circuits are sorted and
// runs of three or more consecutive numbers are written as ranges.
func Export(w io.Writer, table *Table) error {
	doc := xmlCircuits{}
	for _, c := range table.Circuits() {
		node := xmlCircuit{Type: c.Type.String(), In: c.In, Out: c.Out}
		refs := table.Tiles(c)
		for i := 0; i < len(refs); {
			j := i
			for j+1 < len(refs) && j-i+1 < tilemap.MaxTileRange &&
				refs[j+1].Sheet == refs[i].Sheet && refs[j+1].Number == refs[j].Number+1 {
				j++
			}
			if j-i >= 2 {
				node.Ranges = append(node.Ranges, xmlRange{
					Sheet: strconv.Itoa(refs[i].Sheet),
					Start: strconv.Itoa(refs[i].Number),
					End:   strconv.Itoa(refs[j].Number),
				})
			} else {
				for k := i; k <= j; k++ {
					node.Tiles = append(node.Tiles, xmlTile{
						Sheet:  strconv.Itoa(refs[k].Sheet),
						Number: strconv.Itoa(refs[k].Number),
					})
				}
			}
			i = j + 1
		}
		doc.Circuits = append(doc.Circuits, node)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal circuits: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// Import reads a circuits XML document. Any error wraps ErrMalformedCircuits
// and no partial table is returned.
func Import(r io.Reader) (*Table, error) {
	var doc xmlCircuits
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCircuits, err)
	}

	table := NewTable()
	declared := 0
	for i, node := range doc.Circuits {
		c, err := node.circuit()
		if err != nil {
			return nil, fmt.Errorf("%w: circuit %d: %w", ErrMalformedCircuits, i+1, err)
		}
		refs, err := node.refs()
		if err != nil {
			return nil, fmt.Errorf("%w: circuit %d (%s): %w", ErrMalformedCircuits, i+1, c, err)
		}
		declared += len(refs)
		if declared > tilemap.MaxDeclaredTiles {
			return nil, fmt.Errorf("%w: more than %d tiles declared", ErrMalformedCircuits, tilemap.MaxDeclaredTiles)
		}
		table.Add(c, refs...)
	}
	return table, nil
}

// ExportFile writes the table to an XML file
func ExportFile(filename string, table *Table) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create circuits file: %w", err)
	}
	if err := Export(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportFile reads a table from an XML file
func ImportFile(filename string) (*Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Import(f)
}

func (n xmlCircuit) circuit() (Circuit, error) {
	circuitType, err := ParseCircuitType(n.Type)
	if err != nil {
		return Circuit{}, err
	}
	if n.In == "" || n.Out == "" {
		return Circuit{}, errors.New("in and out groups are required")
	}
	return New(circuitType, n.In, n.Out), nil
}

func (n xmlCircuit) refs() ([]tilemap.TileRef, error) {
	var refs []tilemap.TileRef
	for _, t := range n.Tiles {
		sheet, err := parseAttr("sheet", t.Sheet)
		if err != nil {
			return nil, err
		}
		number, err := parseAttr("number", t.Number)
		if err != nil {
			return nil, err
		}
		refs = append(refs, tilemap.TileRef{Sheet: sheet, Number: number})
	}
	for _, r := range n.Ranges {
		sheet, err := parseAttr("sheet", r.Sheet)
		if err != nil {
			return nil, err
		}
		start, err := parseAttr("start", r.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseAttr("end", r.End)
		if err != nil {
			return nil, err
		}
		r := tilemap.TileRange{Sheet: sheet, Start: start, End: end}
		if !r.Valid() {
			return nil, fmt.Errorf("invalid range %d..%d (at most %d tiles)", start, end, tilemap.MaxTileRange)
		}
		if len(refs)+r.Len() > tilemap.MaxDeclaredTiles {
			return nil, fmt.Errorf("more than %d tiles declared", tilemap.MaxDeclaredTiles)
		}
		refs = append(refs, r.Refs()...)
	}
	return refs, nil
}

func parseAttr(name, value string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("missing attribute %q", name)
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("attribute %q must not be negative, got %d", name, v)
	}
	return v, nil
}
