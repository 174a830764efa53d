package exhibit

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID identifies an exhibit on the compute server
type ID struct {
	EntityType string `json:"entity"`
	ID         string `json:"id"`
}

func (id ID) String() string {
	return id.EntityType + "/" + id.ID
}

// Row is a single observation in a frame. Values are positional and match
// the column list of the frame the row belongs to.
type Row []any

type Metric struct {
	ID    int `json:"id"`
	Value any `json:"value"`
}

type Exhibit struct {
	Attrs   map[string]any      `json:"attrs"`
	Columns map[string][]string `json:"columns"`
	Frames  map[string][]Row    `json:"frames"`
	Metrics map[string]Metric   `json:"metrics,omitempty"`
}

// Frame returns a view of the named frame, or false if the exhibit has no
// rows or no columns for it
func (e Exhibit) Frame(name string) (Frame, bool) {
	columns, ok := e.Columns[name]
	if !ok {
		return Frame{}, false
	}

	rows, ok := e.Frames[name]
	if !ok {
		return Frame{}, false
	}

	return Frame{Columns: columns, Rows: rows}, true
}

type Frame struct {
	Columns []string
	Rows    []Row
}

// Index returns the position of column within the frame, or -1
func (f Frame) Index(column string) int {
	return indexOf(f.Columns, column)
}

func (f Frame) Value(row Row, column string) any {
	idx := f.Index(column)
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

// QueryResult is the response of a compute request. It has the same shape
// as a frame.
type QueryResult struct {
	Columns []string `json:"columns"`
	Data    []Row    `json:"data"`
}

func (qr *QueryResult) UnmarshalJSON(data []byte) error {
	raw := struct {
		Columns []string          `json:"columns"`
		Data    []json.RawMessage `json:"data"`
	}{}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rows, err := decodeRows(raw.Columns, raw.Data)
	if err != nil {
		return err
	}

	qr.Columns = raw.Columns
	qr.Data = rows

	if qr.Columns == nil {
		qr.Columns = []string{}
	}

	return nil
}

func (e *Exhibit) UnmarshalJSON(data []byte) error {
	raw := struct {
		Attrs   map[string]any               `json:"attrs"`
		Columns map[string][]string          `json:"columns"`
		Frames  map[string][]json.RawMessage `json:"frames"`
		Metrics map[string]Metric            `json:"metrics"`
	}{}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Attrs = raw.Attrs
	e.Columns = raw.Columns
	e.Metrics = raw.Metrics
	e.Frames = make(map[string][]Row, len(raw.Frames))

	if e.Attrs == nil {
		e.Attrs = map[string]any{}
	}

	if e.Columns == nil {
		e.Columns = map[string][]string{}
	}

	for name, rawRows := range raw.Frames {
		rows, err := decodeRows(e.Columns[name], rawRows)
		if err != nil {
			return fmt.Errorf("failed to decode frame %s: %w", name, err)
		}
		e.Frames[name] = rows
	}

	return nil
}

// decodeRows accepts rows either as positional arrays, which is how the
// compute server serializes frames, or as objects keyed by column name.
// Keyed rows are projected onto the column list.
func decodeRows(columns []string, rawRows []json.RawMessage) ([]Row, error) {
	rows := make([]Row, 0, len(rawRows))

	for idx, raw := range rawRows {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}

		switch raw[0] {
		case '[':
			row := Row{}
			if err := json.Unmarshal(raw, &row); err != nil {
				return nil, fmt.Errorf("row %d: %w", idx, err)
			}
			rows = append(rows, row)
		case '{':
			keyed := map[string]any{}
			if err := json.Unmarshal(raw, &keyed); err != nil {
				return nil, fmt.Errorf("row %d: %w", idx, err)
			}

			row := make(Row, len(columns))
			for i, c := range columns {
				row[i] = keyed[c]
			}
			rows = append(rows, row)
		default:
			return nil, fmt.Errorf("row %d: expected array or object", idx)
		}
	}

	return rows, nil
}

func indexOf(columns []string, column string) int {
	for idx := range columns {
		if columns[idx] == column {
			return idx
		}
	}
	return -1
}
