package snapshot

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// codec leaves non-ASCII text and HTML characters unescaped so display names
// stay readable in the file. Map keys are sorted for stable diffs.
var codec = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	if doc == nil {
		doc = NewDocument()
	}
	data, err := codec.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Decode reads a JSON document. Missing collections decode as empty.
// Anything but whitespace after the document is an error.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var doc Document
	if err := codec.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if doc.StockItems == nil {
		doc.StockItems = make(map[string]ItemRecord)
	}
	if doc.Events == nil {
		doc.Events = make(map[string]EventRecord)
	}
	for id, rec := range doc.Events {
		if rec.StockAllocations == nil {
			rec.StockAllocations = make(map[string]int)
			doc.Events[id] = rec
		}
	}
	return &doc, nil
}
