package node

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Item is a single record flowing between workflow nodes.
type Item struct {
	JSON map[string]any `json:"json"`
}

// NewItem wraps a JSON object into an Item.
func NewItem(data map[string]any) Item {
	if data == nil {
		data = map[string]any{}
	}
	return Item{JSON: data}
}

// ReadItems decodes a batch of items. It accepts a JSON array of objects,
// a JSON array of {"json": {...}} records, or JSON Lines with one object per line.
func ReadItems(r io.Reader) ([]Item, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read items")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []Item{}, nil
	}

	if raw[0] == '[' {
		var objects []map[string]any
		if err := json.Unmarshal(raw, &objects); err != nil {
			return nil, errors.Wrap(err, "decode item array")
		}
		items := make([]Item, 0, len(objects))
		for _, obj := range objects {
			items = append(items, fromObject(obj))
		}
		return items, nil
	}

	var items []Item
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		item, ok, err := DecodeLine(scanner.Bytes())
		if err != nil {
			return nil, err
		}
		if ok {
			items = append(items, item)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan item lines")
	}
	return items, nil
}

// DecodeLine decodes a single JSON Lines record. Blank lines report ok=false.
func DecodeLine(line []byte) (Item, bool, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Item{}, false, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		return Item{}, false, errors.Wrap(err, "decode item line")
	}
	return fromObject(obj), true, nil
}

// WriteOutput encodes the output envelope as indented JSON.
func WriteOutput(w io.Writer, output [][]Item) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(output), "encode output")
}

// fromObject unwraps {"json": {...}} records and wraps bare objects.
func fromObject(obj map[string]any) Item {
	if len(obj) == 1 {
		if inner, ok := obj["json"].(map[string]any); ok {
			return NewItem(inner)
		}
	}
	return NewItem(obj)
}
