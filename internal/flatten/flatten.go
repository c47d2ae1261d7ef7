package flatten

import (
	"strconv"
	"strings"

	"github.com/Checker-Finance/refdata/pkg/model"
)

// Mode selects how flat keys are built from element paths.
type Mode int

const (
	// ModeSimple keys an element by its immediate parent and own tag only.
	ModeSimple Mode = iota
	// ModePath keys an element by the full tag path from the record root.
	ModePath
)

func (m Mode) String() string {
	if m == ModePath {
		return "path"
	}
	return "simple"
}

const (
	generalAttributesTag = "FinInstrmGnlAttrbts"
	identifierTag        = "Id"
	keySeparator         = "_"
)

// FlattenRecord converts one record subtree into a RawRecord. The result is a
// pure function of the subtree, so flattening the same node twice yields
// identical maps.
func FlattenRecord(root *Node, mode Mode) model.RawRecord {
	rec := make(model.RawRecord)
	flattenInto(root, mode, rec, nil)
	return rec
}

// flattenInto walks root depth-first and writes retained values into rec.
// seen, when non-nil, is called for every candidate key, valued or not.
func flattenInto(root *Node, mode Mode, rec model.RawRecord, seen func(key string)) {
	w := walker{mode: mode, rec: rec, seen: seen, used: make(map[string]int)}
	for _, child := range root.Children {
		w.walk(child, root, "")
	}
}

type walker struct {
	mode Mode
	rec  model.RawRecord
	seen func(string)
	// used counts assignments per base key across the whole record, so a
	// key repeated under a later parent also gets _2, _3, ...
	used map[string]int
}

func (w *walker) walk(n, parent *Node, prefix string) {
	key := w.keyFor(n, parent, prefix)

	for _, a := range n.Attrs {
		w.emit(key+keySeparator+a.Name, a.Value)
	}
	if len(n.Children) == 0 || n.Text != "" {
		w.emit(key, n.Text)
	}

	childPrefix := key
	if w.mode == ModeSimple {
		childPrefix = n.Name
	}
	for _, c := range n.Children {
		w.walk(c, n, childPrefix)
	}
}

func (w *walker) keyFor(n, parent *Node, prefix string) string {
	if w.mode == ModePath {
		if n.Name == identifierTag && parent != nil && parent.Name == generalAttributesTag {
			return identifierTag
		}
		if prefix == "" {
			return n.Name
		}
		return prefix + keySeparator + n.Name
	}
	// simple mode: immediate parent + child only
	return parent.Name + keySeparator + n.Name
}

func (w *walker) emit(key, value string) {
	n := w.used[key] + 1
	w.used[key] = n
	if n > 1 {
		key = key + keySeparator + strconv.Itoa(n)
	}
	if w.seen != nil {
		w.seen(key)
	}
	if v, ok := retained(value); ok {
		w.rec[key] = v
	}
}

// retained reports whether a text value is kept: non-empty, non-whitespace
// and not a literal "nan".
func retained(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "nan") {
		return "", false
	}
	return v, true
}

// Batch accumulates flattened records and prunes columns that never held a
// value once the whole document has been seen.
type Batch struct {
	mode    Mode
	columns []string
	known   map[string]struct{}
	records []model.RawRecord
}

// NewBatch returns an empty batch for mode.
func NewBatch(mode Mode) *Batch {
	return &Batch{mode: mode, known: make(map[string]struct{})}
}

// Add flattens root and appends it to the batch.
func (b *Batch) Add(root *Node) model.RawRecord {
	rec := make(model.RawRecord)
	flattenInto(root, b.mode, rec, func(key string) {
		if _, ok := b.known[key]; !ok {
			b.known[key] = struct{}{}
			b.columns = append(b.columns, key)
		}
	})
	b.records = append(b.records, rec)
	return rec
}

// Len returns the number of records added so far.
func (b *Batch) Len() int { return len(b.records) }

// Document returns the batch with empty columns pruned.
func (b *Batch) Document(source string) *model.FlattenedDocument {
	valued := make(map[string]struct{}, len(b.columns))
	for _, rec := range b.records {
		for k := range rec {
			valued[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(valued))
	for _, c := range b.columns {
		if _, ok := valued[c]; ok {
			cols = append(cols, c)
		}
	}
	return &model.FlattenedDocument{Source: source, Columns: cols, Records: b.records}
}
