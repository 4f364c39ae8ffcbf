package roadmap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/roadmap/internal/atomicfile"
	"github.com/aidanlsb/roadmap/internal/dates"
)

// DefaultFileName is the store file used when no path is configured.
const DefaultFileName = "roadmap.yaml"

// Roadmap is the whole local store: a project identifier and its items in
// the order the operator wrote them.
type Roadmap struct {
	Project string
	Items   []Item
}

// Field keys in the order they are written.
var itemKeys = []string{"title", "label", "description", "kind", "layer", "priority", "status", "start_date"}

type rawDocument struct {
	Project string      `yaml:"project"`
	Items   []yaml.Node `yaml:"items"`
}

// Load reads and parses the store at path. It does not validate; call
// Validate before acting on the items.
func Load(path string) (*Roadmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roadmap: %w", err)
	}

	r, err := Parse(data)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return r, nil
}

// Parse decodes a store document.
func Parse(data []byte) (*Roadmap, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc rawDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Err: errors.New("roadmap is empty")}
		}
		return nil, &ParseError{Err: err}
	}

	project := strings.TrimSpace(doc.Project)
	if project == "" {
		return nil, &ParseError{Err: errors.New("project is required")}
	}

	r := &Roadmap{Project: project, Items: make([]Item, 0, len(doc.Items))}
	for i := range doc.Items {
		node := &doc.Items[i]
		item, err := parseItem(node)
		if err != nil {
			return nil, &ParseError{Index: i + 1, Label: scalarField(node, "label"), Line: node.Line, Err: err}
		}
		r.Items = append(r.Items, item)
	}
	return r, nil
}

func parseItem(node *yaml.Node) (Item, error) {
	if node.Kind != yaml.MappingNode {
		return Item{}, errors.New("expected a mapping of item fields")
	}

	values := make(map[string]string, len(itemKeys))
	for j := 0; j+1 < len(node.Content); j += 2 {
		key, val := node.Content[j], node.Content[j+1]
		if !isItemKey(key.Value) {
			return Item{}, fmt.Errorf("unknown field %q on line %d", key.Value, key.Line)
		}
		if _, dup := values[key.Value]; dup {
			return Item{}, fmt.Errorf("field %q appears twice", key.Value)
		}
		if val.Kind != yaml.ScalarNode {
			return Item{}, fmt.Errorf("field %q must be a single value", key.Value)
		}
		values[key.Value] = val.Value
	}

	item := Item{
		Title:       strings.TrimSpace(values["title"]),
		Label:       strings.TrimSpace(values["label"]),
		Description: strings.TrimRight(values["description"], "\n"),
		StartDate:   strings.TrimSpace(values["start_date"]),
	}

	var err error
	if item.Kind, err = requiredEnum(values, "kind", ParseKind); err != nil {
		return Item{}, err
	}
	if item.Layer, err = requiredEnum(values, "layer", ParseLayer); err != nil {
		return Item{}, err
	}
	if item.Priority, err = requiredEnum(values, "priority", ParsePriority); err != nil {
		return Item{}, err
	}
	if strings.TrimSpace(values["status"]) == "" {
		item.Status = StatusPending
	} else if item.Status, err = ParseStatus(values["status"]); err != nil {
		return Item{}, err
	}

	if item.StartDate == "" {
		return Item{}, errors.New("start_date is required")
	}
	if !dates.IsValidDate(item.StartDate) {
		return Item{}, fmt.Errorf("invalid start_date %q (expected YYYY-MM-DD)", item.StartDate)
	}

	return item, nil
}

func requiredEnum[T ~string](values map[string]string, key string, parse func(string) (T, error)) (T, error) {
	raw := strings.TrimSpace(values[key])
	if raw == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return parse(raw)
}

func isItemKey(key string) bool {
	for _, k := range itemKeys {
		if k == key {
			return true
		}
	}
	return false
}

func scalarField(node *yaml.Node, key string) string {
	if node.Kind != yaml.MappingNode {
		return ""
	}
	for j := 0; j+1 < len(node.Content); j += 2 {
		if node.Content[j].Value == key && node.Content[j+1].Kind == yaml.ScalarNode {
			return strings.TrimSpace(node.Content[j+1].Value)
		}
	}
	return ""
}

// Validate checks the store invariants: required fields are non-empty,
// enum and date fields hold known values and every label is unique. All
// problems are reported together.
func Validate(items []Item) error {
	var errs []error
	seen := make(map[string][]int)
	var order []string

	for i, item := range items {
		idx := i + 1
		for _, f := range []struct{ name, value string }{
			{"title", item.Title},
			{"label", item.Label},
			{"description", item.Description},
		} {
			if strings.TrimSpace(f.value) == "" {
				errs = append(errs, &MissingFieldError{Index: idx, Label: item.Label, Field: f.name})
			}
		}

		switch {
		case !item.Kind.Valid():
			errs = append(errs, &InvalidFieldError{Index: idx, Label: item.Label, Field: "kind", Value: string(item.Kind)})
		case !item.Layer.Valid():
			errs = append(errs, &InvalidFieldError{Index: idx, Label: item.Label, Field: "layer", Value: string(item.Layer)})
		case !item.Priority.Valid():
			errs = append(errs, &InvalidFieldError{Index: idx, Label: item.Label, Field: "priority", Value: string(item.Priority)})
		case !item.Status.Valid():
			errs = append(errs, &InvalidFieldError{Index: idx, Label: item.Label, Field: "status", Value: string(item.Status)})
		case !dates.IsValidDate(item.StartDate):
			errs = append(errs, &InvalidFieldError{Index: idx, Label: item.Label, Field: "start_date", Value: item.StartDate})
		}

		label := strings.TrimSpace(item.Label)
		if label == "" {
			continue
		}
		if _, ok := seen[label]; !ok {
			order = append(order, label)
		}
		seen[label] = append(seen[label], idx)
	}

	for _, label := range order {
		if idx := seen[label]; len(idx) > 1 {
			errs = append(errs, &DuplicateLabelError{Label: label, Indexes: idx})
		}
	}

	return errors.Join(errs...)
}

// Save validates r and writes it to path atomically. Save is the only code
// path that writes the store file.
func Save(path string, r *Roadmap) error {
	if r == nil || strings.TrimSpace(r.Project) == "" {
		return errors.New("roadmap project is required")
	}
	if err := Validate(r.Items); err != nil {
		return err
	}

	if err := atomicfile.WriteFunc(path, 0, func(w io.Writer) error {
		return encode(w, r)
	}); err != nil {
		return fmt.Errorf("write roadmap %s: %w", path, err)
	}
	return nil
}

// Marshal renders r in the canonical store format. The output is stable:
// the same roadmap always produces the same bytes.
func Marshal(r *Roadmap) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(w io.Writer, r *Roadmap) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(documentNode(r)); err != nil {
		return fmt.Errorf("encode roadmap: %w", err)
	}
	return enc.Close()
}

func documentNode(r *Roadmap) *yaml.Node {
	items := &yaml.Node{Kind: yaml.SequenceNode}
	if len(r.Items) == 0 {
		items.Style = yaml.FlowStyle
	}
	for _, item := range r.Items {
		items.Content = append(items.Content, itemNode(item))
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			strNode("project"), strNode(r.Project),
			strNode("items"), items,
		},
	}
}

func itemNode(item Item) *yaml.Node {
	values := []string{
		item.Title,
		item.Label,
		item.Description,
		string(item.Kind),
		string(item.Layer),
		string(item.Priority),
		string(item.Status),
	}

	n := &yaml.Node{Kind: yaml.MappingNode}
	for i, v := range values {
		n.Content = append(n.Content, strNode(itemKeys[i]), strNode(v))
	}
	// Untagged so the date is written plain rather than quoted.
	n.Content = append(n.Content, strNode("start_date"), &yaml.Node{Kind: yaml.ScalarNode, Value: item.StartDate})
	return n
}

func strNode(v string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	if strings.Contains(v, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n
}

// Find returns the item with the given label.
func (r *Roadmap) Find(label string) (Item, bool) {
	if i := r.Index(label); i >= 0 {
		return r.Items[i], true
	}
	return Item{}, false
}

// Index returns the position of the item with the given label, or -1.
func (r *Roadmap) Index(label string) int {
	for i, item := range r.Items {
		if item.Label == label {
			return i
		}
	}
	return -1
}

// HasLabel reports whether any item uses label.
func (r *Roadmap) HasLabel(label string) bool {
	return r.Index(label) >= 0
}

// Add appends item, refusing a label that is already taken.
func (r *Roadmap) Add(item Item) error {
	if i := r.Index(item.Label); i >= 0 {
		return &DuplicateLabelError{Label: item.Label, Indexes: []int{i + 1, len(r.Items) + 1}}
	}
	r.Items = append(r.Items, item)
	return nil
}

// NewImportedItem builds an item for a board entry accepted into the store.
// Fields the board does not carry get conservative defaults.
func NewImportedItem(title, label, description string, status Status, startDate string) Item {
	if !status.Valid() {
		status = StatusPending
	}
	return Item{
		Title:       title,
		Label:       label,
		Description: description,
		Kind:        KindTask,
		Layer:       LayerBackend,
		Priority:    PriorityP3,
		Status:      status,
		StartDate:   startDate,
	}
}
