package bt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoRoot          = errors.New("document has no root node")
	ErrUnreachableNode = errors.New("document node not reachable from root")
)

// Document describes a tree in JSON or YAML as a flat set of named nodes.
//
//	root: Root
//	nodes:
//	  Root:     {type: Sequence, children: [GoInside]}
//	  GoInside: {type: MoveTo, params: {mover: Knight, where: Entrance}}
type Document struct {
	Root  string                  `json:"root" yaml:"root"`
	Nodes map[string]DocumentNode `json:"nodes" yaml:"nodes"`
}

type DocumentNode struct {
	Type     string            `json:"type" yaml:"type"`
	Children []string          `json:"children,omitempty" yaml:"children,omitempty"`
	Params   map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// LoadJSON loads a document from a JSON reader.
func LoadJSON(r io.Reader) (*Document, error) {
	var d Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode tree document: %w", err)
	}
	return &d, nil
}

// LoadYAML loads a document from a YAML reader.
func LoadYAML(r io.Reader) (*Document, error) {
	var d Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode tree document: %w", err)
	}
	return &d, nil
}

// WriteYAML encodes the document.
func (d *Document) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

// Build constructs the tree through New, SetField and AppendChild. Every
// node name may be used once; sharing a node between parents or looping
// back to an ancestor is a StructuralError. Nodes the root never reaches
// are rejected with ErrUnreachableNode.
func (d *Document) Build() (Task, error) {
	if d == nil || d.Root == "" {
		return nil, ErrNoRoot
	}

	const (
		building = iota + 1
		built
	)
	state := make(map[string]int, len(d.Nodes))

	var buildNode func(name string) (Task, error)
	buildNode = func(name string) (Task, error) {
		switch state[name] {
		case building:
			return nil, &StructuralError{Value: name, Err: ErrCycle}
		case built:
			return nil, &StructuralError{Value: name, Err: fmt.Errorf("%w: node used by more than one parent", ErrCycle)}
		}
		nc, ok := d.Nodes[name]
		if !ok {
			return nil, fmt.Errorf("unknown node in document: %s", name)
		}
		state[name] = building

		kind, err := ParseKind(nc.Type)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", name, err)
		}
		node, err := New(kind)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", name, err)
		}

		// sorted so the first reported error does not depend on map order
		fields := make([]string, 0, len(nc.Params))
		for f := range nc.Params {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			if err := SetField(node, f, nc.Params[f]); err != nil {
				return nil, fmt.Errorf("node %s: %w", name, err)
			}
		}

		for _, chname := range nc.Children {
			ch, err := buildNode(chname)
			if err != nil {
				return nil, err
			}
			if err := AppendChild(node, ch); err != nil {
				return nil, fmt.Errorf("node %s: %w", name, err)
			}
		}

		state[name] = built
		return node, nil
	}

	root, err := buildNode(d.Root)
	if err != nil {
		return nil, err
	}
	if len(state) < len(d.Nodes) {
		var orphans []string
		for name := range d.Nodes {
			if state[name] != built {
				orphans = append(orphans, name)
			}
		}
		sort.Strings(orphans)
		return nil, fmt.Errorf("%w: %s", ErrUnreachableNode, strings.Join(orphans, ", "))
	}
	return root, nil
}

// Export describes a tree as a Document. Nodes are named by kind and
// pre-order position, e.g. "Selector_0", "MoveTo_3".
func Export(root Task) *Document {
	d := &Document{Nodes: make(map[string]DocumentNode)}
	if root == nil {
		return d
	}

	index := 0
	var export func(n Task) string
	export = func(n Task) string {
		name := fmt.Sprintf("%s_%d", n.Kind(), index)
		index++
		dn := DocumentNode{Type: n.Kind().String(), Params: FieldValues(n)}
		if comp, ok := n.(Composite); ok {
			for _, ch := range comp.Children() {
				dn.Children = append(dn.Children, export(ch))
			}
		}
		d.Nodes[name] = dn
		return name
	}
	d.Root = export(root)
	return d
}
