package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/matzehuels/callscope/pkg/errors"
	"github.com/matzehuels/callscope/pkg/graph"
)

// Format names a graph document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	if err := apperrors.ValidateGraphPath(path); err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON, nil
	}
	return FormatYAML, nil
}

// Document is a decoded graph file.
type Document struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Node is one entry of the "nodes" array.
type Node struct {
	ID         string `json:"id" yaml:"id"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
	SourceFile string `json:"sourceFile,omitempty" yaml:"sourceFile,omitempty"`
	SourceLine int    `json:"sourceLine,omitempty" yaml:"sourceLine,omitempty"`
}

// Edge is one entry of the "edges" array.
type Edge struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Graph converts the document into the input of graph.Load.
func (d *Document) Graph() ([]graph.Node, []graph.Edge) {
	nodes := make([]graph.Node, len(d.Nodes))
	for i, n := range d.Nodes {
		nodes[i] = graph.Node{ID: n.ID, Label: n.Label, SourceFile: n.SourceFile, SourceLine: n.SourceLine}
	}
	edges := make([]graph.Edge, len(d.Edges))
	for i, e := range d.Edges {
		edges[i] = graph.Edge{ID: e.ID, From: e.From, To: e.To}
	}
	return nodes, edges
}

// ReadJSON decodes a JSON graph document from r. Unknown fields are
// rejected. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode JSON graph")
	}
	if err := doc.check(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadYAML decodes a YAML graph document from r. Unknown fields are
// rejected. ReadYAML does not close r.
func ReadYAML(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode YAML graph")
	}
	if err := doc.check(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Read decodes a graph document in the given format.
func Read(r io.Reader, format Format) (*Document, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported graph format %q", format)
	}
}

// Import reads the graph file at path, picking the decoder from the file
// extension (.json, .yaml or .yml).
func Import(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "graph file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// check validates the document shape: required fields must be present.
func (d *Document) check() error {
	for i, n := range d.Nodes {
		if n.ID == "" {
			return apperrors.New(apperrors.ErrCodeInvalidFormat, "nodes[%d]: missing id", i)
		}
		if n.SourceLine < 0 {
			return apperrors.New(apperrors.ErrCodeInvalidFormat, "nodes[%d]: negative sourceLine %d", i, n.SourceLine)
		}
	}
	for i, e := range d.Edges {
		if e.From == "" || e.To == "" {
			return apperrors.New(apperrors.ErrCodeInvalidFormat, "edges[%d]: from and to are required", i)
		}
	}
	return nil
}
