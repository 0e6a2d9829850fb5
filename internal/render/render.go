// Package render prints decoded packet trees for people and tools.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/bitsctl/internal/protocol/packet"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("render: unknown format")

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Node is the serializable view of a packet.
type Node struct {
	Kind       string  `json:"kind" yaml:"kind"`
	Version    uint8   `json:"version" yaml:"version"`
	Type       uint8   `json:"type" yaml:"type"`
	Start      int     `json:"start" yaml:"start"`
	Size       int     `json:"size" yaml:"size"`
	Value      *uint64 `json:"value,omitempty" yaml:"value,omitempty"`
	Groups     int     `json:"groups,omitempty" yaml:"groups,omitempty"`
	LengthMode string  `json:"length_mode,omitempty" yaml:"length_mode,omitempty"`
	Declared   *int    `json:"declared,omitempty" yaml:"declared,omitempty"`
	Children   []Node  `json:"children,omitempty" yaml:"children,omitempty"`
}

// Tree converts p into its Node view.
func Tree(p packet.Packet) Node {
	h := p.Header()
	n := Node{
		Kind:    p.Kind().String(),
		Version: h.Version,
		Type:    h.Type,
		Start:   p.Pos(),
		Size:    p.Len(),
	}
	switch v := p.(type) {
	case *packet.Literal:
		value := v.Value
		n.Value = &value
		n.Groups = v.Groups
	case *packet.Operator:
		declared := v.Declared
		n.LengthMode = v.Mode.String()
		n.Declared = &declared
		n.Children = make([]Node, 0, len(v.Children))
		for _, child := range v.Children {
			n.Children = append(n.Children, Tree(child))
		}
	}
	return n
}

// Write renders p to w in format f.
func Write(w io.Writer, p packet.Packet, f Format) error {
	switch f {
	case FormatText, "":
		return writeText(w, p)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Tree(p))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Tree(p)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func textLengthMode(m packet.LengthMode) string {
	switch m {
	case packet.ModeTotalBits:
		return "SUBPACKETS_TOTAL_BITS"
	case packet.ModeCount:
		return "SUBPACKETS_COUNT"
	default:
		return strings.ToUpper(m.String())
	}
}

// writeText prints one block per packet in pre-order, indented four spaces
// per level.
func writeText(w io.Writer, p packet.Packet) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}
	packet.Walk(p, func(p packet.Packet, depth int) {
		indent := strings.Repeat(" ", depth*4)
		h := p.Header()
		printf("%sPacket version: %d, type: %d, size: %d\n", indent, h.Version, h.Type, p.Len())
		printf("%s- kind: %s\n", indent, strings.ToUpper(p.Kind().String()))
		switch v := p.(type) {
		case *packet.Literal:
			printf("%s- value: %d\n", indent, v.Value)
		case *packet.Operator:
			printf("%s- length type: %s\n", indent, textLengthMode(v.Mode))
			printf("%s- length: %d\n", indent, v.Declared)
		}
	})
	return err
}
