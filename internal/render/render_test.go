package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/bitsctl/internal/protocol/packet"
	"gopkg.in/yaml.v3"
)

func decode(t *testing.T, hex string) packet.Packet {
	t.Helper()
	p, err := packet.Decode(hex)
	if err != nil {
		t.Fatalf("decode %s: %v", hex, err)
	}
	return p
}

func TestWriteTextIndentsChildren(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, decode(t, "38006F45291200"), FormatText); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := strings.Join([]string{
		"Packet version: 1, type: 6, size: 49",
		"- kind: OPERATOR",
		"- length type: SUBPACKETS_TOTAL_BITS",
		"- length: 27",
		"    Packet version: 6, type: 4, size: 11",
		"    - kind: LITERAL",
		"    - value: 10",
		"    Packet version: 2, type: 4, size: 16",
		"    - kind: LITERAL",
		"    - value: 20",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected text output:\n%s", buf.String())
	}
}

func TestWriteJSONTree(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, decode(t, "EE00D40C823060"), FormatJSON); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got Node
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != "operator" || got.LengthMode != "count" || got.Declared == nil || *got.Declared != 3 {
		t.Fatalf("unexpected root: %+v", got)
	}
	if len(got.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(got.Children))
	}
	for i, child := range got.Children {
		if child.Value == nil || *child.Value != uint64(i+1) {
			t.Fatalf("child %d: unexpected value %+v", i, child.Value)
		}
	}
}

func TestWriteYAMLKeepsZeroValue(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, packet.NewLiteral(3, 0), FormatYAML); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got Node
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Value == nil || *got.Value != 0 {
		t.Fatalf("expected explicit zero value, got %+v", got.Value)
	}
	if got.Groups != 1 || got.Size != 11 || got.Version != 3 {
		t.Fatalf("unexpected literal node: %+v", got)
	}
}

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]Format{"": FormatText, "TEXT": FormatText, " json ": FormatJSON, "yaml": FormatYAML} {
		got, err := ParseFormat(raw)
		if err != nil || got != want {
			t.Fatalf("parse %q: got %q err=%v", raw, got, err)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if err := Write(&bytes.Buffer{}, packet.NewLiteral(0, 1), Format("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat from Write, got %v", err)
	}
}

func TestWriteTextCountModeLabel(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, decode(t, "EE00D40C823060"), FormatText); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "- length type: SUBPACKETS_COUNT\n- length: 3\n") {
		t.Fatalf("unexpected text output:\n%s", buf.String())
	}
}
