package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/molecule/codec"
)

type styles struct {
	title    lipgloss.Style
	name     lipgloss.Style
	kind     lipgloss.Style
	selected lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	help     lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		name: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98")),
		kind: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")),
		selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")),
		ok: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90")),
		err: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),
		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")),
	}
}

// readBuffer takes the buffer from --hex or --file.
func readBuffer(hexStr, path string) ([]byte, error) {
	switch {
	case hexStr != "" && path != "":
		return nil, fmt.Errorf("use either --hex or --file, not both")
	case hexStr != "":
		return parseHex(hexStr)
	case path != "":
		return os.ReadFile(path)
	default:
		return nil, fmt.Errorf("no buffer given, use --hex or --file")
	}
}

// parseHex accepts hex with an optional 0x prefix and any whitespace.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' {
			return -1
		}
		return r
	}, s)
	return hex.DecodeString(s)
}

// entry is one navigable child of a view.
type entry struct {
	label string
	view  codec.View
}

// maxEntries bounds how many vector items are listed.
const maxEntries = 256

func children(v codec.View) []entry {
	var out []entry
	t := v.Type()
	switch v.Kind() {
	case codec.KindStruct, codec.KindTable:
		for i, f := range t.Fields {
			if fv, ok := v.FieldAt(i); ok {
				out = append(out, entry{label: f.Name, view: fv})
			}
		}
	case codec.KindArray, codec.KindFixVec, codec.KindDynVec:
		if t.HasRawData() {
			return nil
		}
		for i, item := range v.All() {
			if i >= maxEntries {
				break
			}
			out = append(out, entry{label: "[" + strconv.Itoa(i) + "]", view: item})
		}
	case codec.KindUnion:
		if inner, ok := v.Inner(); ok {
			out = append(out, entry{label: "item " + strconv.FormatUint(uint64(v.ItemID()), 10), view: inner})
		}
	case codec.KindOption:
		if val, ok := v.Value(); ok {
			out = append(out, entry{label: "some", view: val})
		}
	}
	return out
}

// summary is a one-line description of a view.
func summary(v codec.View) string {
	t := v.Type()
	var b strings.Builder
	b.WriteString(t.Name)
	b.WriteString(" (")
	b.WriteString(t.Kind.String())

	switch v.Kind() {
	case codec.KindArray, codec.KindFixVec, codec.KindDynVec:
		fmt.Fprintf(&b, ", %d items", v.ItemCount())
	case codec.KindTable:
		fmt.Fprintf(&b, ", %d fields", v.FieldCount())
		if n := v.CountExtraFields(); n > 0 {
			fmt.Fprintf(&b, ", %d extra", n)
		}
	case codec.KindUnion:
		fmt.Fprintf(&b, ", item %d", v.ItemID())
	case codec.KindOption:
		if v.IsNone() {
			b.WriteString(", none")
		}
	}
	fmt.Fprintf(&b, ", %d bytes)", v.TotalSize())

	switch {
	case v.Kind() == codec.KindByte:
		fmt.Fprintf(&b, " = 0x%02x", v.Byte())
	case t.HasRawData():
		b.WriteString(" = ")
		b.WriteString(rawString(v.RawData()))
	}
	return b.String()
}

func rawString(raw []byte) string {
	const limit = 64
	if isPrintable(raw) && len(raw) > 0 {
		s := string(raw)
		if len(s) > limit {
			s = s[:limit] + "..."
		}
		return strconv.Quote(s)
	}
	h := hex.EncodeToString(raw)
	if len(h) > 2*limit {
		h = h[:2*limit] + "..."
	}
	return "0x" + h
}

func isPrintable(raw []byte) bool {
	for _, c := range raw {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

// tree renders v and all its children, indented.
func tree(v codec.View, st styles) string {
	var b strings.Builder
	var walk func(label string, v codec.View, depth int)
	walk = func(label string, v codec.View, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		if label != "" {
			b.WriteString(st.name.Render(label))
			b.WriteString(": ")
		}
		b.WriteString(summary(v))
		b.WriteByte('\n')
		for _, c := range children(v) {
			walk(c.label, c.view, depth+1)
		}
	}
	walk("", v, 0)
	return b.String()
}
