package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/wippyai/molecule/accessor"
	"github.com/wippyai/molecule/codec"
	"github.com/wippyai/molecule/schema"
	"github.com/wippyai/molecule/schema/witschema"
)

type cmdLayout struct {
	g *globals
}

func (*cmdLayout) help() *commandHelp {
	return &commandHelp{
		usage:   "layout [TYPE...]",
		summary: "Print layout and accessor facts for schema declarations",
	}
}

func (*cmdLayout) flags(*pflag.FlagSet) {}

func (cmd *cmdLayout) run(ctx context.Context, argv []string) int {
	s, err := cmd.g.loadSchema()
	if err != nil {
		return fail(err)
	}
	facts, err := accessor.DeriveAll(ctx, codec.NewCompiler(), s)
	if err != nil {
		return fail(err)
	}

	want := make(map[string]bool, len(argv))
	for _, name := range argv {
		if _, ok := s.Lookup(name); !ok {
			return fail(fmt.Errorf("type %q not declared", name))
		}
		want[name] = true
	}

	st := cmd.g.styles()
	for _, f := range facts {
		if len(want) > 0 && !want[f.Name] {
			continue
		}
		fmt.Print(formatFacts(f, st))
	}
	return 0
}

func formatFacts(f *accessor.Facts, st styles) string {
	var b strings.Builder
	b.WriteString(st.name.Render(f.Name))
	b.WriteString(" ")
	b.WriteString(st.kind.Render(f.Kind.String()))
	if f.Static {
		fmt.Fprintf(&b, " size=%d", f.Size)
	} else {
		b.WriteString(" dynamic")
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "  encode: %s(%s)\n", f.Encode.Variant, strings.Join(f.Encode.Params, ", "))
	checks := make([]string, len(f.Decode.Checks))
	for i, c := range f.Decode.Checks {
		checks[i] = string(c)
	}
	fmt.Fprintf(&b, "  decode: %s [%s]\n", f.Decode.Variant, strings.Join(checks, ", "))
	for _, c := range f.Union {
		fmt.Fprintf(&b, "  case %d => %s\n", c.ID, c.Type)
	}
	for _, a := range f.Accessors {
		fmt.Fprintf(&b, "  %s() %s", a.Name, a.Returns)
		if a.Range != "" {
			fmt.Fprintf(&b, " %s", a.Range)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

type cmdCheck struct {
	g          *globals
	typeName   string
	hexStr     string
	file       string
	compatible bool
	quiet      bool
}

func (*cmdCheck) help() *commandHelp {
	return &commandHelp{
		usage:   "check",
		summary: "Validate a buffer against a schema type",
	}
}

func (cmd *cmdCheck) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.typeName, "type", "t", "", "declaration to validate against")
	flags.StringVar(&cmd.hexStr, "hex", "", "buffer as hex")
	flags.StringVarP(&cmd.file, "file", "f", "", "buffer file")
	flags.BoolVarP(&cmd.compatible, "compatible", "c", false, "accept extra trailing table fields")
	flags.BoolVarP(&cmd.quiet, "quiet", "q", false, "only report failures")
}

func (cmd *cmdCheck) run(_ context.Context, _ []string) int {
	_, ct, err := cmd.g.compileType(cmd.typeName)
	if err != nil {
		return fail(err)
	}
	buf, err := readBuffer(cmd.hexStr, cmd.file)
	if err != nil {
		return fail(err)
	}

	st := cmd.g.styles()
	v, err := codec.Decode(ct, buf, cmd.compatible)
	if err != nil {
		fmt.Println(st.err.Render("invalid: " + err.Error()))
		return 2
	}
	if !cmd.quiet {
		fmt.Println(st.ok.Render("valid"))
		fmt.Print(tree(v, st))
	}
	return 0
}

type cmdDefault struct {
	g        *globals
	typeName string
	output   string
}

func (*cmdDefault) help() *commandHelp {
	return &commandHelp{
		usage:   "default",
		summary: "Print the default encoding of a schema type",
	}
}

func (cmd *cmdDefault) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.typeName, "type", "t", "", "declaration to encode")
	flags.StringVarP(&cmd.output, "output", "o", "", "write raw bytes to this file instead of printing hex")
}

func (cmd *cmdDefault) run(_ context.Context, _ []string) int {
	_, ct, err := cmd.g.compileType(cmd.typeName)
	if err != nil {
		return fail(err)
	}
	buf := codec.Default(ct)
	if cmd.output != "" {
		if err := os.WriteFile(cmd.output, buf, 0o644); err != nil {
			return fail(err)
		}
		return 0
	}
	fmt.Println(hex.EncodeToString(buf))
	return 0
}

type cmdWit struct {
	g         *globals
	namespace string
	output    string
}

func (*cmdWit) help() *commandHelp {
	return &commandHelp{
		usage:   "wit WIT_JSON",
		summary: "Convert a WIT package (JSON form) into an intermediate schema",
	}
}

func (cmd *cmdWit) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.namespace, "namespace", "n", "", "schema namespace (defaults to the file name)")
	flags.StringVarP(&cmd.output, "output", "o", "", "output file (defaults to stdout)")
}

func (cmd *cmdWit) run(_ context.Context, argv []string) int {
	if len(argv) != 1 {
		return fail(fmt.Errorf("usage: molc wit WIT_JSON"))
	}
	ns := cmd.namespace
	if ns == "" {
		ns = strings.TrimSuffix(strings.TrimSuffix(filepath.Base(argv[0]), ".json"), ".wit")
	}
	s, err := witschema.LoadFile(argv[0], ns)
	if err != nil {
		return fail(err)
	}
	out, err := schema.Marshal(s)
	if err != nil {
		return fail(err)
	}
	if cmd.output == "" {
		os.Stdout.Write(out)
		return 0
	}
	if err := os.WriteFile(cmd.output, out, 0o644); err != nil {
		return fail(err)
	}
	return 0
}

type cmdInspect struct {
	g          *globals
	typeName   string
	hexStr     string
	file       string
	compatible bool
}

func (*cmdInspect) help() *commandHelp {
	return &commandHelp{
		usage:   "inspect",
		summary: "Browse a buffer interactively",
	}
}

func (cmd *cmdInspect) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.typeName, "type", "t", "", "declaration to start with (optional)")
	flags.StringVar(&cmd.hexStr, "hex", "", "buffer as hex (optional)")
	flags.StringVarP(&cmd.file, "file", "f", "", "buffer file (optional)")
	flags.BoolVarP(&cmd.compatible, "compatible", "c", false, "accept extra trailing table fields")
}

func (cmd *cmdInspect) run(_ context.Context, _ []string) int {
	s, err := cmd.g.loadSchema()
	if err != nil {
		return fail(err)
	}
	var buf []byte
	if cmd.hexStr != "" || cmd.file != "" {
		if buf, err = readBuffer(cmd.hexStr, cmd.file); err != nil {
			return fail(err)
		}
	}
	m := newInspectModel(s, codec.NewCompiler(), cmd.g.styles(), cmd.compatible)
	if err := m.preselect(cmd.typeName, buf); err != nil {
		return fail(err)
	}
	if err := runInspect(m); err != nil {
		return fail(err)
	}
	return 0
}
