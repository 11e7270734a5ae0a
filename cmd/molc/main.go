package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/molecule/codec"
	"github.com/wippyai/molecule/schema"
	"github.com/wippyai/molecule/schema/witschema"
	"github.com/wippyai/molecule/wasmview"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
}

// globals holds the flags shared by every command.
type globals struct {
	schemaPath string
	color      string
	verbose    bool
}

func main() {
	ctx := context.Background()
	g := &globals{}

	molcCmd := &cobra.Command{
		Use:   "molc [options] COMMAND",
		Short: "Molecule schema compiler tools",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	molcCmd.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, molcCmd.UsageString())
		os.Exit(1)
		return nil
	}

	pf := molcCmd.PersistentFlags()
	pf.StringVarP(&g.schemaPath, "schema", "s", "", "schema file (intermediate YAML/JSON, or WIT JSON with a .wit.json suffix)")
	pf.StringVar(&g.color, "color", "auto", "colorize output: auto, always or never")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log debug output to stderr")

	commands := []command{
		&cmdLayout{g: g},
		&cmdCheck{g: g},
		&cmdDefault{g: g},
		&cmdWit{g: g},
		&cmdInspect{g: g},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			RunE: func(_ *cobra.Command, args []string) error {
				if err := g.setupLogging(); err != nil {
					return err
				}
				os.Exit(cmd.run(ctx, args))
				return nil
			},
		}
		molcCmd.AddCommand(cobraCmd)
		cmd.flags(cobraCmd.Flags())
	}

	if _, err := molcCmd.ExecuteC(); err != nil {
		os.Exit(1)
	}
}

func (g *globals) setupLogging() error {
	if !g.verbose {
		return nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	codec.SetLogger(logger)
	witschema.SetLogger(logger)
	wasmview.SetLogger(logger)
	return nil
}

// loadSchema reads the --schema file, choosing the front end by suffix.
func (g *globals) loadSchema() (*schema.Schema, error) {
	if g.schemaPath == "" {
		return nil, fmt.Errorf("no schema given, use --schema")
	}
	if strings.HasSuffix(g.schemaPath, ".wit.json") {
		ns := strings.TrimSuffix(filepath.Base(g.schemaPath), ".wit.json")
		return witschema.LoadFile(g.schemaPath, ns)
	}
	return schema.LoadFile(g.schemaPath)
}

// compileType loads the schema and compiles the named declaration.
func (g *globals) compileType(name string) (*schema.Schema, *codec.CompiledType, error) {
	s, err := g.loadSchema()
	if err != nil {
		return nil, nil, err
	}
	if name == "" {
		return nil, nil, fmt.Errorf("no type given, use --type")
	}
	ct, err := codec.NewCompiler().CompileNamed(s, name)
	if err != nil {
		return nil, nil, err
	}
	return s, ct, nil
}

func (g *globals) styles() styles {
	switch g.color {
	case "always":
		return newStyles(true)
	case "never":
		return newStyles(false)
	default:
		return newStyles(term.IsTerminal(int(os.Stdout.Fd())))
	}
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}
