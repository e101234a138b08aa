package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dshills/msgspec/internal/config"
	"github.com/dshills/msgspec/internal/layout"
	"github.com/dshills/msgspec/internal/message"
	"github.com/dshills/msgspec/internal/store"
)

type layoutFlags struct {
	configPath string
	format     string
	out        string
}

func newLayoutCmd() *cobra.Command {
	var flags layoutFlags
	cmd := &cobra.Command{
		Use:   "layout <model-file>",
		Short: "Print the byte-offset table of a persisted model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "Run configuration file (for array repetition counts)")
	f.StringVar(&flags.format, "format", "text", "Output format: text or json")
	f.StringVar(&flags.out, "out", "", "Write output to file instead of stdout")
	return cmd
}

type tableDoc struct {
	Type        message.Type   `json:"type"`
	TotalLength int            `json:"totalLength"`
	Entries     []layout.Entry `json:"entries"`
}

func runLayout(modelPath string, flags layoutFlags) error {
	reps := layout.Repetitions{}
	if flags.configPath != "" {
		cfg, err := config.Load(flags.configPath)
		if err != nil {
			return codeError(2, "%s", err)
		}
		reps = layout.Repetitions(cfg.Layout.Repetitions)
	}

	m, err := store.Load(modelPath)
	if err != nil {
		return codeError(2, "%s", err)
	}

	table, err := layout.Build(m, reps)
	if err != nil {
		return codeError(2, "computing layout: %s", err)
	}
	if err := table.Validate(); err != nil {
		return codeError(2, "offset table failed its contiguity check: %s", err)
	}
	log.Debug().Int("entries", table.Len()).Int("bytes", table.TotalLength()).Msg("layout computed")

	var data []byte
	switch flags.format {
	case "json":
		doc := tableDoc{Type: m.Type, TotalLength: table.TotalLength(), Entries: table.Entries()}
		if data, err = json.MarshalIndent(doc, "", "  "); err != nil {
			return codeError(2, "rendering layout: %s", err)
		}
	case "text":
		data = []byte(formatTable(m, table))
	default:
		return codeError(2, "unknown format %q: supported formats are text, json", flags.format)
	}
	return writeOutput(flags.out, data)
}

// formatTable renders the aligned text view.
func formatTable(m *message.Model, t *layout.Table) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s: %d fields, %d bytes\n", m.Type, m.Name(), t.Len(), t.TotalLength())
	fmt.Fprintf(&sb, "%-8s %-8s %-4s %s\n", "START", "LENGTH", "OCC", "PATH")
	for _, e := range t.Entries() {
		fmt.Fprintf(&sb, "%-8d %-8d %-4d %s\n", e.Start, e.Length, e.Occurrence, e.Path)
	}
	return sb.String()
}
