package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dshills/msgspec/internal/consist"
	"github.com/dshills/msgspec/internal/projection"
	"github.com/dshills/msgspec/internal/render"
	"github.com/dshills/msgspec/internal/store"
)

type checkFlags struct {
	wire     string
	business string
	api      string
	format   string
	out      string
}

func newCheckCmd() *cobra.Command {
	var flags checkFlags
	cmd := &cobra.Command{
		Use:   "check <model-file>",
		Short: "Cross-check artifact projections against the canonical model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.wire, "wire", "", "Wire-layout projection file (required)")
	f.StringVar(&flags.business, "business", "", "Business-object projection file (required)")
	f.StringVar(&flags.api, "api", "", "API-schema projection file (required)")
	f.StringVar(&flags.format, "format", "json", "Report format: json or md")
	f.StringVar(&flags.out, "out", "", "Write the report to a file instead of stdout")
	return cmd
}

func runCheck(modelPath string, flags checkFlags) error {
	m, err := store.Load(modelPath)
	if err != nil {
		return codeError(2, "%s", err)
	}

	inputs := []struct {
		flag string
		path string
		want projection.Artifact
	}{
		{"--wire", flags.wire, projection.ArtifactWire},
		{"--business", flags.business, projection.ArtifactBusiness},
		{"--api", flags.api, projection.ArtifactAPI},
	}
	sets := make([]projection.Set, 0, len(inputs))
	for _, in := range inputs {
		if in.path == "" {
			return codeError(2, "missing %s projection file", in.flag)
		}
		set, err := projection.Load(in.path)
		if err != nil {
			return codeError(2, "%s", err)
		}
		if set.Artifact != in.want {
			return codeError(2, "projection file %q is tagged %q, want %q for %s", in.path, set.Artifact, in.want, in.flag)
		}
		sets = append(sets, set)
	}
	log.Debug().Str("model", m.Name()).Int("artifacts", len(sets)).Msg("checking consistency")

	res := consist.Run(m, sets)

	envelope := render.FromResult(toolName, version, "check", modelPath, res, nil)
	renderer, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(2, "invalid format: %s", err)
	}
	data, err := renderer.Render(envelope)
	if err != nil {
		return codeError(2, "rendering report: %s", err)
	}
	if err := writeOutput(flags.out, data); err != nil {
		return err
	}

	if errs, _ := res.Counts(); errs > 0 {
		return codeError(1, "consistency check reported %d error(s)", errs)
	}
	return nil
}
