package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dshills/msgspec/internal/config"
	"github.com/dshills/msgspec/internal/layout"
	"github.com/dshills/msgspec/internal/redact"
	"github.com/dshills/msgspec/internal/render"
	"github.com/dshills/msgspec/internal/store"
	"github.com/dshills/msgspec/internal/verify"
)

type verifyFlags struct {
	configPath string
	payload    string
	format     string
	out        string
	redactOut  bool
}

func newVerifyCmd() *cobra.Command {
	var flags verifyFlags
	cmd := &cobra.Command{
		Use:   "verify <model-file>",
		Short: "Check a payload against a model's offsets and value rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args[0], flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "msgspec.toml", "Run configuration file")
	f.StringVar(&flags.payload, "payload", "", "Payload file (overrides the run config)")
	f.StringVar(&flags.format, "format", "json", "Report format: json or md")
	f.StringVar(&flags.out, "out", "", "Write the report to a file instead of stdout")
	f.BoolVar(&flags.redactOut, "redact", false, "Mask payload-derived values in the report")
	return cmd
}

func runVerify(modelPath string, flags verifyFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return codeError(2, "%s", err)
	}

	payloadPath := cfg.Verify.Payload
	if flags.payload != "" {
		payloadPath = flags.payload
	}
	if payloadPath == "" {
		return codeError(2, "no payload file: set verify.payload in %s or pass --payload", flags.configPath)
	}

	conv, err := verify.Get(cfg.Verify.Convention)
	if err != nil {
		return codeError(2, "%s", err)
	}

	m, err := store.Load(modelPath)
	if err != nil {
		return codeError(2, "%s", err)
	}
	table, err := layout.Build(m, layout.Repetitions(cfg.Layout.Repetitions))
	if err != nil {
		return codeError(2, "computing layout: %s", err)
	}

	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		return codeError(2, "loading payload %q: %s", payloadPath, err)
	}
	log.Debug().Int("bytes", len(payload)).Int("fields", table.Len()).Msg("verifying payload")

	opts := verify.Options{
		Overrides:  cfg.Verify.Overrides,
		Convention: conv,
	}
	if len(cfg.Verify.Resolver) > 0 {
		opts.Resolver = verify.MapResolver(cfg.Verify.Resolver)
	}
	res := verify.Run(m, table, payload, opts)

	envelope := render.FromResult(toolName, version, "verify", payloadPath, res, nil)
	if flags.redactOut || cfg.Verify.Redact {
		envelope.Issues = redact.MaskIssues(envelope.Issues)
	}
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
		return codeError(1, "verification reported %d error(s)", errs)
	}
	return nil
}
