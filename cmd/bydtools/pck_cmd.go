package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SherkeyXD/BydTools-sub000/internal/logging"
	"github.com/SherkeyXD/BydTools-sub000/internal/namemap"
	"github.com/SherkeyXD/BydTools-sub000/internal/pck"
)

func newPCKCommand() *cobra.Command {
	var (
		input       string
		output      string
		mode        string
		jsonMap     string
		verbose     bool
		saveUnknown bool
	)

	cmd := &cobra.Command{
		Use:   "pck",
		Short: "Extract files from a Wwise PCK (AKPK) audio archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return invalid(cmd, "--input is required")
			}
			if output == "" {
				return invalid(cmd, "--output is required")
			}

			pckMode, err := parsePCKMode(mode)
			if err != nil {
				return invalid(cmd, err.Error())
			}

			log := logging.New(cmd.OutOrStdout(), verbose)

			raw, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("reading %s: %w", input, err)
			}

			var mapper *namemap.Catalog
			if jsonMap != "" {
				mapBytes, err := os.ReadFile(jsonMap)
				if err != nil {
					return fmt.Errorf("reading name map %s: %w", jsonMap, err)
				}
				mapper, err = namemap.Parse(mapBytes)
				if err != nil {
					return fmt.Errorf("parsing name map %s: %w", jsonMap, err)
				}
			}

			header, err := pck.ParseHeader(raw)
			if err != nil {
				return fmt.Errorf("parsing PCK header: %w", err)
			}

			log.Info("starting pck extraction", "input", input, "output", output, "mode", mode,
				"banks", len(header.Banks), "sounds", len(header.Sounds), "externals", len(header.Externals))

			if err := os.MkdirAll(output, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			extractor := pck.Extractor{Mapper: mapper, Mode: pckMode, SaveUnknown: saveUnknown}
			tally := extractor.ExtractAll(pck.ByteSource(raw), header, output, log)

			fmt.Fprintln(cmd.OutOrStdout(), tally.Line())
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "PCK archive file (required)")
	cmd.Flags().StringVar(&output, "output", "", "output directory (required)")
	cmd.Flags().StringVar(&mode, "mode", "decoded", "raw|decoded: whether BNK-embedded WEMs are expanded")
	cmd.Flags().StringVar(&jsonMap, "json", "", "optional ESFM name-map catalogue file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	cmd.Flags().BoolVar(&saveUnknown, "save-unknown", false, "also save entries with an unrecognized magic as <fileId>.unknown")

	return cmd
}

func parsePCKMode(mode string) (pck.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "decoded":
		return pck.ModeDecoded, nil
	case "raw":
		return pck.ModeRaw, nil
	default:
		return 0, fmt.Errorf("unknown --mode %q, expected raw or decoded", mode)
	}
}
