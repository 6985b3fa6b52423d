package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SherkeyXD/BydTools-sub000/internal/config"
	"github.com/SherkeyXD/BydTools-sub000/internal/logging"
	"github.com/SherkeyXD/BydTools-sub000/internal/postproc"
	"github.com/SherkeyXD/BydTools-sub000/internal/summary"
	"github.com/SherkeyXD/BydTools-sub000/internal/vfs"
)

func newVFSCommand() *cobra.Command {
	var (
		input     string
		output    string
		blocktype string
		keyB64    string
		debug     bool
		verbose   bool
		cfgPath   string
	)

	cmd := &cobra.Command{
		Use:   "vfs",
		Short: "Extract files from a VFS block-container tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return invalid(cmd, "--input is required")
			}
			if output == "" {
				return invalid(cmd, "--output is required")
			}
			if blocktype == "" && !debug {
				return invalid(cmd, "--blocktype is required unless --debug is set")
			}

			settings, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			key, err := resolveKey(settings, keyB64)
			if err != nil {
				return err
			}

			root := filepath.Join(input, "VFS")
			log := logging.New(cmd.OutOrStdout(), verbose)
			log.Info("starting vfs dispatch", "input", root, "output", output, "debug", debug)

			if debug {
				return runVFSDebug(cmd, root, key)
			}
			return runVFSExtract(cmd, root, output, blocktype, key, settings, log)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "directory containing a VFS subdirectory (required)")
	cmd.Flags().StringVar(&output, "output", "", "output directory (required)")
	cmd.Flags().StringVar(&blocktype, "blocktype", "", "comma-separated block type name(s) or number(s)")
	cmd.Flags().StringVar(&keyB64, "key", "", "base64(32 bytes) ChaCha20 key override")
	cmd.Flags().BoolVar(&debug, "debug", false, "enumerate and describe all present blocks; no extraction")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	cmd.Flags().StringVar(&cfgPath, "config", "", "optional settings JSON file")

	return cmd
}

func runVFSDebug(cmd *cobra.Command, root string, key [32]byte) error {
	for _, s := range vfs.Describe(root, key) {
		switch {
		case !s.Present:
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-10s absent\n", s.BlockType.Name(), s.Hash)
		case s.Err != nil:
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-10s error: %v\n", s.BlockType.Name(), s.Hash, s.Err)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-10s chunks=%d files=%d group=%s\n",
				s.BlockType.Name(), s.Hash, s.ChunkCount, s.FileCount, s.GroupCfgName)
		}
	}
	return nil
}

func runVFSExtract(cmd *cobra.Command, root, output, blocktype string, key [32]byte, settings config.Settings, log logging.Logger) error {
	masterKey, err := settings.ScriptMasterKey()
	if err != nil {
		return err
	}

	pipeline := postproc.New()
	pipeline.Register(config.Table, postproc.TableProcessor{})
	pipeline.Register(config.Video, postproc.VideoProcessor{})
	pipeline.Register(config.Lua, postproc.LuaProcessor{MasterKey: masterKey})

	dispatcher := vfs.NewDispatcher(root, output, key, pipeline, log)

	var total summary.Tally
	for _, raw := range strings.Split(blocktype, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		bt, ok := config.BlockTypeByName(name)
		if !ok {
			return fmt.Errorf("unknown block type %q", name)
		}
		log.Info("dispatching block", "blockType", bt.Name())
		tally, err := dispatcher.Dispatch(bt)
		if err != nil {
			return fmt.Errorf("dispatching %s: %w", bt.Name(), err)
		}
		total.Extracted += tally.Extracted
		total.Raw += tally.Raw
		total.Failed += tally.Failed
	}

	fmt.Fprintln(cmd.OutOrStdout(), total.Line())
	return nil
}

func resolveKey(settings config.Settings, override string) ([32]byte, error) {
	if override != "" {
		return config.DecodeKey(override)
	}
	return settings.ChaCha20Key()
}
