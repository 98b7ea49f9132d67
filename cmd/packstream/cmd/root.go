package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/justicz/packstream/internal/config"
	"github.com/justicz/packstream/internal/logging"
)

// runtime is what PersistentPreRunE hands to every subcommand.
type runtime struct {
	cfg *config.Config
	log zerolog.Logger
}

type runtimeKey struct{}

func runtimeFrom(cmd *cobra.Command) *runtime {
	if rt, ok := cmd.Context().Value(runtimeKey{}).(*runtime); ok {
		return rt
	}
	return &runtime{cfg: config.Default(), log: zerolog.Nop()}
}

// NewRootCmd builds the command tree. Each call returns fresh flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "packstream",
		Short: "Encode, decode and inspect PackStream values",
		Long: `packstream converts between JSON and the PackStream binary format
used by graph database drivers, and walks encoded buffers value by value.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				loaded, err := config.Load(path)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				if _, ok := logging.ParseLevel(level); !ok {
					return fmt.Errorf("unknown log level %q", level)
				}
				cfg.Logging.Level = level
			}
			log := logging.New(cfg.Logging, cmd.ErrOrStderr())
			log.Debug().Str("command", cmd.Name()).Msg("starting")
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, &runtime{cfg: cfg, log: log}))
			return nil
		},
	}
	root.PersistentFlags().StringP("config", "c", "", "YAML or TOML config file")
	root.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error, off)")

	root.AddCommand(newEncodeCmd(), newDecodeCmd(), newInspectCmd())
	return root
}

// Execute runs the command tree against the process arguments.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// readInput reads --in or stdin, decoding hex text when asHex is set.
func readInput(cmd *cobra.Command, path string, asHex bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if !asHex {
		return data, nil
	}
	clean := strings.Join(strings.Fields(string(data)), "")
	out, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("input is not hex: %w", err)
	}
	return out, nil
}
