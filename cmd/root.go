package cmd

import (
	"fmt"
	"os"

	"github.com/ValtisD/CardiacStockTracker-sub001/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "stock-tracker",
	Short: "Cardiac Stock Tracker Service",
	Long: `Cardiac Stock Tracker keeps field inventory honest.
It records GS1 barcode scans, runs stock count sessions against the
recorded inventory, and reconciles the differences.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format and debug level so CLI errors come out readable
		// with ISO8601 timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
