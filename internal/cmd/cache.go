package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xoroz/yt-transcript/internal/config"
	"github.com/xoroz/yt-transcript/internal/core/store"
	"github.com/xoroz/yt-transcript/internal/observability"
	"github.com/xoroz/yt-transcript/internal/videoid"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the transcript cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := openStoreOrExit(cmd)
		defer st.Close()

		count, err := st.CountTranscripts(cmd.Context())
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Could not count transcripts", err)
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRow(table.Row{"Driver", st.Driver()})
		t.AppendRow(table.Row{"Transcripts", count})
		fmt.Println(t.Render())
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge <url-or-video-id>",
	Short: "Remove one transcript from the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vid, err := videoid.FromURL(args[0])
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Could not determine video id", err)
		}

		st := openStoreOrExit(cmd)
		defer st.Close()

		if err := st.DeleteTranscript(cmd.Context(), vid); err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Could not purge transcript", err)
		}

		fmt.Printf("purged %s\n", vid)
		return nil
	},
}

func openStoreOrExit(cmd *cobra.Command) *store.Store {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Configuration invalid", err)
	}

	st, err := store.Open(cmd.Context(), cfg.Store)
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Could not open transcript store", err)
	}
	if err := st.Migrate(cmd.Context()); err != nil {
		_ = st.Close()
		ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Could not migrate transcript store", err)
	}
	return st
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
}
