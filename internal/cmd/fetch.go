package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xoroz/yt-transcript/internal/artifact"
	"github.com/xoroz/yt-transcript/internal/config"
	"github.com/xoroz/yt-transcript/internal/core"
	"github.com/xoroz/yt-transcript/internal/core/gate"
	"github.com/xoroz/yt-transcript/internal/core/gateway"
	"github.com/xoroz/yt-transcript/internal/core/store"
	"github.com/xoroz/yt-transcript/internal/core/youtube"
	"github.com/xoroz/yt-transcript/internal/observability"
	"github.com/xoroz/yt-transcript/internal/output"
	"github.com/xoroz/yt-transcript/internal/videoid"
)

var (
	fetchLanguages []string
	fetchNoCache   bool
	fetchFormat    string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url-or-video-id>",
	Short: "Fetch one transcript from the command line",
	Long: `Fetch a transcript for a single video, using the same cache and
throttle as the server. Accepts a watch URL, a youtu.be link, a shorts or
embed URL, or a bare video id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Configuration invalid", err)
		}

		format, err := output.ParseFormat(fetchFormat)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Invalid output format", err)
		}

		vid, err := videoid.FromURL(args[0])
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Could not determine video id", err)
		}

		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Could not open transcript store", err)
		}
		defer func() {
			if err := st.Close(); err != nil {
				observability.CLILogger.Warn("Store close failed", zap.Error(err))
			}
		}()
		if err := st.Migrate(cmd.Context()); err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Could not migrate transcript store", err)
		}

		client, err := youtube.NewClient(youtube.Options{
			ProxyURL:  cfg.Fetch.ProxyURL,
			BaseURL:   cfg.Fetch.BaseURL,
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   cfg.Fetch.Timeout,
		})
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Could not build upstream client", err)
		}

		gw := gateway.New(st, client, gate.New(cfg.Throttle.MinInterval), zap.NewNop())
		gw.Artifacts = artifact.NewSink(cfg.Artifacts.Dir, zap.NewNop())

		languages := fetchLanguages
		if len(languages) == 0 {
			languages = cfg.Fetch.Languages
		}

		result, err := gw.Resolve(cmd.Context(), core.Request{
			VideoID:   vid,
			Languages: languages,
			NoCache:   fetchNoCache,
		})
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Could not fetch transcript", err)
		}

		rendered, err := output.NewFormatter(format).FormatResult(result)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Could not render transcript", err)
		}

		fmt.Println(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringSliceVarP(&fetchLanguages, "languages", "l", nil, "caption language preference order (default from config)")
	fetchCmd.Flags().BoolVar(&fetchNoCache, "no-cache", false, "bypass the cache and fetch from upstream")
	fetchCmd.Flags().StringVarP(&fetchFormat, "output", "o", "text", "output format: text, json, table, html")
}
