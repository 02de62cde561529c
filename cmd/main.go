package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/kovalyov-valentin/cryptoflow/internal/api"
	"github.com/kovalyov-valentin/cryptoflow/internal/bot"
	"github.com/kovalyov-valentin/cryptoflow/internal/bot/middleware"
	"github.com/kovalyov-valentin/cryptoflow/internal/botkit"
	"github.com/kovalyov-valentin/cryptoflow/internal/config"
	"github.com/kovalyov-valentin/cryptoflow/internal/fetcher"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func main() {
	//Graceful Shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		log.Printf("[ERROR] %v", err)
		cancel()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cryptoflow",
		Short:         "Crypto news aggregator and poster",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd(), fetchCmd(), postCmd())

	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, background refresh, posting job and telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, config.Get())
			if err != nil {
				return err
			}
			defer a.Close()

			var wg sync.WaitGroup
			run := func(name string, start func(context.Context) error) {
				wg.Add(1)
				go func() {
					defer wg.Done()

					if err := start(ctx); err != nil {
						if !errors.Is(err, context.Canceled) {
							log.Printf("[ERROR] %s stopped: %v", name, err)
							return
						}

						log.Printf("%s stopped", name)
					}
				}()
			}

			// Воркер автообновления лент
			if a.cfg.AutoRefresh {
				run("fetcher", a.fetcher.Start)
			}

			// Воркер публикаций: запланированные посты и автопостинг
			run("notifier", a.notifier.Start)

			if a.botAPI != nil {
				run("bot", newBot(a).Run)
			}

			server := api.New(a.fetcher, a.cache, a.registry, a.notifier, api.Config{
				Addr:           a.cfg.HTTPAddr,
				PostRate:       rate.Every(10 * time.Second),
				PostBurst:      3,
				CredentialsErr: a.posterErr,
			})

			err = server.Start(ctx)
			wg.Wait()

			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			return nil
		},
	}
}

// newBot команды телеграм бота, админские обернуты в middleware
func newBot(a *app) *botkit.Bot {
	channelID := a.cfg.TelegramChannelID

	newsBot := botkit.New(a.botAPI)
	newsBot.RegisterCmdView("start", bot.ViewCmdStart())
	newsBot.RegisterCmdView("listsources", bot.ViewCmdListSources(a.registry, a.cache))
	newsBot.RegisterCmdView("latest", bot.ViewCmdLatest(a.fetcher))
	newsBot.RegisterCmdView("refresh", middleware.AdminOnly(channelID, bot.ViewCmdRefresh(a.fetcher)))
	newsBot.RegisterCmdView("post", middleware.AdminOnly(channelID, bot.ViewCmdPost(a.notifier)))

	log.Printf("[INFO] bot commands: %s", strings.Join(newsBot.Commands(), ", "))

	return newsBot
}

func fetchCmd() *cobra.Command {
	var (
		sources []string
		refresh bool
		flt     fetcher.Filter
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the aggregated feed once and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), config.Get())
			if err != nil {
				return err
			}
			defer a.Close()

			articles, err := a.fetcher.FetchAll(cmd.Context(), sources, !refresh)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(map[string]any{"articles": flt.Apply(articles)})
		},
	}

	cmd.Flags().StringSliceVar(&sources, "sources", nil, "source ids, all active sources when empty")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore accumulated cache")
	cmd.Flags().StringVar(&flt.Sentiment, "sentiment", "", "bullish, bearish or neutral")
	cmd.Flags().StringVarP(&flt.Query, "query", "q", "", "search in titles and keywords")

	return cmd
}

func postCmd() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post the freshest unposted article (or a digest when --language is set)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), config.Get())
			if err != nil {
				return err
			}
			defer a.Close()

			if a.posterErr != nil {
				return a.posterErr
			}

			result, err := a.notifier.Post(cmd.Context(), language)
			if err != nil {
				return err
			}

			log.Printf("[INFO] %s", result.Message)

			return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "digest language (en, fr), single article when empty")

	return cmd
}
