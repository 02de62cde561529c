package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/cryptoflow/internal/cache"
	"github.com/kovalyov-valentin/cryptoflow/internal/config"
	"github.com/kovalyov-valentin/cryptoflow/internal/fetcher"
	"github.com/kovalyov-valentin/cryptoflow/internal/notifier"
	"github.com/kovalyov-valentin/cryptoflow/internal/poster"
	"github.com/kovalyov-valentin/cryptoflow/internal/source"
	"github.com/kovalyov-valentin/cryptoflow/internal/storage"
	"github.com/kovalyov-valentin/cryptoflow/internal/summary"
	_ "github.com/lib/pq"
)

// app все зависимости процесса, собранные из конфига
type app struct {
	cfg config.Config

	registry *source.Registry
	cache    *cache.Cache
	fetcher  *fetcher.Fetcher
	notifier *notifier.Notifier

	// nil, если токен бота не задан
	botAPI *tgbotapi.BotAPI
	// Почему постинг не настроен, nil если все ок
	posterErr error

	db *sqlx.DB
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	// Инициализируем конвейер загрузки лент
	a.registry = source.NewRegistry(source.DefaultSources(), cfg.DisabledSources...)
	rss := source.NewRSSFetcher(
		a.registry,
		&http.Client{Timeout: cfg.HTTPTimeout},
		// Один лимит на все источники
		source.NewThrottle(cfg.RateLimitDelay),
		source.Config{
			ProxyURL:       cfg.ProxyURL,
			MaxItems:       cfg.MaxArticlesPerSource,
			FilterKeywords: cfg.FilterKeywords,
		},
	)
	a.cache = cache.New(rss, a.registry, cfg.CacheDuration)
	a.fetcher = fetcher.NewFetcher(a.cache, a.registry, cfg.MaxArticles, cfg.RefreshInterval)

	if cfg.TelegramBotToken != "" {
		botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			log.Printf("[ERROR] failed to create bot: %v", err)
		} else {
			a.botAPI = botAPI
		}
	}

	p, err := newPoster(cfg, a.botAPI)
	if err != nil {
		// Не фатально: лента работает, а /post-news ответит 500 с причиной
		log.Printf("[WARN] posting disabled: %v", err)
		a.posterErr = err
	}

	posted, schedule, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	a.notifier = notifier.New(
		a.fetcher,
		posted,
		schedule,
		p,
		summary.NewOpenAISummarizer(cfg.OpenAIKey, cfg.OpenAIPrompt),
		notifier.Config{
			SendInterval: cfg.PostInterval,
			AutoPost:     cfg.AutoPost,
		},
	)

	return a, nil
}

// newPoster выбирает соцсеть по post_target
func newPoster(cfg config.Config, botAPI *tgbotapi.BotAPI) (poster.Poster, error) {
	switch cfg.PostTarget {
	case "", "twitter":
		twitter, err := poster.NewTwitter(cfg.TwitterCredentials())
		if err != nil {
			return nil, err
		}
		return twitter, nil
	case "telegram":
		if botAPI == nil {
			return nil, fmt.Errorf("%w: telegram bot token", poster.ErrMissingCredentials)
		}

		telegram, err := poster.NewTelegram(botAPI, cfg.TelegramChannelID)
		if err != nil {
			return nil, err
		}
		return telegram, nil
	default:
		return nil, fmt.Errorf("unknown post target %q", cfg.PostTarget)
	}
}

// openStorage Postgres, если задан DSN, иначе память процесса
func (a *app) openStorage(ctx context.Context) (notifier.PostedStorage, notifier.ScheduleStorage, error) {
	if a.cfg.DatabaseDSN == "" {
		return storage.NewMemoryPostedStorage(), storage.NewMemoryScheduleStorage(), nil
	}

	// Инициализируем подключение к БД
	db, err := sqlx.ConnectContext(ctx, "postgres", a.cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := storage.Ensure(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	a.db = db

	return storage.NewPostgresPostedStorage(db), storage.NewPostgresScheduleStorage(db), nil
}

func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("[ERROR] failed to close database: %v", err)
		}
	}
}
