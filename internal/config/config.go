package config

import (
	"log"
	"sync"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
	"github.com/kovalyov-valentin/cryptoflow/internal/poster"
)

// Хранить в файле мы будем в формате hcl.
// Также указываем ключ для переменных окружения
type Config struct {
	// Пустая строка отключает проксирование лент
	ProxyURL             string        `hcl:"proxy_url" env:"PROXY_URL" default:"https://api.allorigins.win/raw?url="`
	CacheDuration        time.Duration `hcl:"cache_duration" env:"CACHE_DURATION" default:"15m"`
	MaxArticlesPerSource int           `hcl:"max_articles_per_source" env:"MAX_ARTICLES_PER_SOURCE" default:"10"`
	MaxArticles          int           `hcl:"max_articles" env:"MAX_ARTICLES" default:"50"`
	RateLimitDelay       time.Duration `hcl:"rate_limit_delay" env:"RATE_LIMIT_DELAY" default:"1s"`
	AutoRefresh          bool          `hcl:"auto_refresh" env:"AUTO_REFRESH" default:"true"`
	RefreshInterval      time.Duration `hcl:"refresh_interval" env:"REFRESH_INTERVAL" default:"30m"`
	DisabledSources      []string      `hcl:"disabled_sources" env:"DISABLED_SOURCES"`
	FilterKeywords       []string      `hcl:"filter_keywords" env:"FILTER_KEYWORDS"`

	HTTPAddr    string        `hcl:"http_addr" env:"HTTP_ADDR" default:":8080"`
	HTTPTimeout time.Duration `hcl:"http_timeout" env:"HTTP_TIMEOUT" default:"20s"`

	// twitter или telegram
	PostTarget   string        `hcl:"post_target" env:"POST_TARGET" default:"twitter"`
	AutoPost     bool          `hcl:"auto_post" env:"AUTO_POST" default:"false"`
	PostInterval time.Duration `hcl:"post_interval" env:"POST_INTERVAL" default:"1h"`

	TwitterAPIKey       string `hcl:"twitter_api_key" env:"TWITTER_API_KEY"`
	TwitterAPISecret    string `hcl:"twitter_api_secret" env:"TWITTER_API_SECRET"`
	TwitterAccessToken  string `hcl:"twitter_access_token" env:"TWITTER_ACCESS_TOKEN"`
	TwitterAccessSecret string `hcl:"twitter_access_secret" env:"TWITTER_ACCESS_SECRET"`

	TelegramBotToken  string `hcl:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChannelID int64  `hcl:"telegram_channel_id" env:"TELEGRAM_CHANNEL_ID"`

	OpenAIKey    string `hcl:"openai_key" env:"OPENAI_KEY"`
	OpenAIPrompt string `hcl:"openai_prompt" env:"OPENAI_PROMPT"`

	// Пусто - все хранится в памяти процесса
	DatabaseDSN string `hcl:"database_dsn" env:"DATABASE_DSN"`
}

func (c Config) TwitterCredentials() poster.TwitterCredentials {
	return poster.TwitterCredentials{
		APIKey:       c.TwitterAPIKey,
		APISecret:    c.TwitterAPISecret,
		AccessToken:  c.TwitterAccessToken,
		AccessSecret: c.TwitterAccessSecret,
	}
}

// DefaultFiles где ищем конфиги
var DefaultFiles = []string{"./config.hcl", "./config.local.hcl"}

// cfg - инстанс конфига, в который мы будем читать данные.
// once гарантирует, что чтение выполнится не более одного раза, из какого бы места его ни дернули
var (
	cfg  Config
	once sync.Once
)

// Load читает конфиг из файлов и окружения с префиксом CFW.
// Флаги пропускаем, ими владеет cobra.
func Load(files ...string) (Config, error) {
	var c Config

	loader := aconfig.LoaderFor(&c, aconfig.Config{
		EnvPrefix: "CFW",
		SkipFlags: true,
		// Берется первый найденный файл, если файлов нет то дефолты и окружение
		Files: files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})

	if err := loader.Load(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Метод get, который возвращает конфиг
func Get() Config {
	once.Do(func() {
		var err error
		if cfg, err = Load(DefaultFiles...); err != nil {
			log.Printf("[ERROR] failed to load config: %v", err)
		}
	})

	return cfg
}
