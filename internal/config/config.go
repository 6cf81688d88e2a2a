package config

import (
	"context"
	"sync"

	"github.com/iamwavecut/tool"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	SetupModeDialog = "dialog"
	SetupModeStart  = "start"
)

type Config struct {
	TelegramAPIToken string `env:"BOT_TOKEN"`
	PlaceholderToken string `env:"PLACEHOLDER_TOKEN,default=123:abc"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	OpenAIToken      string `env:"OPENAI_TOKEN"`
	PhraseProvider   string `env:"PHRASE_PROVIDER,default=gemini"`
	GeminiModel      string `env:"GEMINI_MODEL,default=gemini-2.5-flash"`
	OpenAIModel      string `env:"OPENAI_MODEL,default=gpt-3.5-turbo"`
	SetupMode        string `env:"SETUP_MODE,default=dialog"`
	ConfigFile       string `env:"CONFIG_FILE,default=config.json"`
	ScheduleTime     string `env:"SCHEDULE_TIME,default=04:00"`
	ProxyURL         string `env:"PROXY_URL"`
	DefaultLanguage  string `env:"BOT_LANG,default=ru"`
	LogLevel         string `env:"LOG_LEVEL,default=info"`
}

// APIKey picks the environment key matching the configured phrase provider.
func (c Config) APIKey() string {
	if c.PhraseProvider == "openai" {
		return c.OpenAIToken
	}
	return c.GeminiAPIKey
}

// Model picks the model name matching the configured phrase provider.
func (c Config) Model() string {
	if c.PhraseProvider == "openai" {
		return c.OpenAIModel
	}
	return c.GeminiModel
}

var once sync.Once
var globalConfig = &Config{}

func Get() Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg := &Config{}
		tool.Must(envconfig.ProcessWith(context.Background(), cfg, envconfig.OsLookuper()))
		globalConfig = cfg
	})
	return *globalConfig
}
