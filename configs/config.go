package configs

import (
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config struct
type Config struct {
	App     `mapstructure:"app"`
	LLM     `mapstructure:"llm"`
	Crawler `mapstructure:"crawler"`
	Cache   `mapstructure:"cache"`
	Session `mapstructure:"session"`
}

// App struct
type App struct {
	Debug bool   `mapstructure:"debug"`
	Env   string `mapstructure:"env"`
	Port  string `mapstructure:"port"`
}

// LLM struct - OpenAI-compatible chat-completions endpoint settings
type LLM struct {
	BaseURL      string `mapstructure:"base_url"`
	Model        string `mapstructure:"model"`
	Timeout      int    `mapstructure:"timeout"` // seconds
	SystemPrompt string `mapstructure:"system_prompt"`
}

// Crawler struct - External catalog fetch settings. Headless selects the
// scripted-browser fetch mode instead of plain HTTP.
type Crawler struct {
	BaseURL   string `mapstructure:"base_url"`
	Headless  bool   `mapstructure:"headless"`
	Timeout   int    `mapstructure:"timeout"` // seconds
	UserAgent string `mapstructure:"user_agent"`
}

// Cache struct - Lookup cache settings. Mode is one of memory, disk, none.
type Cache struct {
	Mode     string `mapstructure:"mode"`
	Capacity int    `mapstructure:"capacity"`
	TTL      int    `mapstructure:"ttl"` // seconds
	Path     string `mapstructure:"path"`
}

// Session struct - Conversation session settings
type Session struct {
	Timeout  int `mapstructure:"timeout"` // minutes
	MaxTurns int `mapstructure:"max_turns"`
}

var config Config

// InitViper func
func InitViper(path, env string) {
	getConfig(path, env)
}

// GetViper func
func GetViper() *Config {
	return &config
}

func getConfig(path, env string) {
	viper.SetConfigName("config")
	viper.AddConfigPath(path)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Println("Config file has changed: ", e.Name)
	})
	err = viper.Unmarshal(&config)
	if err != nil {
		log.Fatalln(err)
	}
}
