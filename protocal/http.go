package protocal

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"appliancebot/configs"
	httpAdapter "appliancebot/internal/adapters/input/http"
	"appliancebot/internal/adapters/output/cache"
	"appliancebot/internal/adapters/output/llm"
	"appliancebot/internal/adapters/output/memory"
	"appliancebot/internal/adapters/output/partselect"
	"appliancebot/internal/application"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

type config struct {
	ENV string `mapstructure:"env"`
}

// ServeHTTP func
func ServeHTTP() error {
	app := fiber.New()
	var cfg config
	flag.StringVar(&cfg.ENV, "env", "", "the environment to use")
	flag.Parse()
	configs.InitViper("./configs", cfg.ENV)
	logrus.Info(configs.GetViper().Env)
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))

	// Wire up the hexagonal architecture layers
	// Output adapters
	sessionTimeout := time.Duration(configs.GetViper().Session.Timeout) * time.Minute
	sessionStore := memory.NewMemorySessionStore(sessionTimeout, configs.GetViper().Session.MaxTurns)

	lookupCache, err := cache.NewAdapter(configs.GetViper().Cache)
	if err != nil {
		return err
	}

	fetcher := partselect.NewFetcherAdapter(configs.GetViper().Crawler)

	llmClient, err := llm.NewClientAdapter(configs.GetViper().LLM)
	if err != nil {
		logrus.Fatalf("Failed to create LLM client: %v", err)
	}

	// Application service (use case)
	handlers := application.NewHandlerSet(lookupCache, fetcher, llmClient, configs.GetViper().LLM.SystemPrompt)
	srv := application.NewChatService(sessionStore, handlers, sessionTimeout, configs.GetViper().Session.MaxTurns)

	// Input adapter (HTTP handler)
	hdl := httpAdapter.New(srv)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		for range c {
			log.Println("Gracefull shut down ...")
			if err := lookupCache.Close(); err != nil {
				log.Println("Error when closing cache: ", err)
			}
			err := app.Shutdown()
			if err != nil {
				log.Println("Error when shutdown server: ", err)
			}
		}
	}()

	app.Get("/health", hdl.HealthCheck)
	app.Post("/chat", hdl.Chat)

	err = app.Listen(":" + configs.GetViper().App.Port)
	if err != nil {
		return err
	}

	logrus.Println("Listerning on port: ", configs.GetViper().App.Port)
	return nil
}
