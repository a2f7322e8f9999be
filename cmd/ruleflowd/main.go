// ruleflow/cmd/ruleflowd/main.go

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"rulehub/ruleflow/pkg/action"
	"rulehub/ruleflow/pkg/api"
	"rulehub/ruleflow/pkg/integrations"
	"rulehub/ruleflow/pkg/logging"
	"rulehub/ruleflow/pkg/model"
	"rulehub/ruleflow/pkg/runtime"
	"rulehub/ruleflow/pkg/store"
)

// Config represents the application configuration
type Config struct {
	LogLevel       string
	LogDestination string

	RedisAddress    string
	RedisPassword   string
	RedisDB         int
	TriggerChannels []string

	APIEnabled bool
	APIPort    int

	DashboardEnabled  bool
	DashboardPort     int
	DashboardInterval int

	IntegrationsDryRun bool
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPFrom           string
	SMSEndpoint        string
	SMSAPIKey          string
	SMSFrom            string
	WebhookTimeout     int
}

// Dependencies represents the external collaborators of the daemon
type Dependencies struct {
	Store  store.Store
	Engine *runtime.Engine
}

// StoreFactory is an interface for creating a store
type StoreFactory interface {
	NewStore(ctx context.Context, config *Config) (store.Store, error)
}

// IntegrationsFactory is an interface for creating the action integrations
type IntegrationsFactory interface {
	NewIntegrations(config *Config) action.Integrations
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, os.Args, &RealStoreFactory{}, &RealIntegrationsFactory{}); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

func run(ctx context.Context, args []string, storeFactory StoreFactory, integrationsFactory IntegrationsFactory) error {
	config, err := parseConfig(args)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := logging.ConfigureLogger(config.LogLevel, config.LogDestination); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}

	deps, err := setupDependencies(ctx, config, storeFactory, integrationsFactory)
	if err != nil {
		return fmt.Errorf("failed to setup dependencies: %w", err)
	}
	defer deps.Store.Close()

	if config.DashboardEnabled {
		dashboard := runtime.NewDashboard(deps.Engine, config.DashboardPort,
			time.Duration(config.DashboardInterval)*time.Second)
		go dashboard.Start()
	}

	if config.APIEnabled {
		server := api.NewServer(deps.Engine, deps.Store)
		go func() {
			if err := server.Run(config.APIPort); err != nil {
				log.Error().Err(err).Msg("API server stopped")
			}
		}()
	}

	return runMainLoop(ctx, deps, config)
}

func parseConfig(args []string) (*Config, error) {
	configFile := flag.String("config", "", "Path to configuration file")
	flag.CommandLine.Parse(args[1:])

	viper.SetConfigType("json")
	viper.SetEnvPrefix("RULEFLOW")
	viper.AutomaticEnv()
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.output", "console")
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.database", 0)
	viper.SetDefault("redis.channels", []string{"ruleflow_triggers"})
	viper.SetDefault("api.enabled", true)
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("dashboard.enabled", false)
	viper.SetDefault("dashboard.port", 8091)
	viper.SetDefault("dashboard.update_interval", 5)
	viper.SetDefault("integrations.dry_run", false)
	viper.SetDefault("integrations.smtp.port", 587)
	viper.SetDefault("integrations.webhook.timeout", 30)

	if *configFile == "" {
		viper.SetConfigName("ruleflow_config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.ruleflow")
		viper.AddConfigPath("/etc/ruleflow")
	} else {
		viper.SetConfigFile(*configFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || *configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Info().Msg("No configuration file found, using defaults")
	}

	return &Config{
		LogLevel:           viper.GetString("logging.level"),
		LogDestination:     viper.GetString("logging.output"),
		RedisAddress:       viper.GetString("redis.address"),
		RedisPassword:      viper.GetString("redis.password"),
		RedisDB:            viper.GetInt("redis.database"),
		TriggerChannels:    viper.GetStringSlice("redis.channels"),
		APIEnabled:         viper.GetBool("api.enabled"),
		APIPort:            viper.GetInt("api.port"),
		DashboardEnabled:   viper.GetBool("dashboard.enabled"),
		DashboardPort:      viper.GetInt("dashboard.port"),
		DashboardInterval:  viper.GetInt("dashboard.update_interval"),
		IntegrationsDryRun: viper.GetBool("integrations.dry_run"),
		SMTPHost:           viper.GetString("integrations.smtp.host"),
		SMTPPort:           viper.GetInt("integrations.smtp.port"),
		SMTPUsername:       viper.GetString("integrations.smtp.username"),
		SMTPPassword:       viper.GetString("integrations.smtp.password"),
		SMTPFrom:           viper.GetString("integrations.smtp.from"),
		SMSEndpoint:        viper.GetString("integrations.sms.endpoint"),
		SMSAPIKey:          viper.GetString("integrations.sms.api_key"),
		SMSFrom:            viper.GetString("integrations.sms.from"),
		WebhookTimeout:     viper.GetInt("integrations.webhook.timeout"),
	}, nil
}

func setupDependencies(ctx context.Context, config *Config, storeFactory StoreFactory, integrationsFactory IntegrationsFactory) (*Dependencies, error) {
	st, err := storeFactory.NewStore(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	dispatcher := action.NewDispatcher(integrationsFactory.NewIntegrations(config))
	engine := runtime.NewEngine(st, dispatcher)

	return &Dependencies{
		Store:  st,
		Engine: engine,
	}, nil
}

func runMainLoop(ctx context.Context, deps *Dependencies, config *Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pubsub := deps.Store.SubscribeTriggers(ctx, config.TriggerChannels...)
	defer pubsub.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Strs("channels", config.TriggerChannels).Msg("Ruleflow engine started")

	for {
		select {
		case msg := <-pubsub.Channel():
			if err := processMessage(ctx, deps, msg); err != nil {
				log.Error().Err(err).Msg("Failed to process trigger message")
			}
		case <-sigChan:
			log.Info().Msg("Shutting down Ruleflow engine")
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// processMessage turns one published trigger into a batch execution.
func processMessage(ctx context.Context, deps *Dependencies, msg *redis.Message) error {
	logging.Logger.Info().Str("channel", msg.Channel).Str("payload", msg.Payload).Msg("Received trigger")

	var event model.TriggerEvent
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		return fmt.Errorf("invalid trigger payload: %w", err)
	}
	if event.EventType == "" {
		return fmt.Errorf("trigger payload missing eventType: %s", msg.Payload)
	}

	rules, err := deps.Store.GetActiveRules(ctx, store.Filter{}, 0)
	if err != nil {
		return fmt.Errorf("failed to load active rules: %w", err)
	}

	ectx, trigger := runtime.BuildContext(ctx, deps.Store, event)
	deps.Engine.ExecuteRules(ctx, rules, ectx, trigger)
	return nil
}

// RealStoreFactory implements StoreFactory
type RealStoreFactory struct{}

func (f *RealStoreFactory) NewStore(ctx context.Context, config *Config) (store.Store, error) {
	return store.NewRedisStore(ctx, config.RedisAddress, config.RedisPassword, config.RedisDB)
}

// RealIntegrationsFactory implements IntegrationsFactory
type RealIntegrationsFactory struct{}

func (f *RealIntegrationsFactory) NewIntegrations(config *Config) action.Integrations {
	if config.IntegrationsDryRun {
		log.Info().Msg("Integrations running in dry-run mode")
		return action.NewMockIntegration().All()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddress,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	return action.Integrations{
		Mailer: integrations.NewSMTPMailer(config.SMTPHost, config.SMTPPort,
			config.SMTPUsername, config.SMTPPassword, config.SMTPFrom, 0),
		SMS:           integrations.NewHTTPSMSGateway(config.SMSEndpoint, config.SMSAPIKey, config.SMSFrom, 0),
		Webhook:       integrations.NewWebhookClient(time.Duration(config.WebhookTimeout) * time.Second),
		Database:      integrations.NewRedisDatabaseWriter(client),
		Notifications: integrations.NewRedisNotificationPublisher(client),
	}
}
