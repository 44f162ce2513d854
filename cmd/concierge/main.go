package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/barekit/concierge/pkg/chatbot"
	"github.com/barekit/concierge/pkg/config"
	"github.com/barekit/concierge/pkg/llm/openai"
	"github.com/barekit/concierge/pkg/notify"
	"github.com/barekit/concierge/pkg/server"
	"github.com/barekit/concierge/pkg/store"
	"github.com/barekit/concierge/pkg/store/consts"
	"github.com/barekit/concierge/pkg/store/inmemory"
	mongostore "github.com/barekit/concierge/pkg/store/mongo"
	"github.com/barekit/concierge/pkg/store/mssql"
	"github.com/barekit/concierge/pkg/store/mysql"
	neo4jstore "github.com/barekit/concierge/pkg/store/neo4j"
	"github.com/barekit/concierge/pkg/store/postgres"
	redisstore "github.com/barekit/concierge/pkg/store/redis"
	"github.com/barekit/concierge/pkg/store/sqlite"
	"github.com/openai/openai-go/option"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()

	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	if cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}
	provider := openai.New(option.WithAPIKey(cfg.OpenAIKey))
	provider.SetModel(cfg.OpenAIModel)

	var notifier notify.Notifier = notify.NewSMTP(cfg.SMTP)
	if !cfg.SMTP.Complete() {
		slog.Warn("SMTP configuration incomplete, escalation email disabled")
	}

	bot := chatbot.New(st, provider,
		chatbot.WithLocale(cfg.Locale),
		chatbot.WithNotifier(notifier),
		chatbot.WithDebug(cfg.Debug),
	)

	router := server.NewRouter(bot, st)

	slog.Info("concierge listening", "addr", cfg.ListenAddr, "store", cfg.Store.Type, "locale", cfg.Locale)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// newStore selects the conversation store backend from configuration.
func newStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Type {
	case "sqlite":
		return sqlite.New(cfg.DSN)

	case "postgres":
		return postgres.New(cfg.DSN)

	case "mysql":
		return mysql.New(cfg.DSN)

	case "mssql":
		return mssql.New(cfg.DSN)

	case "redis":
		opts, err := goredis.ParseURL(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		client := goredis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return redisstore.New(client), nil

	case "mongo":
		opts := mongooptions.Client().ApplyURI(cfg.DSN)
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, fmt.Errorf("failed to ping mongo: %w", err)
		}
		dbName := consts.DefaultDBName
		if cfg.DBName != "" {
			dbName = cfg.DBName
		}
		return mongostore.New(client, dbName), nil

	case "neo4j":
		dbName := "neo4j"
		if cfg.DBName != "" {
			dbName = cfg.DBName
		}
		return neo4jstore.New(cfg.DSN, cfg.Username, cfg.Password, dbName)

	case "inmemory":
		return inmemory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}
