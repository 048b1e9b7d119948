package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug    bool   `env:"DEBUG" envDefault:"false"`
	LogLevel string `env:"LOG_LEVEL" envDefault:""`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
		PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"0"`
		// Несколько адресов включают cluster-клиент
		Addrs []string `env:"REDIS_ADDRS" envSeparator:","`
	}

	Postgres struct {
		// Пустой DSN переключает журнал транзакций на in-memory реализацию
		DSN             string        `env:"DATABASE_URL" envDefault:""`
		MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
		ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
		AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	}

	Telegram struct {
		BotToken    string        `env:"BOT_TOKEN,required,notEmpty"`
		InitDataTTL time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`
		AdminIDs    []int64       `env:"ADMIN_IDS" envSeparator:","`
	}

	Store struct {
		Namespace string `env:"STORE_NAMESPACE" envDefault:"kc-mini-app-storage"`
	}

	Simulation struct {
		WindowSize int           `env:"SIMULATION_WINDOW" envDefault:"100"`
		MaxBatch   int           `env:"SIMULATION_MAX_BATCH" envDefault:"500"`
		IdleAfter  time.Duration `env:"SIMULATION_SESSION_IDLE" envDefault:"24h"`
	}

	Withdrawal struct {
		MinAmount  float64       `env:"WITHDRAW_MIN_AMOUNT" envDefault:"100"`
		SessionTTL time.Duration `env:"WITHDRAW_SESSION_TTL" envDefault:"1h"`
	}

	Ton struct {
		Enabled         bool          `env:"TON_ENABLED" envDefault:"false"`
		LiteConfigURL   string        `env:"TON_LITE_CONFIG_URL" envDefault:"https://ton.org/global.config.json"`
		TreasuryAddress string        `env:"TON_TREASURY_ADDRESS" envDefault:""`
		ProofDomain     string        `env:"TON_PROOF_DOMAIN" envDefault:""`
		ProofTTL        time.Duration `env:"TON_PROOF_TTL" envDefault:"15m"`
	}

	TonAPI struct {
		// Пустой URL отключает on-chain баланс в GET /me/wallet
		URL   string `env:"TONAPI_URL" envDefault:"https://tonapi.io"`
		Token string `env:"TONAPI_TOKEN" envDefault:""`
	}

	Price struct {
		APIURL   string        `env:"PRICE_API_URL" envDefault:"https://api.coingecko.com/api/v3"`
		Asset    string        `env:"PRICE_ASSET" envDefault:"the-open-network"`
		Currency string        `env:"PRICE_CURRENCY" envDefault:"usd"`
		CacheTTL time.Duration `env:"PRICE_CACHE_TTL" envDefault:"1m"`
	}

	Scheduler struct {
		PlanExpirySpec   string `env:"PLAN_EXPIRY_SPEC" envDefault:"0 */5 * * * *"`
		BoosterPruneSpec string `env:"BOOSTER_PRUNE_SPEC" envDefault:"0 0 * * * *"`
		PriceRefreshSpec string `env:"PRICE_REFRESH_SPEC" envDefault:"*/30 * * * * *"`
	}
}

// RedisAddr returns host:port of the redis server.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// IsAdmin reports whether the telegram id is listed in ADMIN_IDS.
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func Load() (*Config, error) {
	// .env может отсутствовать: в production переменные задаются окружением
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}
