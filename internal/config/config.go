package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port     string `mapstructure:"port"`
		Env      string `mapstructure:"env"`
		LogLevel string `mapstructure:"log_level"`
		BaseURL  string `mapstructure:"base_url"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		GuardTTL time.Duration `mapstructure:"guard_ttl"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
	Resolver struct {
		Policy      string `mapstructure:"policy"`
		TitleMarker string `mapstructure:"title_marker"`
	} `mapstructure:"resolver"`
	Feed struct {
		Title       string `mapstructure:"title"`
		Description string `mapstructure:"description"`
		Author      string `mapstructure:"author"`
		PostURL     string `mapstructure:"post_url"`
	} `mapstructure:"feed"`
}

var envBindings = map[string]string{
	"app.port":              "APP_PORT",
	"app.env":               "APP_ENV",
	"app.log_level":         "LOG_LEVEL",
	"app.base_url":          "APP_BASE_URL",
	"db.dsn":                "DB_DSN",
	"redis.addr":            "REDIS_ADDR",
	"redis.password":        "REDIS_PASSWORD",
	"redis.guard_ttl":       "REDIS_GUARD_TTL",
	"kafka.brokers":         "KAFKA_BROKERS",
	"kafka.group_id":        "KAFKA_GROUP_ID",
	"auth.jwt_secret":       "JWT_SECRET",
	"auth.token_lifespan":   "TOKEN_LIFESPAN",
	"cloudinary.cloud_name": "CLOUDINARY_CLOUD_NAME",
	"cloudinary.api_key":    "CLOUDINARY_API_KEY",
	"cloudinary.api_secret": "CLOUDINARY_API_SECRET",
	"jaeger.otlp_endpoint":  "OTLP_ENDPOINT",
	"resolver.policy":       "RESOLVER_POLICY",
	"resolver.title_marker": "RESOLVER_TITLE_MARKER",
	"feed.title":            "FEED_TITLE",
	"feed.post_url":         "FEED_POST_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.base_url", "http://localhost:8080/api")
	v.SetDefault("redis.guard_ttl", 30*time.Second)
	v.SetDefault("kafka.group_id", "featured-image-group")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("resolver.policy", "firstMatch")
	v.SetDefault("resolver.title_marker", "active")
	v.SetDefault("feed.title", "Blog")
	v.SetDefault("feed.description", "Latest posts.")
	v.SetDefault("feed.author", "The Owner")
	v.SetDefault("feed.post_url", "http://localhost:3000/blog/%s")
}

// LoadConfig reads .env and config.yaml from the given directories (the
// working directory when none are given), then applies environment overrides.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	for _, p := range paths {
		if err := godotenv.Load(p + "/.env"); err == nil {
			break
		}
	}

	v := viper.New()
	setDefaults(v)

	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config.yaml: %w", err)
		}
		log.Printf("note: config.yaml not found, using env and defaults")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return cfg, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	// KAFKA_BROKERS may carry spaces after the commas.
	cfg.Kafka.Brokers = splitBrokers(cfg.Kafka.Brokers)

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var missing []string
	if c.DB.DSN == "" {
		missing = append(missing, "db.dsn")
	}
	if c.Resolver.TitleMarker == "" {
		missing = append(missing, "resolver.title_marker")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required config not set: %s", strings.Join(missing, ", "))
	}
	switch strings.ToLower(strings.ReplaceAll(c.Resolver.Policy, "_", "")) {
	case "firstmatch", "pooledrandom":
	default:
		return fmt.Errorf("resolver.policy %q must be firstMatch or pooledRandom", c.Resolver.Policy)
	}
	return nil
}

func splitBrokers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		for _, b := range strings.Split(entry, ",") {
			if b = strings.TrimSpace(b); b != "" {
				out = append(out, b)
			}
		}
	}
	return out
}
