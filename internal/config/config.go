package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type SessionConfig struct {
	TTL            time.Duration
	SigningKeyFile string
}

type AuthConfig struct {
	NonceTTL            time.Duration
	TrustedAddressLogin bool
	BcryptCost          int
}

type CustodialConfig struct {
	BaseURL string
	APIKey  string
	Network string
	Timeout time.Duration
}

type WalletConfig struct {
	// Provider is either "local" or "custodial"
	Provider  string
	Custodial CustodialConfig
}

type JobsConfig struct {
	NonceSweep string
}

type CORSConfig struct {
	Origins []string
}

type AppConfig struct {
	Environment string
	HTTP        HTTPConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Session     SessionConfig
	Auth        AuthConfig
	Wallet      WalletConfig
	Jobs        JobsConfig
	CORS        CORSConfig
}

const (
	WalletProviderLocal     = "local"
	WalletProviderCustodial = "custodial"
)

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("TASKTRAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects combinations the server cannot start with
func (c *AppConfig) Validate() error {
	switch c.Wallet.Provider {
	case WalletProviderLocal:
	case WalletProviderCustodial:
		if c.Wallet.Custodial.BaseURL == "" {
			return fmt.Errorf("wallet.custodial.baseurl is required for the custodial provider")
		}
	default:
		return fmt.Errorf("unknown wallet provider %q", c.Wallet.Provider)
	}

	if c.Auth.NonceTTL <= 0 {
		return fmt.Errorf("auth.noncettl must be positive")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 5000)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 20)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.url", "")

	v.SetDefault("session.ttl", "168h") // 7 days
	v.SetDefault("session.signingkeyfile", "")

	v.SetDefault("auth.noncettl", "5m")
	v.SetDefault("auth.trustedaddresslogin", false)
	v.SetDefault("auth.bcryptcost", 10)

	v.SetDefault("wallet.provider", WalletProviderLocal)
	v.SetDefault("wallet.custodial.baseurl", "https://api.shyft.to/sol/v1")
	v.SetDefault("wallet.custodial.apikey", "")
	v.SetDefault("wallet.custodial.network", "devnet")
	v.SetDefault("wallet.custodial.timeout", "10s")

	v.SetDefault("jobs.noncesweep", "@every 1m")

	v.SetDefault("cors.origins", []string{})
}
