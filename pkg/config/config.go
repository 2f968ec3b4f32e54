package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	DB          DBConfig
	Redis       RedisConfig
	Onboarding  OnboardingConfig
	FlowCatalog FlowCatalogConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PASTURELINK_APP_ENV" required:"true"`
	Port         string `envconfig:"PASTURELINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PASTURELINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PASTURELINK_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"PASTURELINK_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PASTURELINK_DB_DSN"`
	Driver string `envconfig:"PASTURELINK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PASTURELINK_DB_HOST"`
	Port     int    `envconfig:"PASTURELINK_DB_PORT" default:"5432"`
	User     string `envconfig:"PASTURELINK_DB_USER"`
	Password string `envconfig:"PASTURELINK_DB_PASSWORD"`
	Name     string `envconfig:"PASTURELINK_DB_NAME"`
	SSLMode  string `envconfig:"PASTURELINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PASTURELINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PASTURELINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PASTURELINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PASTURELINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: d.Host,
		EnvDBUser: d.User,
		EnvDBName: d.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(d.User)
	if d.Password != "" {
		userInfo = url.UserPassword(d.User, d.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	if d.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", d.SSLMode)
		u.RawQuery = q.Encode()
	}

	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"PASTURELINK_REDIS_URL"`
	Address      string        `envconfig:"PASTURELINK_REDIS_ADDR"`
	Password     string        `envconfig:"PASTURELINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"PASTURELINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PASTURELINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PASTURELINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PASTURELINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PASTURELINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PASTURELINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// OnboardingConfig tunes the store setup wizard.
type OnboardingConfig struct {
	DraftRetentionDays   int           `envconfig:"PASTURELINK_ONBOARDING_DRAFT_RETENTION_DAYS" default:"7"`
	AutosaveDebounce     time.Duration `envconfig:"PASTURELINK_ONBOARDING_AUTOSAVE_DEBOUNCE" default:"2s"`
	SearchDebounce       time.Duration `envconfig:"PASTURELINK_ONBOARDING_SEARCH_DEBOUNCE" default:"500ms"`
	DefaultSearchRadius  float64       `envconfig:"PASTURELINK_ONBOARDING_DEFAULT_SEARCH_RADIUS_MILES" default:"50"`
	MaxSearchRadiusMiles float64       `envconfig:"PASTURELINK_ONBOARDING_MAX_SEARCH_RADIUS_MILES" default:"250"`
}

// DraftRetention returns the retention window as a duration.
func (o OnboardingConfig) DraftRetention() time.Duration {
	if o.DraftRetentionDays <= 0 {
		return 0
	}
	return time.Duration(o.DraftRetentionDays) * 24 * time.Hour
}

// FlowCatalogConfig points at the category flow source service.
type FlowCatalogConfig struct {
	BaseURL string        `envconfig:"PASTURELINK_FLOW_CATALOG_URL" required:"true"`
	Timeout time.Duration `envconfig:"PASTURELINK_FLOW_CATALOG_TIMEOUT" default:"10s"`
}
