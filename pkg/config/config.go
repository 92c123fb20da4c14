package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "tarkhees"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Ingest       IngestConfig
	Export       ExportConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	// The sqlite flag overrides the driver so one switch flips local runs.
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TARKHEES_APP_ENV" required:"true"`
	Port         string `envconfig:"TARKHEES_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TARKHEES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TARKHEES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TARKHEES_DB_DSN"`
	Driver string `envconfig:"TARKHEES_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TARKHEES_DB_HOST"`
	Port     int    `envconfig:"TARKHEES_DB_PORT" default:"5432"`
	User     string `envconfig:"TARKHEES_DB_USER"`
	Password string `envconfig:"TARKHEES_DB_PASSWORD"`
	Name     string `envconfig:"TARKHEES_DB_NAME"`
	SSLMode  string `envconfig:"TARKHEES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TARKHEES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TARKHEES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TARKHEES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TARKHEES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TARKHEES_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TARKHEES_REDIS_ADDR"`
	Password     string        `envconfig:"TARKHEES_REDIS_PASSWORD"`
	DB           int           `envconfig:"TARKHEES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TARKHEES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TARKHEES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TARKHEES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TARKHEES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TARKHEES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// IngestConfig tunes the spreadsheet ingestion pipeline.
type IngestConfig struct {
	MaxUploadMB       int    `envconfig:"TARKHEES_INGEST_MAX_UPLOAD_MB" default:"50"`
	ExpiringSoonDays  int    `envconfig:"TARKHEES_INGEST_EXPIRING_SOON_DAYS" default:"30"`
	UrgentWindowDays  int    `envconfig:"TARKHEES_INGEST_URGENT_WINDOW_DAYS" default:"7"`
	CollatorLocale    string `envconfig:"TARKHEES_COLLATOR_LOCALE" default:"ar"`
	DatasetSlot       string `envconfig:"TARKHEES_DATASET_SLOT" default:"clientData"`
	DatasetTTLMinutes int    `envconfig:"TARKHEES_DATASET_TTL_MINUTES" default:"0"`
}

// DatasetTTL returns the optional expiry for the persisted dataset slot.
// Zero means the slot never expires; it is overwritten wholesale per upload.
func (i IngestConfig) DatasetTTL() time.Duration {
	if i.DatasetTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(i.DatasetTTLMinutes) * time.Minute
}

// SoonWindow is how far ahead a license counts as expiring soon.
func (i IngestConfig) SoonWindow() time.Duration {
	return time.Duration(i.ExpiringSoonDays) * 24 * time.Hour
}

// UrgentWindow is the short horizon used for the week bucket.
func (i IngestConfig) UrgentWindow() time.Duration {
	return time.Duration(i.UrgentWindowDays) * 24 * time.Hour
}

type ExportConfig struct {
	BaseName  string `envconfig:"TARKHEES_EXPORT_BASE_NAME" default:"نظام_إدارة_التراخيص"`
	SheetName string `envconfig:"TARKHEES_EXPORT_SHEET_NAME" default:"تراخيص العملاء"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TARKHEES_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TARKHEES_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if strings.EqualFold(db.Driver, DriverSQLite) {
		db.DSN = "file:tarkhees.db?cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		"TARKHEES_DB_HOST": db.Host,
		"TARKHEES_DB_USER": db.User,
		"TARKHEES_DB_NAME": db.Name,
	}
	for _, env := range []string{"TARKHEES_DB_HOST", "TARKHEES_DB_USER", "TARKHEES_DB_NAME"} {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either TARKHEES_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
