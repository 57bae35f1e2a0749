package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Movements MovementConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	Storage  string // postgres | memory
	LogLevel string
	// Usuario admin inicial; se crea al arrancar si el email no existe.
	AdminEmail    string
	AdminPassword string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL   string
	Host          string
	Port          int
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MaxConns      int
	AutoMigrate   bool
	LockTimeoutMs int // lock_timeout por transacción de movimiento (0 = sin tope)
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// RedisConfig consecutivos e idempotencia. Addr vacío = sin Redis (se usa el respaldo del almacenamiento).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MovementConfig parámetros del orquestador de movimientos.
type MovementConfig struct {
	Timeout              time.Duration
	IdempotencyTTL       time.Duration
	SaleNumberPrefix     string
	TransferNumberPrefix string
	Locale               string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, REDIS_ADDR, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "tiendas-api"),
			Storage:  strings.ToLower(getString(v, "APP_STORAGE", "postgres")),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL:   getString(v, "DATABASE_URL", ""),
			Host:          getString(v, "DB_HOST", "localhost"),
			Port:          getInt(v, "DB_PORT", 5432),
			User:          getString(v, "DB_USER", "postgres"),
			Password:      getString(v, "DB_PASSWORD", ""),
			DBName:        getString(v, "DB_NAME", "tiendas"),
			SSLMode:       getString(v, "DB_SSLMODE", "disable"),
			MaxConns:      getInt(v, "DB_MAX_CONNS", 25),
			AutoMigrate:   getBool(v, "DB_AUTO_MIGRATE", false),
			LockTimeoutMs: getInt(v, "LOCK_TIMEOUT_MS", 5000),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
			Prefix:   getString(v, "REDIS_PREFIX", "tiendas"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "tiendas-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Movements: MovementConfig{
			Timeout:              time.Duration(getInt(v, "MOVEMENT_TIMEOUT_SECONDS", 15)) * time.Second,
			IdempotencyTTL:       time.Duration(getInt(v, "IDEMPOTENCY_TTL_MINUTES", 1440)) * time.Minute,
			SaleNumberPrefix:     getString(v, "SALE_NUMBER_PREFIX", "SALE"),
			TransferNumberPrefix: getString(v, "TRANSFER_NUMBER_PREFIX", "TRF"),
			Locale:               getString(v, "DEFAULT_LOCALE", "es"),
		},
	}

	if cfg.App.Storage != "postgres" && cfg.App.Storage != "memory" {
		return nil, fmt.Errorf("config: APP_STORAGE inválido %q (postgres | memory)", cfg.App.Storage)
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET es requerido")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
