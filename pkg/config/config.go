package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const DefaultAppName = "tenant-gateway"

type Configuration struct {
	Database   Database
	Logging    Logging
	Loaded     bool
	Server     Server
	Gateway    Gateway
	Cloudwatch Cloudwatch
	Metrics    Metrics
	Clients    Clients `mapstructure:"clients"`
	Sentry     Sentry  `mapstructure:"sentry"`
}

type Clients struct {
	Redis Redis `mapstructure:"redis"`
}

type Database struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	CACertPath        string        `mapstructure:"ca_cert_path"`
	PoolLimit         int           `mapstructure:"pool_limit"`
	SlowQueryDuration time.Duration `mapstructure:"slow_query_duration"`
}

type Logging struct {
	Level   string
	Console bool
	Color   bool
}

type Server struct {
	Port int
}

// Gateway holds the settings of the tenant resolution layer.
type Gateway struct {
	// Debug turns on development origins (http:// plus DevPorts) for every
	// tenant domain in addition to the https:// origin.
	Debug          bool
	AllowListTTL   time.Duration `mapstructure:"allow_list_ttl"`
	AllowedHosts   []string      `mapstructure:"allowed_hosts"`
	TrustedOrigins []string      `mapstructure:"trusted_origins"`
	DevPorts       []string      `mapstructure:"dev_ports"`
	PublicSchema   string        `mapstructure:"public_schema"`
	BaseDomain     string        `mapstructure:"base_domain"`
	FrontendPort   int           `mapstructure:"frontend_port"`
	Breaker        Breaker       `mapstructure:"breaker"`
}

type Breaker struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type Cloudwatch struct {
	Region  string
	Key     string
	Secret  string
	Session string
	Group   string
	Stream  string
}

type Redis struct {
	Host       string
	Port       int
	Username   string
	Password   string
	DB         int
	Expiration Expiration
}

type Expiration struct {
	Tenant time.Duration
}

type Sentry struct {
	Dsn string
}

type Metrics struct {
	// Defines the path to the metrics server that the app should be configured to
	// listen on for metric traffic.
	Path string `mapstructure:"path"`

	// Defines the metrics port that the app should be configured to listen on for
	// metric traffic.
	Port int `mapstructure:"port"`
}

const (
	DefaultAllowListTTL = 5 * time.Minute
	DefaultPublicSchema = "public"
	DefaultBaseDomain   = "chalan-pro.net"
)

var LoadedConfig Configuration

func Get() *Configuration {
	if !LoadedConfig.Loaded {
		Load()
	}
	return &LoadedConfig
}

func RedisUrl() string {
	return fmt.Sprintf("%s:%d", Get().Clients.Redis.Host, Get().Clients.Redis.Port)
}

func readConfigFile(v *viper.Viper) {
	v.SetConfigName("config.yaml")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs/")
	v.AddConfigPath("../../configs/")
	v.AddConfigPath("../../../configs")

	if path, ok := os.LookupEnv("CONFIG_PATH"); ok {
		v.AddConfigPath(path)
	}
	err := v.ReadInConfig()
	if err != nil {
		log.Logger.Warn().Msgf("config.yaml file not loaded: %s", err.Error())
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Loaded", true)
	// In viper you have to set defaults, otherwise loading from ENV doesn't work
	//   without a config file present
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.ca_cert_path", "")
	v.SetDefault("database.pool_limit", 20)
	v.SetDefault("database.slow_query_duration", 2*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.color", false)
	v.SetDefault("server.port", 8000)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.port", 9000)
	v.SetDefault("sentry.dsn", "")

	v.SetDefault("gateway.debug", false)
	v.SetDefault("gateway.allow_list_ttl", DefaultAllowListTTL)
	v.SetDefault("gateway.allowed_hosts", []string{"localhost", "127.0.0.1"})
	v.SetDefault("gateway.trusted_origins", []string{})
	v.SetDefault("gateway.dev_ports", []string{"8000", "3000", "8080"})
	v.SetDefault("gateway.public_schema", DefaultPublicSchema)
	v.SetDefault("gateway.base_domain", DefaultBaseDomain)
	v.SetDefault("gateway.frontend_port", 8080)
	v.SetDefault("gateway.breaker.max_failures", 5)
	v.SetDefault("gateway.breaker.timeout", 30*time.Second)

	v.SetDefault("cloudwatch.region", "")
	v.SetDefault("cloudwatch.group", "")
	v.SetDefault("cloudwatch.stream", DefaultAppName)
	v.SetDefault("cloudwatch.session", "")
	v.SetDefault("cloudwatch.secret", "")
	v.SetDefault("cloudwatch.key", "")

	v.SetDefault("clients.redis.host", "")
	v.SetDefault("clients.redis.port", 6379)
	v.SetDefault("clients.redis.username", "")
	v.SetDefault("clients.redis.password", "")
	v.SetDefault("clients.redis.db", 0)
	v.SetDefault("clients.redis.expiration.tenant", 1*time.Minute)
}

func Load() {
	v := viper.New()

	readConfigFile(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	err := v.Unmarshal(&LoadedConfig)
	if err != nil {
		panic(err)
	}

	if LoadedConfig.Clients.Redis.Host == "" {
		log.Warn().Msg("Caching is disabled.")
	}
	if LoadedConfig.Gateway.Debug {
		log.Warn().Msg("Gateway running in debug mode, development origins are trusted.")
	}
}

func ProgramString() string {
	return strings.Join(os.Args, " ")
}

// CustomHTTPErrorHandler renders every error as an ErrorResponse. Errors
// that are not ErrorResponse or echo.HTTPError become a generic 500 so that
// internal details never reach the client.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	var code int
	var message ce.ErrorResponse

	if c.Response().Committed {
		c.Logger().Error(err)
		return
	}

	errResp := ce.ErrorResponse{}
	he := new(echo.HTTPError)
	if errors.As(err, &errResp) {
		code = ce.GetGeneralResponseCode(errResp)
		message = errResp
	} else if errors.As(err, &he) {
		errResp := ce.NewErrorResponseFromEchoError(he)
		code = errResp.Errors[0].Status
		message = errResp
	} else {
		log.Ctx(c.Request().Context()).Error().Err(err).Msg("unhandled error")
		code = http.StatusInternalServerError
		message = ce.NewErrorResponse(code, "", http.StatusText(http.StatusInternalServerError))
	}

	// Send response
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, message)
	}
	if err != nil {
		log.Logger.Error().Err(err).Msg("failed to write error response")
	}
}
