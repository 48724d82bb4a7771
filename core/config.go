package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Mirror backends
const (
	MirrorNone  = "none"
	MirrorRedis = "redis"
	MirrorGCS   = "gcs"
)

type (
	Config struct {
		AppName          string
		Env              string // DEV (default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		RollbarToken     string
		AdminRecipientID string // receives scheduling and support notifications

		Store      StoreConfig
		Database   DatabaseConfig
		Mirror     MirrorConfig
		Payment    PaymentConfig
		Meeting    MeetingConfig
		Identity   IdentityConfig
		Email      EmailConfig
		Scheduling SchedulingConfig
	}

	StoreConfig struct {
		Driver     string
		SQLitePath string
	}

	DatabaseConfig struct {
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
	}

	MirrorConfig struct {
		Backend       string
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		RedisPrefix   string
		GCSBucket     string
		GCSCredsFile  string
		MaxRetries    uint64
		BaseBackoff   time.Duration
		Timeout       time.Duration
		Workers       int
	}

	PaymentConfig struct {
		Latency          time.Duration
		CouponLatency    time.Duration
		DeclineRate      float64
		DefaultCardLast4 string
	}

	MeetingConfig struct {
		Latency time.Duration
		BaseURL string
	}

	IdentityConfig struct {
		SigningKey string
		Issuer     string
	}

	EmailConfig struct {
		FromName       string
		FromAddress    string
		SendgridApiKey string
	}

	SchedulingConfig struct {
		CancellationWindow time.Duration
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c EmailConfig) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.FromName, Address: c.FromAddress}
}

// NewConfig reads the configuration from the environment, after loading `config/.env.<env>` if it exists.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Lumina")
	v.SetDefault("adminRecipientId", "u1")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlitePath", "lumina.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "lumina")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.name", "lumina")
	v.SetDefault("database.disableTls", true)

	v.SetDefault("mirror.backend", MirrorNone)
	v.SetDefault("mirror.redisAddr", "localhost:6379")
	v.SetDefault("mirror.redisPassword", "")
	v.SetDefault("mirror.redisDb", 0)
	v.SetDefault("mirror.redisPrefix", "lumina:")
	v.SetDefault("mirror.gcsBucket", "")
	v.SetDefault("mirror.gcsCredsFile", "")
	v.SetDefault("mirror.maxRetries", uint64(3))
	v.SetDefault("mirror.baseBackoff", 200*time.Millisecond)
	v.SetDefault("mirror.timeout", 10*time.Second)
	v.SetDefault("mirror.workers", 4)

	v.SetDefault("payment.latency", 2*time.Second)
	v.SetDefault("payment.couponLatency", 500*time.Millisecond)
	v.SetDefault("payment.declineRate", 0.05)
	v.SetDefault("payment.defaultCardLast4", "4242")

	v.SetDefault("meeting.latency", 1500*time.Millisecond)
	v.SetDefault("meeting.baseUrl", "https://zoom.us")

	v.SetDefault("identity.signingKey", "lumina-dev-signing-key")
	v.SetDefault("identity.issuer", "lumina")

	v.SetDefault("email.fromName", "Lumina")
	v.SetDefault("email.fromAddress", "noreply@localhost")
	v.SetDefault("email.sendgridApiKey", "")

	v.SetDefault("scheduling.cancellationWindow", 4*time.Hour)

	env := strings.ToUpper(os.Getenv("LUMINA_ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix("lumina")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd, _ := os.Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		RollbarToken:     v.GetString("rollbarToken"),
		AdminRecipientID: v.GetString("adminRecipientId"),
		Store: StoreConfig{
			Driver:     v.GetString("store.driver"),
			SQLitePath: v.GetString("store.sqlitePath"),
		},
		Database: DatabaseConfig{
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Name:          v.GetString("database.name"),
			DisableTLS:    v.GetBool("database.disableTls"),
		},
		Mirror: MirrorConfig{
			Backend:       v.GetString("mirror.backend"),
			RedisAddr:     v.GetString("mirror.redisAddr"),
			RedisPassword: v.GetString("mirror.redisPassword"),
			RedisDB:       v.GetInt("mirror.redisDb"),
			RedisPrefix:   v.GetString("mirror.redisPrefix"),
			GCSBucket:     v.GetString("mirror.gcsBucket"),
			GCSCredsFile:  v.GetString("mirror.gcsCredsFile"),
			MaxRetries:    v.GetUint64("mirror.maxRetries"),
			BaseBackoff:   v.GetDuration("mirror.baseBackoff"),
			Timeout:       v.GetDuration("mirror.timeout"),
			Workers:       v.GetInt("mirror.workers"),
		},
		Payment: PaymentConfig{
			Latency:          v.GetDuration("payment.latency"),
			CouponLatency:    v.GetDuration("payment.couponLatency"),
			DeclineRate:      v.GetFloat64("payment.declineRate"),
			DefaultCardLast4: v.GetString("payment.defaultCardLast4"),
		},
		Meeting: MeetingConfig{
			Latency: v.GetDuration("meeting.latency"),
			BaseURL: v.GetString("meeting.baseUrl"),
		},
		Identity: IdentityConfig{
			SigningKey: v.GetString("identity.signingKey"),
			Issuer:     v.GetString("identity.issuer"),
		},
		Email: EmailConfig{
			FromName:       v.GetString("email.fromName"),
			FromAddress:    v.GetString("email.fromAddress"),
			SendgridApiKey: v.GetString("email.sendgridApiKey"),
		},
		Scheduling: SchedulingConfig{
			CancellationWindow: v.GetDuration("scheduling.cancellationWindow"),
		},
	}
}
