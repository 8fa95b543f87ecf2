package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"1337"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	APIURL   string `envconfig:"API_URL" default:"http://localhost:1337"`
}

type DatabaseEnv struct {
	Driver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"DB_DSN" default:"taskboard.db"`
}

type CORSEnv struct {
	// Empty reflects any request origin.
	Origins []string `envconfig:"CORS_ORIGINS"`
}

type AuthEnv struct {
	SessionSecret       string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL          time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	CookieName          string        `envconfig:"COOKIE_NAME" default:"taskboard_session"`
	CookieSecure        bool          `envconfig:"COOKIE_SECURE" default:"false"`
	DisableRegistration bool          `envconfig:"DISABLE_REGISTRATION" default:"false"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".taskboard/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"taskboard/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
}

type VAPIDEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDContact    string `envconfig:"VAPID_CONTACT" default:"admin@example.com"`
}

type ActivationEnv struct {
	CacheTTL  time.Duration `envconfig:"ACTIVATION_CACHE_TTL" default:"5m"`
	RedisAddr string        `envconfig:"REDIS_ADDR"`
}

type DemoEnv struct {
	DemoMode bool `envconfig:"DEMO_MODE" default:"false"`
}

type Env struct {
	BaseEnv
	DatabaseEnv
	CORSEnv
	AuthEnv
	StorageEnv
	VAPIDEnv
	ActivationEnv
	DemoEnv
}

const namespace = "TASKBOARD"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

// LoadDatabaseEnv loads only what the admin CLI needs to reach the database.
func LoadDatabaseEnv() (*DatabaseEnv, error) {
	var env DatabaseEnv
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func BaseEnvFromEnv(env *Env) *BaseEnv {
	return &env.BaseEnv
}

func StorageEnvFromEnv(env *Env) *StorageEnv {
	return &env.StorageEnv
}

func VAPIDEnvFromEnv(env *Env) *VAPIDEnv {
	return &env.VAPIDEnv
}

func AuthEnvFromEnv(env *Env) *AuthEnv {
	return &env.AuthEnv
}

func DemoEnvFromEnv(env *Env) *DemoEnv {
	return &env.DemoEnv
}
