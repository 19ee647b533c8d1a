package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config is the complete application configuration.
type Config struct {
	App           AppConfig           `koanf:"app" json:"app" yaml:"app"`
	API           APIConfig           `koanf:"api" json:"api" yaml:"api"`
	Identity      IdentityConfig      `koanf:"identity" json:"identity" yaml:"identity"`
	Session       SessionConfig       `koanf:"session" json:"session" yaml:"session"`
	Log           LogConfig           `koanf:"log" json:"log" yaml:"log"`
	Observability ObservabilityConfig `koanf:"observability" json:"observability" yaml:"observability"`

	k *koanf.Koanf
}

type AppConfig struct {
	Name string `koanf:"name" json:"name" yaml:"name" validate:"required"`
	Env  string `koanf:"env" json:"env" yaml:"env" validate:"required,oneof=development staging production"`
}

// APIConfig configures the backend client.
type APIConfig struct {
	BaseURL            string            `koanf:"baseurl" json:"baseurl" yaml:"baseurl" validate:"required,url"`
	Timeout            time.Duration     `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"gte=0"`
	LogPayloads        bool              `koanf:"logpayloads" json:"logpayloads" yaml:"logpayloads"`
	MaxPayloadLogBytes int               `koanf:"maxpayloadlogbytes" json:"maxpayloadlogbytes" yaml:"maxpayloadlogbytes" validate:"gte=0"`
	TraceIDHeader      string            `koanf:"traceidheader" json:"traceidheader" yaml:"traceidheader"`
	Headers            map[string]string `koanf:"headers" json:"headers" yaml:"headers"`
	Auth               AuthConfig        `koanf:"auth" json:"auth" yaml:"auth"`
	Rate               RateConfig        `koanf:"rate" json:"rate" yaml:"rate"`
}

// AuthConfig controls credential expiry handling.
type AuthConfig struct {
	// MaxRetries bounds replays after a credential refresh.
	MaxRetries     int    `koanf:"maxretries" json:"maxretries" yaml:"maxretries" validate:"gte=0,lte=20"`
	ExpiredMessage string `koanf:"expiredmessage" json:"expiredmessage" yaml:"expiredmessage"`
	// ExpiredStatus restricts expiry detection to one status; 0 accepts any.
	ExpiredStatus int `koanf:"expiredstatus" json:"expiredstatus" yaml:"expiredstatus" validate:"omitempty,gte=400,lte=599"`
}

// RateConfig is an optional client-side limit on outgoing attempts.
type RateConfig struct {
	Limit float64 `koanf:"limit" json:"limit" yaml:"limit" validate:"gte=0"`
	Burst int     `koanf:"burst" json:"burst" yaml:"burst" validate:"gte=0"`
}

// IdentityConfig describes the OAuth2 token endpoint that mints credentials.
type IdentityConfig struct {
	ClientID     string `koanf:"clientid" json:"clientid" yaml:"clientid"`
	ClientSecret string `koanf:"clientsecret" json:"-" yaml:"clientsecret"`
	TokenURL     string `koanf:"tokenurl" json:"tokenurl" yaml:"tokenurl" validate:"omitempty,url"`
	RefreshToken string `koanf:"refreshtoken" json:"-" yaml:"refreshtoken"`
}

type SessionConfig struct {
	Type string `koanf:"type" json:"type" yaml:"type" validate:"oneof=memory file"`
	Path string `koanf:"path" json:"path" yaml:"path"`
}

type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// ObservabilityConfig controls metric export. An empty endpoint exports to stdout.
type ObservabilityConfig struct {
	Enabled  bool          `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Endpoint string        `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`
	Insecure bool          `koanf:"insecure" json:"insecure" yaml:"insecure"`
	Interval time.Duration `koanf:"interval" json:"interval" yaml:"interval" validate:"gte=0"`
}
