package nekoden

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/nekoden/nekoden/nekoden/config"
)

const envPrefix = "NEKODEN_"

// LoadConfig reads the TOML file at path, applies NEKODEN_* environment
// overrides and fills in defaults for anything left unset.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err = ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.Defaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides cfg with any NEKODEN_* variables present in the environment.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("failed to parse env: %w", err)
	}
	return nil
}

type Config struct {
	Log       LogConfig       `toml:"log" envPrefix:"LOG_"`
	Storage   StorageConfig   `toml:"storage" envPrefix:"STORAGE_"`
	DB        DBConfig        `toml:"db" envPrefix:"DB_"`
	Web       WebConfig       `toml:"web" envPrefix:"WEB_"`
	Auth      AuthConfig      `toml:"auth" envPrefix:"AUTH_"`
	Pet       PetConfig       `toml:"pet" envPrefix:"PET_"`
	ActionLog ActionLogConfig `toml:"actionlog" envPrefix:"ACTIONLOG_"`
	Rewards   RewardsConfig   `toml:"rewards" envPrefix:"REWARDS_"`
	Spaces    SpacesConfig    `toml:"spaces" envPrefix:"SPACES_"`
	Discord   DiscordConfig   `toml:"discord" envPrefix:"DISCORD_"`
}

type LogConfig struct {
	Level slog.Level `toml:"level" env:"LEVEL"`
}

type StorageConfig struct {
	// Driver is either "postgres" or "memory".
	Driver string `toml:"driver" env:"DRIVER"`
}

type DBConfig struct {
	Host         string `toml:"host" env:"HOST"`
	Port         int    `toml:"port" env:"PORT"`
	User         string `toml:"user" env:"USER"`
	Password     string `toml:"password" env:"PASSWORD"`
	Database     string `toml:"database" env:"DATABASE"`
	PoolSize     int    `toml:"pool_size" env:"POOL_SIZE"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	MaxLifetime  int    `toml:"max_lifetime" env:"MAX_LIFETIME"`
	SSLMode      string `toml:"sslmode" env:"SSLMODE"`
}

type WebConfig struct {
	Host         string   `toml:"host" env:"HOST"`
	Port         int      `toml:"port" env:"PORT"`
	SocketPort   int      `toml:"socket_port" env:"SOCKET_PORT"`
	AllowOrigins []string `toml:"allow_origins" env:"ALLOW_ORIGINS" envSeparator:","`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret" env:"JWT_SECRET"`
	Issuer    string `toml:"issuer" env:"ISSUER"`
}

type PetConfig struct {
	TickInterval Duration `toml:"tick_interval" env:"TICK_INTERVAL"`
	TickTimeout  Duration `toml:"tick_timeout" env:"TICK_TIMEOUT"`
	RestDuration Duration `toml:"rest_duration" env:"REST_DURATION"`
	WakeDwell    Duration `toml:"wake_dwell" env:"WAKE_DWELL"`
}

type ActionLogConfig struct {
	Retention     Duration `toml:"retention" env:"RETENTION"`
	SweepInterval Duration `toml:"sweep_interval" env:"SWEEP_INTERVAL"`
}

type PrizeConfig struct {
	Name     string            `toml:"name"`
	Effect   string            `toml:"effect"`
	Value    map[string]string `toml:"value"`
	Duration Duration          `toml:"duration"`
}

type RewardsConfig struct {
	Cooldown         Duration      `toml:"cooldown" env:"COOLDOWN"`
	SweepInterval    Duration      `toml:"sweep_interval" env:"SWEEP_INTERVAL"`
	FreeRespinPrizes []string      `toml:"free_respin_prizes" env:"FREE_RESPIN_PRIZES" envSeparator:","`
	DefaultAvatars   []string      `toml:"default_avatars" env:"DEFAULT_AVATARS" envSeparator:","`
	Prizes           []PrizeConfig `toml:"prizes"`
}

type SpacesConfig struct {
	Key          string `toml:"key" env:"KEY"`
	Secret       string `toml:"secret" env:"SECRET"`
	Region       string `toml:"region" env:"REGION"`
	Bucket       string `toml:"bucket" env:"BUCKET"`
	AvatarPrefix string `toml:"avatar_prefix" env:"AVATAR_PREFIX"`
	CDNBase      string `toml:"cdn_base" env:"CDN_BASE"`
}

// Enabled reports whether enough Spaces settings are present to list avatars.
func (s SpacesConfig) Enabled() bool {
	return s.Key != "" && s.Secret != "" && s.Region != "" && s.Bucket != ""
}

type DiscordConfig struct {
	WebhookURL string `toml:"webhook_url" env:"WEBHOOK_URL"`
}

// Defaults fills zero values with the built-in settings.
func (c *Config) Defaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.DB.SSLMode == "" {
		c.DB.SSLMode = "disable"
	}
	if c.Web.Host == "" {
		c.Web.Host = "0.0.0.0"
	}
	if c.Web.Port == 0 {
		c.Web.Port = 8080
	}
	if c.Web.SocketPort == 0 {
		c.Web.SocketPort = 8081
	}
	if c.Pet.TickInterval == 0 {
		c.Pet.TickInterval = Duration(config.DefaultTickInterval)
	}
	if c.Pet.TickTimeout == 0 {
		c.Pet.TickTimeout = Duration(config.DefaultTickTimeout)
	}
	if c.Pet.RestDuration == 0 {
		c.Pet.RestDuration = Duration(config.DefaultRestDuration)
	}
	if c.Pet.WakeDwell == 0 {
		c.Pet.WakeDwell = Duration(config.DefaultWakeDwell)
	}
	if c.ActionLog.Retention == 0 {
		c.ActionLog.Retention = Duration(config.DefaultLogRetention)
	}
	if c.ActionLog.SweepInterval == 0 {
		c.ActionLog.SweepInterval = Duration(config.DefaultLogSweepInterval)
	}
	if c.Rewards.Cooldown == 0 {
		c.Rewards.Cooldown = Duration(config.DefaultSpinCooldown)
	}
	if c.Rewards.SweepInterval == 0 {
		c.Rewards.SweepInterval = Duration(config.DefaultRewardSweepInterval)
	}
	if c.Rewards.FreeRespinPrizes == nil {
		c.Rewards.FreeRespinPrizes = []string{config.FreeSpinPrize}
	}
	if len(c.Rewards.DefaultAvatars) == 0 {
		c.Rewards.DefaultAvatars = []string{
			"/avatars/default-1.png",
			"/avatars/default-2.png",
			"/avatars/default-3.png",
			"/avatars/default-4.png",
		}
	}
	if c.Spaces.AvatarPrefix == "" {
		c.Spaces.AvatarPrefix = "avatars/default/"
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	durations := []struct {
		key string
		d   Duration
	}{
		{"pet.tick_interval", c.Pet.TickInterval},
		{"pet.tick_timeout", c.Pet.TickTimeout},
		{"pet.rest_duration", c.Pet.RestDuration},
		{"pet.wake_dwell", c.Pet.WakeDwell},
		{"actionlog.retention", c.ActionLog.Retention},
		{"actionlog.sweep_interval", c.ActionLog.SweepInterval},
		{"rewards.cooldown", c.Rewards.Cooldown},
		{"rewards.sweep_interval", c.Rewards.SweepInterval},
	}
	for _, f := range durations {
		if f.d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", f.key, f.d.Std())
		}
	}
	seen := make(map[string]bool, len(c.Rewards.Prizes))
	for _, p := range c.Rewards.Prizes {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("reward prize with empty name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate reward prize %q", name)
		}
		seen[name] = true
		if p.Effect != "" && p.Duration <= 0 {
			return fmt.Errorf("reward prize %q grants %q without a duration", name, p.Effect)
		}
	}
	return nil
}

// Duration decodes Go duration strings ("10s", "1h") from TOML and env.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
