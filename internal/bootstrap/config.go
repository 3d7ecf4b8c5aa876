package bootstrap

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"goban/internal/domain/goban"
)

type Config struct {
	ServerPort       string `mapstructure:"SERVER_PORT"`
	GrpcPort         string `mapstructure:"GRPC_PORT"`
	RedisUrl         string `mapstructure:"REDIS_URL"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	MongoUri         string `mapstructure:"MONGO_URI"`
	MongoDatabase    string `mapstructure:"MONGO_DATABASE"`
	IsLocalCors      bool   `mapstructure:"LOCAL_CORS"`
	BoardSize        int    `mapstructure:"BOARD_SIZE"`
	SuicideRule      string `mapstructure:"SUICIDE_RULE"`
	Jitter           bool   `mapstructure:"JITTER"`
	JitterSeed       int64  `mapstructure:"JITTER_SEED"`
	PageLimitArchive int    `mapstructure:"ARCHIVE_PAGE_LIMIT"`
}

var defaults = map[string]any{
	"SERVER_PORT":        ":8080",
	"GRPC_PORT":          ":8082",
	"REDIS_URL":          "",
	"REDIS_PASSWORD":     "",
	"MONGO_URI":          "",
	"MONGO_DATABASE":     "goban",
	"LOCAL_CORS":         false,
	"BOARD_SIZE":         goban.DefaultSize,
	"SUICIDE_RULE":       string(goban.SuicideStrict),
	"JITTER":             false,
	"JITTER_SEED":        0,
	"ARCHIVE_PAGE_LIMIT": 20,
}

// Setup reads cfgPath (an .env style file, or any format viper knows by
// extension) on top of the defaults. Environment variables win over both.
// An empty cfgPath means defaults and environment only.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if strings.HasSuffix(cfgPath, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Rules converts the configured rule names to engine rules.
func (c Config) Rules() (goban.Rules, error) {
	policy, err := goban.ParseSuicidePolicy(c.SuicideRule)
	if err != nil {
		return goban.Rules{}, err
	}
	return goban.Rules{Suicide: policy}, nil
}

func (c Config) validate() error {
	if c.BoardSize < goban.MinSize || c.BoardSize > goban.MaxSize {
		return fmt.Errorf("BOARD_SIZE: %w: %d", goban.ErrBoardSize, c.BoardSize)
	}
	if _, err := c.Rules(); err != nil {
		return fmt.Errorf("SUICIDE_RULE: %w", err)
	}
	if c.PageLimitArchive <= 0 {
		return fmt.Errorf("ARCHIVE_PAGE_LIMIT must be positive, got %d", c.PageLimitArchive)
	}
	return nil
}
