package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		TelegramAPIToken string   `env:"TOKEN,required"`
		OwnerID          int64    `env:"OWNER_ID,default=1890046858"`
		DefaultLanguage  string   `env:"LANG,default=es"`
		EnabledHandlers  []string `env:"HANDLERS,default=admin,gatekeeper,guardian"`
		LogLevel         int      `env:"LOG_LEVEL,default=2"`
		DotPath          string   `env:"DOT_PATH,default=~/.mashi"`
		MetricsAddr      string   `env:"METRICS_ADDR,default=:2112"`
		LLM              LLM
		Guardian         Guardian
		Flood            Flood
		Warnings         Warnings
	}

	LLM struct {
		APIKey  string        `env:"LLM_API_KEY"`
		Model   string        `env:"LLM_API_MODEL,default=gemini-2.5-flash-lite"`
		BaseURL string        `env:"LLM_API_URL,default=https://api.openai.com/v1"`
		Type    string        `env:"LLM_API_TYPE,default=gemini"`
		Timeout time.Duration `env:"LLM_TIMEOUT,default=20s"`
	}

	// Guardian carries the heuristic tuning knobs. The probability defaults
	// are inherited from the original deployment and have no documented
	// tuning rationale, so they stay configurable instead of hard-coded.
	Guardian struct {
		GoodBehaviorOdds   float64 `env:"GOOD_BEHAVIOR_ODDS,default=0.3"`
		ReplyOddsTrusted   float64 `env:"REPLY_ODDS_TRUSTED,default=0.02"`
		ReplyOddsDefault   float64 `env:"REPLY_ODDS_DEFAULT,default=0.005"`
		HostilityPenalty   int     `env:"HOSTILITY_PENALTY,default=10"`
		WarningThreshold   int     `env:"WARNING_REPUTATION_THRESHOLD,default=30"`
		NSFWThreshold      int     `env:"NSFW_REPUTATION_THRESHOLD,default=40"`
		PraiseThreshold    int     `env:"PRAISE_REPUTATION_THRESHOLD,default=60"`
		HistoryWindowLines int     `env:"HISTORY_WINDOW_LINES,default=20"`
	}

	Flood struct {
		Window       time.Duration `env:"FLOOD_WINDOW,default=10s"`
		Threshold    int           `env:"FLOOD_THRESHOLD,default=5"`
		MuteDuration time.Duration `env:"FLOOD_MUTE_DURATION,default=5m"`
	}

	Warnings struct {
		BanThreshold int           `env:"WARNINGS_BAN_THRESHOLD,default=3"`
		BanDuration  time.Duration `env:"WARNINGS_BAN_DURATION,default=3h"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

func Load() (Config, error) {
	once.Do(func() {
		cfg := &Config{}
		envcfg := envconfig.Config{
			Lookuper: envconfig.PrefixLookuper("MASHI_", envconfig.OsLookuper()),
			Target:   cfg,
		}
		if err := envconfig.ProcessWith(context.Background(), &envcfg); err != nil {
			globalErr = fmt.Errorf("process env config: %w", err)
			return
		}
		home, err := os.UserHomeDir()
		if err != nil {
			globalErr = fmt.Errorf("get user home directory: %w", err)
			return
		}
		cfg.DotPath = strings.Replace(cfg.DotPath, "~", home, 1)
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}
