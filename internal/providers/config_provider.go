package providers

import (
	"fmt"
	"minelens/internal/structures"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("ledger.commitment", "confirmed")
	v.SetDefault("ledger.timeout", 10*time.Second)
	v.SetDefault("history.cacheTTL", 15*time.Second)
	v.SetDefault("history.defaultRangeHours", 168)
	v.SetDefault("history.defaultStepHours", 6)
	v.SetDefault("telemetry.rpcWindow", 15*time.Minute)
	v.SetDefault("telemetry.txWindow", 15*time.Minute)
	v.SetDefault("telemetry.errorWindow", 10*time.Minute)
	v.SetDefault("recompute.writeTimeout", 30*time.Second)
	v.SetDefault("wallet.cacheSize", 1024)
	v.SetDefault("wallet.cacheTTL", 15*time.Second)
	v.SetDefault("cache.ttl", 5*time.Second)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config
	v := viper.New()

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setConfigDefaults(v)

	_ = v.BindEnv("logger.level", "MINELENS_LOG_LEVEL")
	_ = v.BindEnv("ledger.endpoints", "MINELENS_RPC_URL")
	_ = v.BindEnv("ledger.programId", "MINELENS_PROGRAM_ID")
	_ = v.BindEnv("recompute.signerUrl", "MINELENS_SIGNER_URL")
	_ = v.BindEnv("recompute.signerToken", "MINELENS_SIGNER_TOKEN")
	_ = v.BindEnv("cache.enabled", "MINELENS_CACHE_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "MineLens"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
