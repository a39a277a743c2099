package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/spf13/viper"

	"github.com/poofware/application-service/internal/utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	Env              string
	AppPort          string
	AppUrl           string
	ResumePath       string
	UniqueRunNumber  string
	UniqueRunnerID   string

	StoreDriver string
	DBUrl       string
	SQLitePath  string

	// Feature-flag snapshots
	LDFlag_CORSHighSecurity   bool
	LDFlag_SeedDbWithTestData bool
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second

	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"

	FlagCORSHighSecurity   = "cors_high_security"
	FlagSeedDbWithTestData = "seed_db_with_test_data"
)

// build-time overrides, set with -ldflags
var (
	AppName             = "application-service"
	UniqueRunNumber     string
	UniqueRunnerID      string
	LDServerContextKey  string
	LDServerContextKind string
)

// LoadConfig reads the environment, merges Bitwarden secrets when an access
// token is present and snapshots the LaunchDarkly flags. Any failure is fatal.
func LoadConfig() *Config {
	//----------------------------------------------------------------------
	// 1) Validate required ldflags
	//----------------------------------------------------------------------
	if AppName == "" {
		utils.Logger.Fatal("AppName was not provided via ldflags")
	}
	utils.Logger.Info("Loading config for app: ", AppName)

	//----------------------------------------------------------------------
	// 2) Runtime environment vars
	//----------------------------------------------------------------------
	v := viper.New()
	v.AutomaticEnv()

	//----------------------------------------------------------------------
	// 3) BWS secrets (DB_URL, LD_SDK_KEY), env wins
	//----------------------------------------------------------------------
	if os.Getenv("BWS_ACCESS_TOKEN") != "" {
		if err := applyBWSSecrets(v); err != nil {
			utils.Logger.WithError(err).Fatal("Fetch BWS secrets")
		}
	} else {
		utils.Logger.Debug("BWS_ACCESS_TOKEN not set; skipping Bitwarden secrets")
	}

	cfg, err := loadConfig(v)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	//----------------------------------------------------------------------
	// 4) LaunchDarkly client & flags
	//----------------------------------------------------------------------
	if sdkKey := v.GetString("LD_SDK_KEY"); sdkKey != "" {
		if err := cfg.loadLDFlags(sdkKey); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to load LaunchDarkly flags")
		}
	} else {
		utils.Logger.Warn("LD_SDK_KEY not set; feature flags read from env")
	}

	utils.Logger.Infof("Loaded config for %s (%s), store=%s", cfg.AppName, cfg.Env, cfg.StoreDriver)
	return cfg
}

// loadConfig builds a Config from v without touching the network. Flag
// snapshots take their env fallbacks here.
func loadConfig(v *viper.Viper) (*Config, error) {
	v.SetDefault("RESUME_PATH", "/resume")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("SQLITE_PATH", "applications.db")
	v.SetDefault("CORS_HIGH_SECURITY", true)
	v.SetDefault("SEED_DB_WITH_TEST_DATA", false)

	cfg := &Config{
		OrganizationName:          OrganizationName,
		AppName:                   AppName,
		Env:                       strings.TrimSpace(v.GetString("ENV")),
		AppPort:                   strings.TrimSpace(v.GetString("APP_PORT")),
		AppUrl:                    strings.TrimRight(strings.TrimSpace(v.GetString("APP_URL_FROM_ANYWHERE")), "/"),
		ResumePath:                v.GetString("RESUME_PATH"),
		UniqueRunNumber:           UniqueRunNumber,
		UniqueRunnerID:            UniqueRunnerID,
		StoreDriver:               strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		DBUrl:                     v.GetString("DB_URL"),
		SQLitePath:                v.GetString("SQLITE_PATH"),
		LDFlag_CORSHighSecurity:   v.GetBool("CORS_HIGH_SECURITY"),
		LDFlag_SeedDbWithTestData: v.GetBool("SEED_DB_WITH_TEST_DATA"),
	}

	if cfg.Env == "" {
		return nil, errors.New("ENV env var is missing")
	}
	if cfg.AppPort == "" {
		return nil, errors.New("APP_PORT env var is missing")
	}
	if cfg.AppUrl == "" {
		return nil, errors.New("APP_URL_FROM_ANYWHERE env var is missing")
	}
	if _, err := url.Parse(cfg.ResumeBaseURL()); err != nil {
		return nil, fmt.Errorf("invalid resume url: %w", err)
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DBUrl == "" {
			return nil, errors.New("DB_URL is required for the postgres store")
		}
	case StoreDriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

// ResumeBaseURL is the absolute URL of the form entry point that resume
// links are built on.
func (c *Config) ResumeBaseURL() string {
	p := c.ResumePath
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return c.AppUrl + p
}

func applyBWSSecrets(v *viper.Viper) error {
	client, err := utils.NewBWSSecretsClient()
	if err != nil {
		return err
	}
	defer client.Close()

	env := v.GetString("ENV")
	if env == "" {
		return errors.New("ENV env var is missing")
	}
	bwsProjectName := fmt.Sprintf("%s-%s", AppName, env)
	utils.Logger.Debugf("Fetching secrets from BWS for %s", bwsProjectName)

	secrets, err := client.GetBWSSecrets(bwsProjectName)
	if err != nil {
		return err
	}
	for _, key := range []string{"DB_URL", "LD_SDK_KEY"} {
		if val, ok := secrets[key]; ok && val != "" {
			v.SetDefault(key, val)
		}
	}
	return nil
}

func (c *Config) loadLDFlags(sdkKey string) error {
	if LDServerContextKey == "" || LDServerContextKind == "" {
		return errors.New("LDServerContextKey and LDServerContextKind must be provided via ldflags")
	}

	ldClient, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		return fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	defer ldClient.Close()
	if !ldClient.Initialized() {
		return errors.New("LaunchDarkly client failed to initialize")
	}

	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	corsHigh, err := ldClient.BoolVariation(FlagCORSHighSecurity, ctx, true)
	if err != nil {
		return fmt.Errorf("%s flag: %w", FlagCORSHighSecurity, err)
	}
	utils.Logger.Debugf("%s flag: %t", FlagCORSHighSecurity, corsHigh)

	seed, err := ldClient.BoolVariation(FlagSeedDbWithTestData, ctx, false)
	if err != nil {
		return fmt.Errorf("%s flag: %w", FlagSeedDbWithTestData, err)
	}
	utils.Logger.Debugf("%s flag: %t", FlagSeedDbWithTestData, seed)

	c.LDFlag_CORSHighSecurity = corsHigh
	c.LDFlag_SeedDbWithTestData = seed
	return nil
}
