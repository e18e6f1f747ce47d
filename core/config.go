package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the runtime settings for the whole app. It is loaded once at
// startup and passed down explicitly; components must not reach for ambient globals.
type Config struct {
	Env      string
	Debug    bool
	TestMode bool
	AppName  string
	Build    string
	Hostname string

	SecretKey []byte

	RollbarToken string

	// StoreTimeout bounds every call to the backing document store.
	StoreTimeout time.Duration
	// MaterialCacheTTL is the staleness window of the material directory cache.
	MaterialCacheTTL time.Duration
	// NoticeTimeout is how long a write-success notice stays visible.
	NoticeTimeout time.Duration

	Database struct {
		MongoURI    string
		MongoName   string
		PostgresURL string
	}
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Darasa")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "f+y1t=8kp)0e&0u4%xj#2m(w!5vq^7zr$9a_cb6ns3dg-hl")
	conf.SetDefault("storeTimeout", 10*time.Second)
	conf.SetDefault("materialCacheTTL", time.Minute)
	conf.SetDefault("noticeTimeout", 3*time.Second)
	conf.SetDefault("database.mongoURI", "mongodb://localhost:27017")
	conf.SetDefault("database.mongoName", "darasa")
	conf.SetDefault("database.postgresURL", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	hostname, _ := os.Hostname()

	cfg := &Config{
		Env:              env,
		Debug:            conf.GetBool("debug"),
		TestMode:         testMode,
		AppName:          conf.GetString("appName"),
		Build:            conf.GetString("build"),
		Hostname:         hostname,
		SecretKey:        []byte(conf.GetString("secretKey")),
		RollbarToken:     conf.GetString("rollbarToken"),
		StoreTimeout:     conf.GetDuration("storeTimeout"),
		MaterialCacheTTL: conf.GetDuration("materialCacheTTL"),
		NoticeTimeout:    conf.GetDuration("noticeTimeout"),
	}
	cfg.Database.MongoURI = conf.GetString("database.mongoURI")
	cfg.Database.MongoName = conf.GetString("database.mongoName")
	cfg.Database.PostgresURL = conf.GetString("database.postgresURL")
	return cfg
}
