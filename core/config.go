package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName          string
		Build            string
		Env              string // DEV (local; default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		WorkDir          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridApiKey   string

		Server    ServerConfig
		Database  DatabaseConfig
		Storage   StorageConfig
		Nutrients NutrientsConfig
		Payment   PaymentConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	StorageConfig struct {
		Driver        string // local | s3
		LocalDir      string
		Bucket        string
		Region        string
		PublicBaseURL string
		MaxUploadSize int64
	}

	NutrientsConfig struct {
		BaseURL string
		ApiKey  string
		Timeout time.Duration
	}

	PaymentConfig struct {
		BaseURL      string
		MerchantID   string
		Secret       string
		ReturnURL    string
		PollInterval time.Duration
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig loads the configuration from the environment (prefixed with ENV)
// and the optional `config/.env.<env>` file.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err = os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "SchoolOps")
	v.SetDefault("build", "dev")
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("workDir", wd)
	v.SetDefault("secretKey", "7k#vq2-m!c8(z@w0p^s4$fn_ehr3yx&d+lu%1ja=o9g6tbi")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("defaultFromName", "SchoolOps")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "schoolops")
	v.SetDefault("dbUser", "schoolops")
	v.SetDefault("dbPassword", "schoolops")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", env == "DEV" || env == "TEST")

	v.SetDefault("storageDriver", "local")
	v.SetDefault("storageLocalDir", filepath.Join(wd, "uploads"))
	v.SetDefault("storageBucket", "")
	v.SetDefault("storageRegion", "")
	v.SetDefault("storagePublicBaseURL", "")
	v.SetDefault("storageMaxUploadSize", int64(10<<20))

	v.SetDefault("nutrientsBaseURL", "http://localhost:9100")
	v.SetDefault("nutrientsApiKey", "")
	v.SetDefault("nutrientsTimeout", 60*time.Second)

	v.SetDefault("paymentBaseURL", "http://localhost:9200")
	v.SetDefault("paymentMerchantID", "")
	v.SetDefault("paymentSecret", "")
	v.SetDefault("paymentReturnURL", "http://localhost:3000/tuition/payment-result")
	v.SetDefault("paymentPollInterval", 5*time.Second)

	v.AutomaticEnv()

	return &Config{
		AppName:         v.GetString("appName"),
		Build:           v.GetString("build"),
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		WorkDir:         v.GetString("workDir"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{
			Name:    v.GetString("defaultFromName"),
			Address: v.GetString("defaultFromEmail"),
		},
		RollbarToken:   v.GetString("rollbarToken"),
		SendgridApiKey: v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Address:                   v.GetString("serverAddress"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
			PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Storage: StorageConfig{
			Driver:        v.GetString("storageDriver"),
			LocalDir:      v.GetString("storageLocalDir"),
			Bucket:        v.GetString("storageBucket"),
			Region:        v.GetString("storageRegion"),
			PublicBaseURL: v.GetString("storagePublicBaseURL"),
			MaxUploadSize: v.GetInt64("storageMaxUploadSize"),
		},
		Nutrients: NutrientsConfig{
			BaseURL: v.GetString("nutrientsBaseURL"),
			ApiKey:  v.GetString("nutrientsApiKey"),
			Timeout: v.GetDuration("nutrientsTimeout"),
		},
		Payment: PaymentConfig{
			BaseURL:      v.GetString("paymentBaseURL"),
			MerchantID:   v.GetString("paymentMerchantID"),
			Secret:       v.GetString("paymentSecret"),
			ReturnURL:    v.GetString("paymentReturnURL"),
			PollInterval: v.GetDuration("paymentPollInterval"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests; nothing is read from the environment.
func NewTestConfig() *Config {
	return &Config{
		AppName:          "SchoolOps",
		Build:            "test",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        "secret",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "SchoolOps", Address: "noreply@localhost"},
		Server: ServerConfig{
			Host:                      "localhost",
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		},
		Storage: StorageConfig{Driver: "local", MaxUploadSize: 10 << 20},
		Payment: PaymentConfig{PollInterval: 5 * time.Second},
	}
}
