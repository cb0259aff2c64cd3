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
		Debug            bool
		TestMode         bool
		AppName          string
		Env              string
		Build            string
		SecretKey        string
		DefaultFromEmail mail.Address
		FrontendBaseURL  string
		WorkDir          string
		RollbarToken     string
		SendgridApiKey   string
		Location         *time.Location // local calendar used by date filters and reports

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
		Report   ReportConfig
	}

	ServerConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | inmem
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
		Backend       string // local | oss
		LocalDir      string
		PublicBaseURL string
		OSS           OSSConfig
	}

	OSSConfig struct {
		Endpoint        string
		AccessKeyID     string
		AccessKeySecret string
		Bucket          string
		PublicBase      string
	}

	ReportConfig struct {
		FontPath     string
		BoldFontPath string
		LogoPath     string
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// NewConfig loads the app configuration from the environment.
// ENV selects the environment (DEV by default) and the optional config/.env.<env> file.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	wd := Getwd()

	// defaults
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "Taqyeem")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "k2v@8q-x!c3s#t9)w_e0+zp&f5^y1r(n7m$a4o6l*d%bu=jh")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("timeZone", "Asia/Dubai")
	v.SetDefault("serverHost", "0.0.0.0:8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "taqyeem")
	v.SetDefault("dbUser", "taqyeem")
	v.SetDefault("dbPassword", "taqyeem")
	v.SetDefault("dbDisableTLS", env == "DEV" || env == "TEST")
	v.SetDefault("storageBackend", "local")
	v.SetDefault("storageLocalDir", filepath.Join(wd, "media"))
	v.SetDefault("storagePublicBaseURL", "http://localhost:8000/media")
	v.SetDefault("reportFontPath", "") // empty: the embedded font
	v.SetDefault("reportBoldFontPath", "")
	v.SetDefault("reportLogoPath", filepath.Join(wd, "assets", "images", "logo.png"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.SetEnvPrefix(env)
	v.AutomaticEnv()

	loc, err := time.LoadLocation(v.GetString("timeZone"))
	if err != nil {
		log.Printf("config: unknown time zone %q, falling back to local: %v", v.GetString("timeZone"), err)
		loc = time.Local
	}

	appName := v.GetString("appName")
	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          appName,
		Env:              env,
		Build:            v.GetString("build"),
		SecretKey:        v.GetString("secretKey"),
		DefaultFromEmail: mail.Address{Name: appName, Address: v.GetString("defaultFromEmail")},
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		WorkDir:          wd,
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		Location:         loc,
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			DebugHost:          v.GetString("serverDebugHost"),
			ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
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
			Backend:       v.GetString("storageBackend"),
			LocalDir:      v.GetString("storageLocalDir"),
			PublicBaseURL: v.GetString("storagePublicBaseURL"),
			OSS: OSSConfig{
				Endpoint:        v.GetString("ossEndpoint"),
				AccessKeyID:     v.GetString("ossAccessKeyID"),
				AccessKeySecret: v.GetString("ossAccessKeySecret"),
				Bucket:          v.GetString("ossBucket"),
				PublicBase:      v.GetString("ossPublicBase"),
			},
		},
		Report: ReportConfig{
			FontPath:     v.GetString("reportFontPath"),
			BoldFontPath: v.GetString("reportBoldFontPath"),
			LogoPath:     v.GetString("reportLogoPath"),
		},
	}
}

// Getwd finds the project root, the closest parent directory holding go.mod.
// go-test changes the working directory to the package being tested, so os.Getwd alone is not enough.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd // not running from source, e.g. a deployed binary
		}
		currDir = newDir
	}
}
