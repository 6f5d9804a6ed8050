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

type Config struct {
	Debug            bool
	TestMode         bool
	Env              string
	Build            string
	AppName          string
	SecretKey        string
	WorkDir          string
	FrontendBaseURL  string
	RollbarToken     string
	SendgridApiKey   string
	DefaultFromEmail mail.Address

	API           APIConfig
	Server        ServerConfig
	Database      DatabaseConfig
	Attempts      AttemptsConfig
	Notifications NotificationsConfig
	Student       StudentConfig
}

// APIConfig points to the upstream SkillFlow REST services.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration // 0: no client-side timeout
}

type ServerConfig struct {
	Host            string
	DebugHost       string
	ShutdownTimeout time.Duration
	SessionTTL      time.Duration
	SessionStore    string // "postgres" or "memory"
	SecureCookie    bool
	DisableReqLogs  bool
}

type DatabaseConfig struct {
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

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

type AttemptsConfig struct {
	TTL time.Duration
}

type NotificationsConfig struct {
	ResultEmail bool
}

// StudentConfig holds settings of the terminal client.
type StudentConfig struct {
	SessionFile string
}

// NewConfig loads the configuration from defaults, the `.env.<env>` file (if any) and the environment.
// ENV selects the environment: DEV (default), TEST, QA, PROD. Variables are prefixed with it, ex: DEV_DEBUG.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "SkillFlow")
	v.SetDefault("secretKey", "q7m2-ax)ufn$+31=kd&zwpe9(g!r)#*b8(#tl4c^$hoem5pvx")
	v.SetDefault("frontendBaseURL", "http://localhost:8000")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "SkillFlow <noreply@localhost>")

	v.SetDefault("api.baseURL", "http://localhost:8888")
	v.SetDefault("api.timeout", time.Duration(0))

	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.sessionTTL", 7*24*time.Hour)
	v.SetDefault("server.sessionStore", "postgres")
	v.SetDefault("server.secureCookie", false)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "skillflow_web")
	v.SetDefault("database.user", "skillflow")
	v.SetDefault("database.password", "skillflow")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("attempts.ttl", 2*time.Hour)
	v.SetDefault("notifications.resultEmail", false)
	v.SetDefault("student.sessionFile", defaultSessionFile())

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		Env:             env,
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		WorkDir:         wd,
		FrontendBaseURL: strings.TrimRight(v.GetString("frontendBaseURL"), "/"),
		RollbarToken:    v.GetString("rollbarToken"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		API: APIConfig{
			BaseURL: strings.TrimRight(v.GetString("api.baseURL"), "/"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			SessionTTL:      v.GetDuration("server.sessionTTL"),
			SessionStore:    v.GetString("server.sessionStore"),
			SecureCookie:    v.GetBool("server.secureCookie"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Attempts:      AttemptsConfig{TTL: v.GetDuration("attempts.ttl")},
		Notifications: NotificationsConfig{ResultEmail: v.GetBool("notifications.resultEmail")},
		Student:       StudentConfig{SessionFile: v.GetString("student.sessionFile")},
	}

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}
	conf.DefaultFromEmail = *from
	return conf
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "skillflow", "session.yaml")
}
