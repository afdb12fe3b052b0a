package configuration

import (
	"fmt"
	"os"
	"strconv"

	"instagram-relay/infrastructure/logger"

	"github.com/spf13/viper"
)

// minStateSecretLen is the minimum length for the state-signing secret.
// Anything shorter undermines the HMAC and the process refuses to start.
const minStateSecretLen = 32

type Config struct {
	App         App         `json:"app"`
	Instagram   Instagram   `json:"instagram"`
	Downstream  Downstream  `json:"downstream"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Cors        Cors        `json:"cors"`
}

type App struct {
	Port      int    `json:"port"`
	SecretKey string `json:"secretKey"`
}

// Instagram holds the platform app credentials and webhook secrets.
type Instagram struct {
	AppID        string `json:"appId"`
	AppSecret    string `json:"appSecret"`
	RedirectURI  string `json:"redirectUri"`
	VerifyToken  string `json:"verifyToken"`
	StateSecret  string `json:"stateSecret"`
	AuthBaseURL  string `json:"authBaseUrl"`
	TokenBaseURL string `json:"tokenBaseUrl"`
	GraphBaseURL string `json:"graphBaseUrl"`
}

// Downstream is the internal backend webhook events are forwarded to.
type Downstream struct {
	BaseURL            string `json:"baseUrl"`
	APIKey             string `json:"apiKey"`
	DefaultCallbackURL string `json:"defaultCallbackUrl"`
}

type Database struct {
	Psql Db `json:"psql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Cors struct {
	AllowOrigins []string `json:"allowOrigins"`
}

var C Config

func init() {
	Reload()
}

// Reload re-reads the config file and reapplies env overrides. main calls it
// again after loading .env files, which land after package init.
func Reload() {
	LoadConfig()
	initApp(&C)
	initInstagram(&C)
	initDownstream(&C)
	initDatabase(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initApp(C *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10002
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10002
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; internal API authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initInstagram(C *Config) {
	if v := os.Getenv("IG_APP_ID"); v != "" {
		C.Instagram.AppID = v
	}
	if v := os.Getenv("IG_APP_SECRET"); v != "" {
		C.Instagram.AppSecret = v
	}
	if v := os.Getenv("IG_REDIRECT_URI"); v != "" {
		C.Instagram.RedirectURI = v
	}
	if v := os.Getenv("IG_VERIFY_TOKEN"); v != "" {
		C.Instagram.VerifyToken = v
	}
	if v := os.Getenv("IG_STATE_SECRET"); v != "" {
		C.Instagram.StateSecret = v
	}
	if C.Instagram.AuthBaseURL == "" {
		C.Instagram.AuthBaseURL = "https://www.instagram.com"
	}
	if C.Instagram.TokenBaseURL == "" {
		C.Instagram.TokenBaseURL = "https://api.instagram.com"
	}
	if C.Instagram.GraphBaseURL == "" {
		C.Instagram.GraphBaseURL = "https://graph.instagram.com"
	}
}

func initDownstream(C *Config) {
	if v := os.Getenv("DOWNSTREAM_BASE_URL"); v != "" {
		C.Downstream.BaseURL = v
	}
	if v := os.Getenv("DOWNSTREAM_API_KEY"); v != "" {
		C.Downstream.APIKey = v
	}
	if v := os.Getenv("DEFAULT_CALLBACK_URL"); v != "" {
		C.Downstream.DefaultCallbackURL = v
	}
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}
}

// Validate enforces the startup invariants: a usable state-signing secret and
// the credentials the OAuth and webhook flows cannot run without.
func Validate(c *Config) error {
	if len(c.Instagram.StateSecret) < minStateSecretLen {
		return fmt.Errorf("instagram.stateSecret must be at least %d bytes, got %d", minStateSecretLen, len(c.Instagram.StateSecret))
	}
	if c.Instagram.AppID == "" || c.Instagram.AppSecret == "" {
		return fmt.Errorf("instagram.appId and instagram.appSecret are required")
	}
	if c.Instagram.RedirectURI == "" {
		return fmt.Errorf("instagram.redirectUri is required")
	}
	if c.Instagram.VerifyToken == "" {
		return fmt.Errorf("instagram.verifyToken is required")
	}
	return nil
}
