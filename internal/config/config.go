package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var (
	instance *Config
	once     sync.Once
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string

	// CORS
	CorsOrigins string

	// Base domain for generated subdomains (e.g. "sitelaunch.app" results in "<label>.sitelaunch.app")
	BaseDomain string

	// Public host used for raw host:port fallback URLs when domain wiring fails
	PublicHost string

	// Per-user limit on permanent generated subdomains
	SubdomainLimit int

	// Reverse proxy (nginx running as a container on the shared network)
	ProxyConfigDir      string
	ProxyContainer      string
	WildcardCertPath    string
	WildcardCertKeyPath string

	// Site generation
	SitesConfigRoot    string
	GeneratedSitesRoot string
	UploadsRoot        string
	BuilderScript      string
	BuilderWorkdir     string
	BuildTimeoutMin    int

	// Container runtime
	DockerNetwork string
}

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()

		instance = &Config{
			Port:                getEnv("PORT", "8080"),
			DatabaseURL:         getEnv("DATABASE_URL", ""),
			JWTSecret:           getEnv("JWT_SECRET", ""),
			RedisHost:           getEnv("REDIS_HOST", "localhost"),
			RedisPort:           getEnv("REDIS_PORT", "6379"),
			RedisUsername:       getEnv("REDIS_USERNAME", ""),
			RedisPassword:       getEnv("REDIS_PASSWORD", ""),
			CorsOrigins:         getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"),
			BaseDomain:          getEnv("BASE_DOMAIN", ""),
			PublicHost:          getEnv("PUBLIC_HOST", "localhost"),
			SubdomainLimit:      getEnvInt("SUBDOMAIN_LIMIT", 10),
			ProxyConfigDir:      getEnv("PROXY_CONFIG_DIR", "/etc/nginx/conf.d/sites"),
			ProxyContainer:      getEnv("PROXY_CONTAINER", "sitelaunch-proxy"),
			WildcardCertPath:    getEnv("WILDCARD_CERT_PATH", "/etc/nginx/certs/wildcard.crt"),
			WildcardCertKeyPath: getEnv("WILDCARD_CERT_KEY_PATH", "/etc/nginx/certs/wildcard.key"),
			SitesConfigRoot:     getEnv("SITES_CONFIG_ROOT", "/var/lib/sitelaunch/configs"),
			GeneratedSitesRoot:  getEnv("GENERATED_SITES_ROOT", "/var/lib/sitelaunch/generated"),
			UploadsRoot:         getEnv("UPLOADS_ROOT", "/var/lib/sitelaunch/uploads"),
			BuilderScript:       getEnv("BUILDER_SCRIPT", "/opt/sitelaunch/builder/build.sh"),
			BuilderWorkdir:      getEnv("BUILDER_WORKDIR", "/opt/sitelaunch/builder"),
			BuildTimeoutMin:     getEnvInt("BUILD_TIMEOUT_MINUTES", 10),
			DockerNetwork:       getEnv("DOCKER_NETWORK", "sitelaunch-net"),
		}
	})
	return instance
}

// Get returns the loaded config instance
func Get() *Config {
	return instance
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
