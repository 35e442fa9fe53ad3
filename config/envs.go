package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP                string   // Host IP for the server
	RESTPort              int      // Port for the REST API
	GinMode               string   // Mode for the Gin framework (e.g., release, debug, test)
	AllowedOrigins        []string // CORS origins; empty allows all
	JWTSecret             string   // Secret key for JWT signing
	JWTIssuer             string   // Issuer claim for JWTs
	TokenTTLHours         int      // Lifetime of guest tokens
	MazeSize              int      // Default rows and columns of a new maze
	MazeAlgorithm         string   // Default generator (wilson, backtracker)
	SessionIdleMinutes    int      // Idle games older than this are discarded
	DBHost                string   // Hostname or IP address for the database; empty disables saved mazes
	DBPort                int      // Port number for the database
	DBUser                string   // Username for the database
	DBPassword            string   // Password for the database
	DBName                string   // Name of the database
	RedisAddr             string   // Redis address; empty disables the leaderboard
	RedisPassword         string   // Redis password
	LeaderboardTTLSeconds int      // Lifetime of a leaderboard; 0 keeps it forever
	LogLevel              string   // Minimum log level
	LogFile               string   // Optional rotating log file
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	c := Config{
		HostIP:                getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort:              mustGetEnvAsInt("REST_PORT"),
		GinMode:               getEnvWithDefault("GIN_MODE", "release"),
		AllowedOrigins:        splitList(getEnvWithDefault("ALLOWED_ORIGINS", "")),
		JWTSecret:             mustGetEnv("JWT_SECRET"),
		JWTIssuer:             mustGetEnv("JWT_ISSUER"),
		TokenTTLHours:         getEnvAsIntWithDefault("TOKEN_TTL_HOURS", 24),
		MazeSize:              getEnvAsIntWithDefault("MAZE_SIZE", 10),
		MazeAlgorithm:         getEnvWithDefault("MAZE_ALGORITHM", "wilson"),
		SessionIdleMinutes:    getEnvAsIntWithDefault("SESSION_IDLE_MINUTES", 30),
		DBHost:                getEnvWithDefault("DB_HOST", ""),
		RedisAddr:             getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword:         getEnvWithDefault("REDIS_PASS", ""),
		LeaderboardTTLSeconds: getEnvAsIntWithDefault("LEADERBOARD_TTL_SECONDS", 0),
		LogLevel:              getEnvWithDefault("LOG_LEVEL", "info"),
		LogFile:               getEnvWithDefault("LOG_FILE", ""),
	}

	// The remaining database settings are required once a host is given.
	if c.DBHost != "" {
		c.DBPort = mustGetEnvAsInt("DB_PORT")
		c.DBUser = mustGetEnv("DB_USER")
		c.DBPassword = mustGetEnv("DB_PASS")
		c.DBName = mustGetEnv("DB_NAME")
	}

	return c
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("[APP] [FATAL] Environment variable %s is not set", key)
	}
	return value
}

// mustGetEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if not set or cannot be parsed.
func mustGetEnvAsInt(key string) int {
	valueStr := mustGetEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if _, exists := os.LookupEnv(key); !exists {
		return defaultValue
	}
	return mustGetEnvAsInt(key)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
