package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Simulation SimulationConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Port         string
	AllowOrigins string
}

// DriverNone - DB 없이 실행
const DriverNone = "none"

type DatabaseConfig struct {
	Driver     string // "mysql" | "sqlite" | "none"
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SQLitePath string
}

type RedisConfig struct {
	Addr     string // 비어 있으면 스냅샷 발행 비활성화
	Password string
	DB       int
}

type SimulationConfig struct {
	TickInterval time.Duration
	DatasetPath  string // 시작 시 로드할 데이터셋 JSON
	DemoSeed     int64
	LoadDemo     bool
}

type LoggingConfig struct {
	FlushSize     int
	FlushInterval time.Duration
}

// Load - .env 파일과 환경 변수에서 설정 로드
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env 파일을 찾을 수 없습니다. 환경 변수를 사용합니다.")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173, http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "mysql"),
			Host:       getEnv("MYSQL_HOST", "localhost"),
			Port:       getEnvAsInt("MYSQL_PORT", 3306),
			User:       getEnv("MYSQL_USER", ""),
			Password:   getEnv("MYSQL_PASSWORD", ""),
			Name:       getEnv("MYSQL_DATABASE", "huntian"),
			SQLitePath: getEnv("SQLITE_PATH", "huntian.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Simulation: SimulationConfig{
			TickInterval: getEnvAsDuration("SIM_TICK_INTERVAL", 50*time.Millisecond),
			DatasetPath:  getEnv("SIM_DATASET_PATH", ""),
			DemoSeed:     int64(getEnvAsInt("SIM_DEMO_SEED", 42)),
			LoadDemo:     getEnvAsBool("SIM_LOAD_DEMO", true),
		},
		Logging: LoggingConfig{
			FlushSize:     getEnvAsInt("LOG_FLUSH_SIZE", 50),
			FlushInterval: getEnvAsDuration("LOG_FLUSH_INTERVAL", 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Database.Driver {
	case "mysql":
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Password == "" || c.Database.Name == "" {
			return fmt.Errorf("MySQL 환경 변수가 모두 설정되지 않았습니다: MYSQL_HOST, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	case DriverNone:
		// DB 없이 실행 (run 은 메모리에만, 로그는 버림)
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %q", c.Database.Driver)
	}

	if c.Simulation.TickInterval <= 0 {
		return fmt.Errorf("SIM_TICK_INTERVAL must be positive")
	}
	if c.Logging.FlushSize <= 0 {
		return fmt.Errorf("LOG_FLUSH_SIZE must be positive")
	}

	return nil
}

// Enabled - DB_DRIVER=none 이 아니면 true
func (d DatabaseConfig) Enabled() bool {
	return d.Driver != DriverNone
}

// DSN - MySQL 접속 문자열
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid bool for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}
