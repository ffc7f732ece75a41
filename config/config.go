package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver   string // postgres | sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeZone string
	SQLitePath string

	RedisAddr     string // rỗng = không dùng cache
	RedisPassword string
	RedisDB       int

	CORSOrigins  []string
	CookieSecure bool
}

// Load đọc .env (nếu có) rồi lấy cấu hình từ biến môi trường.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Không tìm thấy file .env, dùng biến môi trường hệ thống")
	}

	cfg := &Config{
		Port:    GetEnv("PORT", "8080"),
		GinMode: GetEnv("GIN_MODE", "debug"),

		DBDriver:   strings.ToLower(GetEnv("DB_DRIVER", "postgres")),
		DBHost:     GetEnv("DB_HOST", "localhost"),
		DBPort:     GetEnv("DB_PORT", "5432"),
		DBUser:     GetEnv("DB_USER", "survey"),
		DBPassword: GetEnv("DB_PASSWORD", ""),
		DBName:     GetEnv("DB_NAME", "survey"),
		DBSSLMode:  GetEnv("DB_SSLMODE", "disable"),
		DBTimeZone: GetEnv("DB_TIMEZONE", "Asia/Ho_Chi_Minh"),
		SQLitePath: GetEnv("SQLITE_PATH", "survey.db"),

		RedisAddr:     GetEnv("REDIS_ADDR", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CORSOrigins:  splitList(GetEnv("CORS_ORIGINS", "http://localhost:5173")),
		CookieSecure: GetEnv("COOKIE_SECURE", "false") == "true",
	}

	// utils/jwt.go đọc JWT_SECRET / JWT_REFRESH_SECRET lúc ký token
	if GetEnv("JWT_SECRET", "") == "" {
		log.Println("JWT_SECRET chưa được thiết lập!")
	}
	return cfg
}

func GetEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(GetEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
