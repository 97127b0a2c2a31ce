package pkg

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 运行配置，全部来自环境变量（可选 .env 文件）
type Config struct {
	ServerAddr    string
	WebOrigin     string
	MySQLDSN      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KafkaBrokers  []string
	KafkaTopic    string
	SMTP          SMTPConfig
	ResetSecret   string
}

func LoadConfig() *Config {
	// 没有 .env 文件也不报错，允许直接用环境变量
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr:    getenv("SERVER_ADDR", ":4000"),
		WebOrigin:     getenv("WEB_ORIGIN", "http://localhost:3000"),
		MySQLDSN:      getenv("MYSQL_DSN", "user:password@tcp(127.0.0.1:3306)/plume?charset=utf8mb4&parseTime=True"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		KafkaTopic:    getenv("KAFKA_TOPIC", "plume.events"),
		ResetSecret:   getenv("RESET_SECRET", "reset-secret"),
	}
	if db, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		cfg.RedisDB = db
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = []string{brokers}
	}

	cfg.SMTP = SMTPConfig{
		Host:     getenv("SMTP_HOST", "localhost"),
		Port:     587,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getenv("SMTP_FROM", "Plume <no-reply@plume.local>"),
	}
	if port, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil {
		cfg.SMTP.Port = port
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
