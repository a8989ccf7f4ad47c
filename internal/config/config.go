package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zhouzirui/kairn/backend/internal/model/chat"
)

// Store drivers.
const (
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Log    LogConfig
	Chat   ChatConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	chatCfg, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Store: store, Log: logCfg, Chat: chatCfg}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// StoreConfig 描述身份状态的持久化配置。
type StoreConfig struct {
	Driver     string
	Path       string
	SyncWrites bool
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level string
	JSON  bool
	File  string
}

// ChatConfig 描述聊天界面挂载参数。
type ChatConfig struct {
	Layout    chat.Layout
	QueueSize int
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

func loadStoreConfig() (StoreConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("KAIRN_STORE_DRIVER", DriverBadger))
	if driver != DriverBadger && driver != DriverMemory {
		return StoreConfig{}, fmt.Errorf("invalid KAIRN_STORE_DRIVER value %q", driver)
	}

	syncWrites, err := parseBoolEnv("KAIRN_STORE_SYNC_WRITES", false)
	if err != nil {
		return StoreConfig{}, err
	}

	return StoreConfig{
		Driver:     driver,
		Path:       getEnvOrDefault("KAIRN_STORE_PATH", "./data/identity"),
		SyncWrites: syncWrites,
	}, nil
}

func loadLogConfig() (LogConfig, error) {
	jsonLogs, err := parseBoolEnv("KAIRN_LOG_JSON", false)
	if err != nil {
		return LogConfig{}, err
	}

	return LogConfig{
		Level: getEnvOrDefault("KAIRN_LOG_LEVEL", "info"),
		JSON:  jsonLogs,
		File:  strings.TrimSpace(os.Getenv("KAIRN_LOG_FILE")),
	}, nil
}

func loadChatConfig() (ChatConfig, error) {
	layout := chat.DefaultLayoutParams()

	navSize, err := parseOptionalIntEnv("KAIRN_NAV_COLLAPSED_SIZE")
	if err != nil {
		return ChatConfig{}, err
	}
	if navSize != nil {
		layout.NavCollapsedSize = *navSize
	}

	defaultLayout, err := parseIntListEnv("KAIRN_DEFAULT_LAYOUT")
	if err != nil {
		return ChatConfig{}, err
	}
	if defaultLayout != nil {
		layout.DefaultLayout = defaultLayout
	}

	queueSize := 64
	if override, err := parseOptionalIntEnv("KAIRN_QUEUE_SIZE"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 1 {
			queueSize = 1
		} else {
			queueSize = *override
		}
	}

	return ChatConfig{Layout: layout, QueueSize: queueSize}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseIntListEnv(key string) ([]int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
		}
		out = append(out, n)
	}
	return out, nil
}
