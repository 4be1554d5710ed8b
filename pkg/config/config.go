package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config 应用配置结构
type Config struct {
	// 环境配置
	Environment string
	Port        string

	// 数据库配置
	UseLocalDB  bool
	PostgresDSN string
	LocalDataDir string

	// JWT配置
	JWTSecret string

	// URL配置
	BaseURL     string // 服务自身地址
	FrontendURL string // 公开 token 链接指向的前端地址

	// SMTP配置（留空则只打日志不真正发信）
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// 功能开关
	HiringEnabled      bool // 招聘模块整体开关，关闭时相关端点降级为 501/空列表
	AutoChainContracts bool // 表单审批通过后自动创建合同（默认人工操作）

	// CORS配置
	AllowedOrigins []string

	// 调试配置
	Debug bool
}

// LoadConfig 加载配置
func LoadConfig() *Config {
	// 根据环境加载对应的 .env 文件
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development" // 默认开发环境
	}

	// 按优先级加载环境文件
	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	config := &Config{
		// 默认值
		Environment:  getEnvWithDefault("ENVIRONMENT", "development"),
		Port:         getEnvWithDefault("PORT", "4000"),
		UseLocalDB:   getEnvBool("USE_LOCAL_DB", true),
		LocalDataDir: getEnvWithDefault("LOCAL_DATA_DIR", "./data"),
		JWTSecret:    getEnvWithDefault("JWT_SECRET", "your-secret-key-change-in-production"),
		Debug:        getEnvBool("DEBUG", false),

		HiringEnabled:      getEnvBool("HIRING_ENABLED", true),
		AutoChainContracts: getEnvBool("AUTO_CHAIN_CONTRACTS", false),
	}

	// 数据库配置
	// Trim whitespace to avoid trailing spaces/newlines from env sources
	config.PostgresDSN = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))

	// URL配置
	config.BaseURL = strings.TrimSpace(getEnvWithDefault("BASE_URL", "http://localhost:4000"))
	config.FrontendURL = strings.TrimSpace(getEnvWithDefault("FRONTEND_URL", "http://localhost:4080"))

	// SMTP配置
	config.SMTPHost = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	config.SMTPPort = getEnvWithDefault("SMTP_PORT", "587")
	config.SMTPUser = strings.TrimSpace(os.Getenv("SMTP_USER"))
	config.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	config.SMTPFrom = strings.TrimSpace(getEnvWithDefault("SMTP_FROM", "hr@localhost"))

	// CORS配置
	allowedOrigins := getEnvWithDefault("ALLOWED_ORIGINS", "*")
	if allowedOrigins == "*" {
		config.AllowedOrigins = []string{"*"}
	} else {
		config.AllowedOrigins = strings.Split(allowedOrigins, ",")
	}

	// 环境特定配置
	if config.Environment == "production" {
		// 生产环境强制使用外部数据库
		if config.PostgresDSN != "" {
			config.UseLocalDB = false
		} else {
			fmt.Println("WARNING: Production environment using local file database. Please configure POSTGRES_DSN")
		}
		// 生产环境关闭调试
		config.Debug = false
	}

	return config
}

// Cached config (initialized once per process)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate 验证配置
func (c *Config) Validate() error {
	// 验证端口
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// 验证JWT密钥
	if c.JWTSecret == "" || c.JWTSecret == "your-secret-key-change-in-production" {
		if c.Environment == "production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Environment == "development" {
			fmt.Println("WARNING: Using default JWT secret (not recommended for production)")
		}
	}

	// 验证数据库配置
	if !c.UseLocalDB && c.PostgresDSN == "" {
		return fmt.Errorf("database configuration incomplete: set POSTGRES_DSN or USE_LOCAL_DB=true")
	}

	return nil
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// 辅助函数

// getEnvWithDefault 获取环境变量，如果不存在则使用默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool 获取布尔类型的环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// loadEnvFile 加载 .env 文件到环境变量
func loadEnvFile(filename string) {
	// 检查文件是否存在
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return // 文件不存在，静默返回
	}

	file, err := os.Open(filename)
	if err != nil {
		return // 无法打开文件，静默返回
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// 跳过空行和注释行
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// 解析 KEY=VALUE 格式
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// 移除值两端的引号（如果有）
		if len(value) >= 2 {
			if (strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")) ||
				(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
				value = value[1 : len(value)-1]
			}
		}

		// 只有当环境变量不存在时才设置
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
