package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvDatabaseURL 覆盖数据库连接串的环境变量（测试环境指向独立的数据库）
	EnvDatabaseURL = "DATABASE_URL"

	// EnvDatabaseDriver 覆盖数据库驱动的环境变量
	EnvDatabaseDriver = "DATABASE_DRIVER"
)

// Config 全局配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Snowflake SnowflakeConfig `yaml:"snowflake"`
	Log       LogConfig       `yaml:"log"`
	Security  SecurityConfig  `yaml:"security"`
	Follow    FollowConfig    `yaml:"follow"`
}

// ServerConfig HTTP Server 配置
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	Mode           string   `yaml:"mode"` // development, production
	AllowedOrigins []string `yaml:"allowed_origins"`
	CookieSecure   bool     `yaml:"cookie_secure"`
}

// GetHTTPAddr 获取 HTTP Server 地址
func (s *ServerConfig) GetHTTPAddr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // 数据库驱动: mysql, postgres, sqlite
	URL             string `yaml:"url"`    // 完整连接串，非空时优先于下面的分项配置
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	Charset         string `yaml:"charset"`
	Loc             string `yaml:"loc"` // 仅 mysql，时区名，如 Local、UTC、Asia/Shanghai
	SSLMode         string `yaml:"ssl_mode"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // 秒
}

// GetDSN 获取数据库连接字符串
func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "mysql" {
		return d.mysqlDSN()
	}
	if d.URL != "" {
		return d.URL
	}

	switch d.Driver {
	case "postgres", "pgsql":
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host,
			d.Port,
			d.Username,
			d.Password,
			d.Database,
			sslMode,
		)
	case "sqlite", "sqlite3":
		// sqlite 下 Database 即文件路径
		return "file:" + d.Database + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	return ""
}

// mysqlDSN 时间列扫描到 time.Time 依赖 parseTime，这里总是打开，URL 覆盖时也一样
func (d *DatabaseConfig) mysqlDSN() string {
	var cfg *mysql.Config
	if d.URL != "" {
		parsed, err := mysql.ParseDSN(d.URL)
		if err != nil {
			// 原样返回，由驱动在连接时报告错误
			return d.URL
		}
		cfg = parsed
	} else {
		cfg = mysql.NewConfig()
		cfg.User = d.Username
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
		cfg.DBName = d.Database

		charset := d.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		cfg.Params = map[string]string{"charset": charset}

		if d.Loc != "" {
			if loc, err := time.LoadLocation(d.Loc); err == nil {
				cfg.Loc = loc
			}
		}
	}
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db"`
	PoolSize     int    `yaml:"pool_size"`
	MinIdleConns int    `yaml:"min_idle_conns"`
	MaxRetries   int    `yaml:"max_retries"`
	DialTimeout  int    `yaml:"dial_timeout"`  // 秒
	ReadTimeout  int    `yaml:"read_timeout"`  // 秒
	WriteTimeout int    `yaml:"write_timeout"` // 秒
}

// GetAddr 获取Redis地址
func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GetDialTimeout 获取连接超时时间
func (r *RedisConfig) GetDialTimeout() time.Duration {
	return time.Duration(r.DialTimeout) * time.Second
}

// GetReadTimeout 获取读超时时间
func (r *RedisConfig) GetReadTimeout() time.Duration {
	return time.Duration(r.ReadTimeout) * time.Second
}

// GetWriteTimeout 获取写超时时间
func (r *RedisConfig) GetWriteTimeout() time.Duration {
	return time.Duration(r.WriteTimeout) * time.Second
}

// SnowflakeConfig 雪花ID配置
type SnowflakeConfig struct {
	MachineID int64 `yaml:"machine_id"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `yaml:"level"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// SecurityConfig 安全相关配置
type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"` // 0 表示使用 bcrypt.DefaultCost
}

// FollowConfig 关注关系策略
type FollowConfig struct {
	SelfFollow string `yaml:"self_follow"` // allow, ignore, reject
	Duplicate  string `yaml:"duplicate"`   // ignore, reject
}

var globalConfig *Config

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// .env 不存在时忽略，直接使用进程环境变量
	_ = godotenv.Load()
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &config
	return &config, nil
}

// applyEnv 用环境变量覆盖数据库配置
func (c *Config) applyEnv() {
	if driver := strings.TrimSpace(os.Getenv(EnvDatabaseDriver)); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := strings.TrimSpace(os.Getenv(EnvDatabaseURL)); dsn != "" {
		c.Database.URL = dsn
	}
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	switch c.Follow.SelfFollow {
	case "", "allow", "ignore", "reject":
	default:
		return fmt.Errorf("follow.self_follow 取值无效: %s", c.Follow.SelfFollow)
	}
	switch c.Follow.Duplicate {
	case "", "ignore", "reject":
	default:
		return fmt.Errorf("follow.duplicate 取值无效: %s", c.Follow.Duplicate)
	}
	if c.Database.Loc != "" {
		if _, err := time.LoadLocation(c.Database.Loc); err != nil {
			return fmt.Errorf("database.loc 取值无效: %s", c.Database.Loc)
		}
	}
	if c.Snowflake.MachineID < 0 || c.Snowflake.MachineID > 1023 {
		return fmt.Errorf("snowflake.machine_id 必须在0-1023之间: %d", c.Snowflake.MachineID)
	}
	return nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("配置未初始化，请先调用 Load()")
	}
	return globalConfig
}

// GetDatabase 获取数据库配置
func GetDatabase() *DatabaseConfig {
	return &Get().Database
}

// GetRedis 获取Redis配置
func GetRedis() *RedisConfig {
	return &Get().Redis
}
