package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM            LLMConfig           `yaml:"llm"`
	Search         SearchConfig        `yaml:"search"`
	Domains        []string            `yaml:"domains"`
	Pipeline       PipelineConfig      `yaml:"pipeline"`
	TrustedSources map[string][]string `yaml:"trusted_sources"`
	Log            LogConfig           `yaml:"log"`
	Concurrency    ConcurrencyConfig   `yaml:"concurrency"`
	DB             DBConfig            `yaml:"db"`
	Redis          RedisConfig         `yaml:"redis"`
	Output         string              `yaml:"output"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	Timeout     int     `yaml:"timeout"` // 秒
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// DSN 返回 lib/pq 连接串
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// RedisConfig 富化结果缓存配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      int    `yaml:"ttl"` // 秒
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider string        `yaml:"provider"`
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
	RSS      RSSConfig     `yaml:"rss"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// RSSConfig RSS 订阅源配置
type RSSConfig struct {
	Feeds   []string `yaml:"feeds"`
	Timeout int      `yaml:"timeout"`
}

// PipelineConfig 抓取与富化参数
type PipelineConfig struct {
	MaxResults    int  `yaml:"max_results"`
	LookbackDays  int  `yaml:"lookback_days"`
	MinContentLen int  `yaml:"min_content_len"`
	MaxContentLen int  `yaml:"max_content_len"`
	FetchTimeout  int  `yaml:"fetch_timeout"` // 秒
	FetchFullText bool `yaml:"fetch_full_text"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig LLM 限流配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// LoadConfig 从指定路径加载配置，并用环境变量覆盖密钥
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	loadDotEnv()
	cfg.applyEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

// loadDotEnv 依次尝试 ~/.env 与当前目录 .env，已存在的环境变量不会被覆盖
func loadDotEnv() {
	var files []string
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".env"))
	}
	files = append(files, ".env")
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

func (c *Config) applyEnv() {
	setString(&c.Search.Tavily.APIKey, "TAVILY_API_KEY")
	setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	setString(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.DB.Host, "DB_HOST")
	setInt(&c.DB.Port, "DB_PORT")
	setString(&c.DB.User, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.Name, "DB_NAME")
}

func (c *Config) applyDefaults() {
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-3.5-turbo-1106"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.4
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 60
	}
	if c.Search.Provider == "" && c.Search.Tavily.APIKey != "" {
		c.Search.Provider = "tavily"
	}
	if c.Pipeline.MaxResults == 0 {
		c.Pipeline.MaxResults = 10
	}
	if c.Pipeline.LookbackDays == 0 {
		c.Pipeline.LookbackDays = 1
	}
	if c.Pipeline.MinContentLen == 0 {
		c.Pipeline.MinContentLen = 500
	}
	if c.Pipeline.MaxContentLen == 0 {
		c.Pipeline.MaxContentLen = 5000
	}
	if c.Pipeline.FetchTimeout == 0 {
		c.Pipeline.FetchTimeout = 30
	}
	if c.Concurrency.RPM == 0 {
		c.Concurrency.RPM = 60
	}
	if c.Concurrency.QPS == 0 {
		c.Concurrency.QPS = 1
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 3600
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.Output == "" {
		c.Output = "output/index.html"
	}
	if len(c.TrustedSources) == 0 {
		c.TrustedSources = map[string][]string{
			"TNFD":     {"tnfd.global"},
			"IPCC":     {"ipcc.ch"},
			"Swiss Re": {"swissre.com"},
		}
	}
}

// Validate 校验运行必需的配置
func (c *Config) Validate() error {
	if len(c.Domains) == 0 {
		return fmt.Errorf("未设置风险领域 (domains)")
	}
	if c.Search.Provider == "" {
		return fmt.Errorf("未设置搜索服务 (search.provider 或 TAVILY_API_KEY)")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("未设置 LLM api_key (llm.api_key 或 OPENAI_API_KEY)")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
