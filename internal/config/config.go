package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Version 对外输出的流水线版本号
const Version = "2.2.0"

var (
	ErrNoSources         = errors.New("config: no sources configured")
	ErrMissingCredential = errors.New("config: linkedin access token not configured")
	ErrNoTargets         = errors.New("config: no target categories configured")
)

// SourceKind 区分订阅源的解析方式
type SourceKind string

const (
	KindRSS  SourceKind = "rss"
	KindHTML SourceKind = "html"
)

// Selectors 仅 html 类型的源使用，均为 CSS 选择器
type Selectors struct {
	Item    string `yaml:"item"`
	Title   string `yaml:"title"`
	Link    string `yaml:"link"`
	Summary string `yaml:"summary"`
}

// Source 一个订阅源；列表顺序即合并顺序，也是去重时的优先级
type Source struct {
	Key       string     `yaml:"key"`
	URL       string     `yaml:"url"`
	Kind      SourceKind `yaml:"kind"`
	Selectors Selectors  `yaml:"selectors"`
}

type DiscussionConfig struct {
	Enabled  bool          `yaml:"enabled"`
	URL      string        `yaml:"url"`
	Label    string        `yaml:"label"`
	MaxItems int           `yaml:"maxItems"`
	Timeout  time.Duration `yaml:"timeout"`
}

// TopicRule 一个主题及其关键词
type TopicRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// TaxonomyConfig 主题按列表顺序匹配，不能换成 map
type TaxonomyConfig struct {
	Default string      `yaml:"default"`
	Topics  []TopicRule `yaml:"topics"`
}

type FeedConfig struct {
	Limit    int           `yaml:"limit"`
	MaxItems int           `yaml:"maxItems"`
	Timeout  time.Duration `yaml:"timeout"`
}

type PublishConfig struct {
	TargetCategories []string      `yaml:"targetCategories"`
	Quota            int           `yaml:"quota"`
	Interval         time.Duration `yaml:"interval"`
	FeedEndpoint     string        `yaml:"feedEndpoint"`
}

type LinkedInConfig struct {
	AccessToken string
	OrgURN      string
	APIVersion  string
	APIBase     string
}

type LedgerConfig struct {
	// memory / postgres / redis / dynamodb
	Backend   string
	Table     string
	AWSRegion string
}

type S3Config struct {
	Bucket string
	Prefix string
	Region string
}

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	CronSpec string

	BasicAuthUser string
	BasicAuthPass string

	Sources    []Source
	Discussion DiscussionConfig
	Taxonomy   TaxonomyConfig
	Feed       FeedConfig
	Publish    PublishConfig
	LinkedIn   LinkedInConfig
	Ledger     LedgerConfig
	S3         S3Config
}

// fileConfig 对应 CONFIG_FILE 指向的 YAML，未出现的字段保持默认值
type fileConfig struct {
	Sources    []Source          `yaml:"sources"`
	Discussion *DiscussionConfig `yaml:"discussion"`
	Taxonomy   *TaxonomyConfig   `yaml:"taxonomy"`
	Feed       *FeedConfig       `yaml:"feed"`
	Publish    *PublishConfig    `yaml:"publish"`
}

// Load 读取默认值、YAML 文件与环境变量。文件读取失败直接返回错误，由调用方决定是否退出
func Load() (*Config, error) {
	// .env 不存在不算错误
	_ = godotenv.Load()

	cfg := Default()
	cfg.AppPort = getEnv("APP_PORT", "9000")
	cfg.PostgresDSN = getEnv("POSTGRES_DSN", "host=localhost user=hri password=hri dbname=hri port=5432 sslmode=disable TimeZone=UTC")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.CronSpec = getEnv("CRON_SPEC", "*/30 * * * *")
	cfg.BasicAuthUser = os.Getenv("APP_BASIC_USER")
	cfg.BasicAuthPass = os.Getenv("APP_BASIC_PASS")

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.LinkedIn = LinkedInConfig{
		AccessToken: os.Getenv("LINKEDIN_ACCESS_TOKEN"),
		OrgURN:      getEnv("LINKEDIN_ORG_ID", "urn:li:organization:106373030"),
		APIVersion:  getEnv("LINKEDIN_API_VERSION", "202401"),
		APIBase:     getEnv("LINKEDIN_API_BASE", "https://api.linkedin.com"),
	}
	cfg.Ledger = LedgerConfig{
		Backend:   getEnv("LEDGER_BACKEND", "dynamodb"),
		Table:     getEnv("LEDGER_TABLE", "hri-posted-articles"),
		AWSRegion: getEnv("AWS_REGION", "us-east-2"),
	}
	cfg.S3 = S3Config{
		Bucket: strings.TrimSpace(os.Getenv("S3_BUCKET")),
		Prefix: strings.Trim(strings.TrimSpace(os.Getenv("S3_PREFIX")), "/"),
		Region: os.Getenv("S3_REGION"),
	}

	if v := os.Getenv("TARGET_CATEGORIES"); v != "" {
		cfg.Publish.TargetCategories = splitList(v)
	}
	if v := os.Getenv("POSTS_PER_DAY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: POSTS_PER_DAY: %w", err)
		}
		cfg.Publish.Quota = n
	}
	if v := os.Getenv("POST_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: POST_INTERVAL: %w", err)
		}
		cfg.Publish.Interval = d
	}
	if v := os.Getenv("FEED_ENDPOINT"); v != "" {
		cfg.Publish.FeedEndpoint = v
	}

	log.Printf("config loaded: port=%s cron=%s sources=%d topics=%d ledger=%s",
		cfg.AppPort, cfg.CronSpec, len(cfg.Sources), len(cfg.Taxonomy.Topics), cfg.Ledger.Backend)
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fc.Sources != nil {
		c.Sources = fc.Sources
		for i := range c.Sources {
			if c.Sources[i].Kind == "" {
				c.Sources[i].Kind = KindRSS
			}
		}
	}
	if fc.Discussion != nil {
		c.Discussion = *fc.Discussion
	}
	if fc.Taxonomy != nil {
		c.Taxonomy = *fc.Taxonomy
		if c.Taxonomy.Default == "" {
			c.Taxonomy.Default = DefaultTopic
		}
	}
	if fc.Feed != nil {
		c.Feed = mergeFeed(c.Feed, *fc.Feed)
	}
	if fc.Publish != nil {
		c.Publish = mergePublish(c.Publish, *fc.Publish)
	}
	return nil
}

func mergeFeed(base, over FeedConfig) FeedConfig {
	if over.Limit > 0 {
		base.Limit = over.Limit
	}
	if over.MaxItems > 0 {
		base.MaxItems = over.MaxItems
	}
	if over.Timeout > 0 {
		base.Timeout = over.Timeout
	}
	return base
}

func mergePublish(base, over PublishConfig) PublishConfig {
	if over.TargetCategories != nil {
		base.TargetCategories = over.TargetCategories
	}
	if over.Quota > 0 {
		base.Quota = over.Quota
	}
	if over.Interval > 0 {
		base.Interval = over.Interval
	}
	if over.FeedEndpoint != "" {
		base.FeedEndpoint = over.FeedEndpoint
	}
	return base
}

// Validate 聚合流水线运行前的检查
func (c *Config) Validate() error {
	if len(c.Sources) == 0 && !c.Discussion.Enabled {
		return ErrNoSources
	}
	for i, s := range c.Sources {
		if s.Key == "" || s.URL == "" {
			return fmt.Errorf("config: source #%d: key and url are required", i)
		}
		switch s.Kind {
		case KindRSS:
		case KindHTML:
			if s.Selectors.Item == "" {
				return fmt.Errorf("config: source %s: html source needs selectors.item", s.Key)
			}
		default:
			return fmt.Errorf("config: source %s: unknown kind %q", s.Key, s.Kind)
		}
	}
	return nil
}

// ValidatePublish 发布流程额外需要凭证与目标分类
func (c *Config) ValidatePublish() error {
	if c.LinkedIn.AccessToken == "" {
		return ErrMissingCredential
	}
	if len(c.Publish.TargetCategories) == 0 {
		return ErrNoTargets
	}
	if c.Publish.Quota <= 0 {
		return fmt.Errorf("config: invalid quota %d", c.Publish.Quota)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Now returns current time, 方便后续做可测试封装
func Now() time.Time {
	return time.Now()
}
