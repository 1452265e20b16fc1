package config

import "time"

// DefaultTopic 所有关键词都未命中时的主题
const DefaultTopic = "General Security"

const (
	defaultFeedLimit         = 50
	defaultFeedMaxItems      = 8
	defaultFeedTimeout       = 8 * time.Second
	defaultDiscussionItems   = 5
	defaultDiscussionTimeout = 5 * time.Second
	defaultQuota             = 3
	defaultPostInterval      = 2 * time.Second
)

// Default 返回一份全新的默认配置，调用方可以随意修改
func Default() *Config {
	return &Config{
		Sources: DefaultSources(),
		Discussion: DiscussionConfig{
			Enabled:  true,
			URL:      "https://www.reddit.com/r/netsec/hot.json?limit=10",
			Label:    "Reddit r/netsec",
			MaxItems: defaultDiscussionItems,
			Timeout:  defaultDiscussionTimeout,
		},
		Taxonomy: TaxonomyConfig{
			Default: DefaultTopic,
			Topics:  DefaultTopics(),
		},
		Feed: FeedConfig{
			Limit:    defaultFeedLimit,
			MaxItems: defaultFeedMaxItems,
			Timeout:  defaultFeedTimeout,
		},
		Publish: PublishConfig{
			TargetCategories: []string{"AI Security", "Cloud Security", "Privacy"},
			Quota:            defaultQuota,
			Interval:         defaultPostInterval,
		},
	}
}

func DefaultSources() []Source {
	return []Source{
		{Key: "krebsonsecurity", URL: "https://krebsonsecurity.com/feed/", Kind: KindRSS},
		{Key: "bleepingcomputer", URL: "https://www.bleepingcomputer.com/feed/", Kind: KindRSS},
		{Key: "darkreading", URL: "https://www.darkreading.com/rss.xml", Kind: KindRSS},
		{Key: "thehackernews", URL: "https://feeds.feedburner.com/TheHackersNews", Kind: KindRSS},
		{Key: "securityweek", URL: "https://www.securityweek.com/feed", Kind: KindRSS},
		{Key: "therecord", URL: "https://therecord.media/feed/", Kind: KindRSS},
		{Key: "arstechnica", URL: "https://arstechnica.com/security/feed/", Kind: KindRSS},
		{Key: "wired", URL: "https://www.wired.com/feed/category/security/latest/rss", Kind: KindRSS},
	}
}

// DefaultTopics 顺序即优先级：先命中者胜出
func DefaultTopics() []TopicRule {
	return []TopicRule{
		{Name: "Password Security", Keywords: []string{"password", "authentication", "2fa", "mfa", "credential", "login"}},
		{Name: "Social Engineering", Keywords: []string{"phishing", "scam", "fraud", "social engineering", "impersonation"}},
		{Name: "Mobile Security", Keywords: []string{"mobile", "android", "ios", "smartphone", "app security"}},
		{Name: "Financial Security", Keywords: []string{"banking", "financial", "payment", "credit card", "cryptocurrency"}},
		{Name: "Privacy", Keywords: []string{"privacy", "data protection", "gdpr", "surveillance", "tracking", "CCPA", "HIPAA", "data minimization", "DSAR", "DPIA"}},
		{Name: "Email Security", Keywords: []string{"email", "spam", "business email compromise", "bec"}},
		{Name: "Network Security", Keywords: []string{"network", "firewall", "router", "wifi", "vpn", "ddos"}},
		{Name: "Updates", Keywords: []string{"update", "patch", "vulnerability", "cve", "security fix"}},
		{Name: "Vulnerabilities", Keywords: []string{"vulnerability", "exploit", "buffer overflow", "sql injection"}},
		{Name: "Data Breach", Keywords: []string{"breach", "leak", "exposed", "compromised", "stolen data"}},
		{Name: "AI Security", Keywords: []string{
			"artificial intelligence", "ai", "machine learning", "ml", "deepfake", "nlp", "ai threat", "ai security",
			"ai ethics", "ai governance", "large language model", "llm", "chatgpt", "claude", "prompt injection",
			"ai bias", "algorithmic", "neural network", "ai safety", "ai alignment", "automated", "bot detection",
			"adversarial", "model poisoning", "data poisoning", "ai privacy", "synthetic media", "generative ai",
		}},
		{Name: "Cloud Security", Keywords: []string{"cloud", "aws", "azure", "gcp", "cloud security"}},
	}
}
