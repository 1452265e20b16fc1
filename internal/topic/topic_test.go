package topic

import (
	"testing"

	"github.com/ajwill85/hri-3.0/internal/config"
)

func TestClassifyFirstMatchWins(t *testing.T) {
	c := New(config.TaxonomyConfig{Default: config.DefaultTopic, Topics: config.DefaultTopics()})

	// password 和 phishing 同时出现时，排在前面的 Password Security 胜出
	got := c.Classify("New phishing kit steals password resets", "")
	if got != "Password Security" {
		t.Fatalf("Classify = %q, want %q", got, "Password Security")
	}
}

func TestClassifyOrderIsConfiguration(t *testing.T) {
	tc := config.TaxonomyConfig{
		Topics: []config.TopicRule{
			{Name: "Social Engineering", Keywords: []string{"phishing"}},
			{Name: "Password Security", Keywords: []string{"password"}},
		},
	}
	c := New(tc)
	if got := c.Classify("password phishing", ""); got != "Social Engineering" {
		t.Fatalf("Classify = %q, want %q", got, "Social Engineering")
	}
	if c.Default() != config.DefaultTopic {
		t.Fatalf("Default() = %q, want %q", c.Default(), config.DefaultTopic)
	}
}

func TestClassifyCases(t *testing.T) {
	c := New(config.TaxonomyConfig{Default: config.DefaultTopic, Topics: config.DefaultTopics()})

	cases := []struct {
		title   string
		summary string
		want    string
	}{
		{"GDPR fine issued", "", "Privacy"},
		{"Regulators look at ccpa", "", "Privacy"}, // 配置里是大写 CCPA
		{"Quiet week", "Attackers abused an AWS bucket", "Cloud Security"},
		{"Quiet week", "", config.DefaultTopic},
		{"Android malware", "password stealer", "Password Security"},
		{"SQL INJECTION in router firmware", "", "Network Security"},
		{"", "", config.DefaultTopic},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.title, tc.summary); got != tc.want {
			t.Fatalf("Classify(%q, %q) = %q, want %q", tc.title, tc.summary, got, tc.want)
		}
	}
}

func TestClassifyConcatenatesWithSpace(t *testing.T) {
	c := New(config.TaxonomyConfig{Topics: []config.TopicRule{{Name: "Joined", Keywords: []string{"ab"}}}})
	// 标题和摘要之间有空格，不会拼出跨边界的关键词
	if got := c.Classify("a", "b"); got != config.DefaultTopic {
		t.Fatalf("Classify = %q, want %q", got, config.DefaultTopic)
	}
}

func TestTopicsKeepsOrder(t *testing.T) {
	c := New(config.TaxonomyConfig{Topics: config.DefaultTopics()})
	topics := c.Topics()
	if len(topics) != 12 || topics[0] != "Password Security" || topics[11] != "Cloud Security" {
		t.Fatalf("unexpected topics: %v", topics)
	}
}
