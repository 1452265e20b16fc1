package publisher

import (
	"fmt"
	"strings"

	"github.com/ajwill85/hri-3.0/internal/collector"
)

var topicEmoji = map[string]string{
	"AI Security":    "🤖",
	"Cloud Security": "☁️",
	"Privacy":        "🔒",
}

var topicHashtag = map[string]string{
	"AI Security":    "#AISecurity",
	"Cloud Security": "#CloudSecurity",
	"Privacy":        "#Privacy",
}

func emojiFor(topic string) string {
	if e, ok := topicEmoji[topic]; ok {
		return e
	}
	return "🛡️"
}

// Hashtags 固定标签加上分类标签
func Hashtags(topic string) string {
	tags := []string{"#CyberSecurity", "#InfoSec"}
	if t, ok := topicHashtag[topic]; ok {
		tags = append(tags, t)
	}
	tags = append(tags, "#ThreatIntelligence")
	return strings.Join(tags, " ")
}

// PostText 帖子正文
func PostText(a collector.Article) string {
	return fmt.Sprintf("%s %s\n\n%s\n\nRead more: %s\n\nSource: %s\n\n%s",
		emojiFor(a.Topic), a.Title, a.Summary, a.URL, a.Source, Hashtags(a.Topic))
}

// ---------- ugcPosts payload ----------

type ugcText struct {
	Text string `json:"text"`
}

type ugcMedia struct {
	Status      string  `json:"status"`
	OriginalURL string  `json:"originalUrl"`
	Title       ugcText `json:"title"`
	Description ugcText `json:"description"`
}

type ugcShareContent struct {
	ShareCommentary    ugcText    `json:"shareCommentary"`
	ShareMediaCategory string     `json:"shareMediaCategory"`
	Media              []ugcMedia `json:"media"`
}

type ugcSpecificContent struct {
	ShareContent ugcShareContent `json:"com.linkedin.ugc.ShareContent"`
}

type ugcVisibility struct {
	MemberNetwork string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

type ugcPost struct {
	Author          string             `json:"author"`
	LifecycleState  string             `json:"lifecycleState"`
	SpecificContent ugcSpecificContent `json:"specificContent"`
	Visibility      ugcVisibility      `json:"visibility"`
}

func newUGCPost(author string, a collector.Article) ugcPost {
	return ugcPost{
		Author:         author,
		LifecycleState: "PUBLISHED",
		SpecificContent: ugcSpecificContent{
			ShareContent: ugcShareContent{
				ShareCommentary:    ugcText{Text: PostText(a)},
				ShareMediaCategory: "ARTICLE",
				Media: []ugcMedia{{
					Status:      "READY",
					OriginalURL: a.URL,
					Title:       ugcText{Text: a.Title},
					Description: ugcText{Text: a.Summary},
				}},
			},
		},
		Visibility: ugcVisibility{MemberNetwork: "PUBLIC"},
	}
}
