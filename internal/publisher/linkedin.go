package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ajwill85/hri-3.0/internal/collector"
	"github.com/ajwill85/hri-3.0/internal/config"
)

// ErrPostFailed 接口返回非 2xx
var ErrPostFailed = errors.New("LinkedIn API error")

const postTimeout = 15 * time.Second

// LinkedInClient 以组织身份发布 UGC 帖子
type LinkedInClient struct {
	base    string
	author  string
	version string
	client  *http.Client
}

// NewLinkedInClient token 以 Bearer 方式附加在每个请求上
func NewLinkedInClient(ctx context.Context, cfg config.LinkedInConfig) *LinkedInClient {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
	hc := oauth2.NewClient(ctx, src)
	hc.Timeout = postTimeout
	return &LinkedInClient{
		base:    strings.TrimRight(cfg.APIBase, "/"),
		author:  cfg.OrgURN,
		version: cfg.APIVersion,
		client:  hc,
	}
}

func (c *LinkedInClient) Post(ctx context.Context, a collector.Article) error {
	body, err := json.Marshal(newUGCPost(c.author, a))
	if err != nil {
		return fmt.Errorf("publisher: marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v2/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("publisher: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	req.Header.Set("LinkedIn-Version", c.version)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("publisher: post %s: %w", a.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%w: %d - %s", ErrPostFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
