package collector

import (
	"fmt"
	"time"
)

// TimeAgo 生成"x minutes ago"之类的展示文案，超过一周显示日期
func TimeAgo(t, now time.Time) string {
	s := int64(now.Sub(t) / time.Second)
	switch {
	case s < 60:
		return "just now"
	case s < 3600:
		return fmt.Sprintf("%d minutes ago", s/60)
	case s < 86400:
		return fmt.Sprintf("%d hours ago", s/3600)
	case s < 604800:
		return fmt.Sprintf("%d days ago", s/86400)
	}
	return t.Format("1/2/2006")
}
