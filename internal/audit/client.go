package audit

import (
	"strings"

	"github.com/mssola/useragent"
)

// DescribeClient condenses a User-Agent header into "Browser Version on OS".
func DescribeClient(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	if ua.Bot() {
		return "bot"
	}
	name, version := ua.Browser()
	var b strings.Builder
	b.WriteString(name)
	if version != "" {
		if major, _, _ := strings.Cut(version, "."); major != "" {
			b.WriteString(" " + major)
		}
	}
	if os := ua.OS(); os != "" {
		b.WriteString(" on " + os)
	}
	return strings.TrimSpace(b.String())
}
