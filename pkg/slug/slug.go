// Package slug 生成 URL 友好的标识符。
package slug

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify 将任意文本转换为小写 ASCII slug：
// NFKD 分解后丢弃组合符号与非 ASCII 字符，非字母数字连续段折叠为单个 "-"。
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(t, s)
	if err != nil {
		decomposed = s
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	dash := false
	for _, r := range strings.ToLower(decomposed) {
		switch {
		case r > unicode.MaxASCII:
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ExistsFunc 判断 slug 是否已被占用
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Unique 依次尝试 base、base-1、base-2 …，返回第一个未被占用的 slug。
// base 为空时使用 fallback；maxLen>0 时截断 base 以保证带后缀的结果不超长。
func Unique(ctx context.Context, text, fallback string, maxLen int, exists ExistsFunc) (string, error) {
	base := Slugify(text)
	if base == "" {
		base = fallback
	}
	base = truncate(base, maxLen)

	candidate := base
	for i := 1; ; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", i)
		candidate = truncate(base, maxLen-len(suffix)) + suffix
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}
