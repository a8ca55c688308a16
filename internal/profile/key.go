package profile

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
)

// FingerprintColumns 参与指纹计算的表头列数上限
const FingerprintColumns = 30

var whitespaceRe = regexp.MustCompile(`\s+`)

func normHeader(h string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), " ")
}

// NewKey 布局指纹：文件名（不含目录与扩展名）+ sheet 名 + 前 30 个规范列名
func NewKey(fileName, sheet string, headers []string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	n := len(headers)
	if n > FingerprintColumns {
		n = FingerprintColumns
	}
	sig := make([]string, n)
	for i := 0; i < n; i++ {
		sig[i] = normHeader(headers[i])
	}

	raw := base + "::" + sheet + "::" + strings.Join(sig, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
