package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	placeholderRe = regexp.MustCompile(`(?i)^unnamed[\s:_-]*\d*$`)
	reportDateRe  = regexp.MustCompile(`(?i)ending\s+(\d{2})-(\d{2})-(\d{2})`)
)

// NormalizeCell 规范化单元格文本：NFKC、去首尾空白、压缩空白；占位列名（unnamed: N）视为空
func NormalizeCell(s string) string {
	s = norm.NFKC.String(s)
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if s == "" || placeholderRe.MatchString(s) {
		return ""
	}
	return s
}

// NormalizeColumnName 列名匹配用的规范形式（小写）
func NormalizeColumnName(name string) string {
	return strings.ToLower(NormalizeCell(name))
}

// ParseReportDate 从文件名提取 "ending MM-DD-YY"，返回 (YYYY-MM-DD, YYYY-MM-01)
// 未匹配或日期非法时返回 nil
func ParseReportDate(fileName string) (reportDate, reportMonth *string) {
	m := reportDateRe.FindStringSubmatch(fileName)
	if len(m) < 4 {
		return nil, nil
	}
	mm, dd, yy := m[1], m[2], m[3]
	yyyy := "20" + yy

	if _, err := time.Parse("2006-01-02", yyyy+"-"+mm+"-"+dd); err != nil {
		return nil, nil
	}

	date := yyyy + "-" + mm + "-" + dd
	month := yyyy + "-" + mm + "-01"
	return &date, &month
}

// ParseNumber 数值强制转换：去掉千分位/货币符号/百分号，会计负数 "(12)" 记为 -12；无法解析返回 nil
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	s = strings.ReplaceAll(s, ",", "") // 移除千分位
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.TrimSpace(s)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if negative {
		f = -f
	}
	return &f
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
