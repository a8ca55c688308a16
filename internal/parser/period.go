package parser

import (
	"regexp"
	"strings"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

// DefaultPeriodLookback 表头区块之上参与报告期推断的行数
const DefaultPeriodLookback = 5

var (
	// "YTD" 按子串匹配（CY_YTD、YTD2025 也算）；全称需要词边界
	yearToDateRe = regexp.MustCompile(`\bYEAR\s+TO\s+DATE\b`)

	// 按 4/12/24/52 顺序检查，先命中者为准
	weekPeriods = []struct {
		period model.Period
		re     *regexp.Regexp
	}{
		{model.Period4Weeks, regexp.MustCompile(`\b4\s*(?:WKS?|WEEKS?)\b`)},
		{model.Period12Weeks, regexp.MustCompile(`\b12\s*(?:WKS?|WEEKS?)\b`)},
		{model.Period24Weeks, regexp.MustCompile(`\b24\s*(?:WKS?|WEEKS?)\b`)},
		{model.Period52Weeks, regexp.MustCompile(`\b52\s*(?:WKS?|WEEKS?)\b`)},
	}
)

// PeriodWindowText 表头区块及其上方 lookback 行的文本（大写、扁平化）
func PeriodWindowText(grid model.RawGrid, block model.HeaderBlock, lookback int) string {
	if lookback < 0 {
		lookback = 0
	}
	start := block.Start - lookback
	if start < 0 {
		start = 0
	}

	var parts []string
	for r := start; r <= block.End && r < len(grid); r++ {
		for _, cell := range grid[r] {
			if v := NormalizeCell(cell); v != "" {
				parts = append(parts, v)
			}
		}
	}
	return strings.ToUpper(strings.Join(parts, " "))
}

// ClassifyPeriod 按优先级分类：YTD 优先于任何周数，与出现位置无关
func ClassifyPeriod(text string) model.Period {
	text = strings.ToUpper(text)
	if strings.Contains(text, "YTD") || yearToDateRe.MatchString(text) {
		return model.PeriodYTD
	}
	for _, wp := range weekPeriods {
		if wp.re.MatchString(text) {
			return wp.period
		}
	}
	return model.PeriodUnknown
}

// InferPeriod 从表头附近的元数据推断报告期
func InferPeriod(grid model.RawGrid, block model.HeaderBlock, lookback int) model.Period {
	return ClassifyPeriod(PeriodWindowText(grid, block, lookback))
}
