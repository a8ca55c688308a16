package parser

import (
	"strings"
)

// DefaultPreferredSheets 已知模板中数据透视表所在的 sheet 名（按优先级）
var DefaultPreferredSheets = []string{
	"Ret_Brand_Pivot",
	"Ret_Brand_All_B_Pivot",
	"Ret_BrandCategory_Pivot",
	"Ret_BrandCategory_All_B_Pivot",
	"Retailer",
}

// SheetRecognizer 候选 Sheet 识别器
type SheetRecognizer struct {
	preferred []string
}

// NewSheetRecognizer 创建识别器；preferred 为空时使用默认列表
func NewSheetRecognizer(preferred []string) *SheetRecognizer {
	if len(preferred) == 0 {
		preferred = DefaultPreferredSheets
	}
	return &SheetRecognizer{preferred: preferred}
}

// CandidateSheets 候选顺序：
// 1. 优先列表中存在的 sheet（按优先列表顺序）
// 2. 否则名称同时含零售商/品牌提示和 "pivot" 的 sheet（按文件顺序）
// 3. 否则全部 sheet（按文件顺序）
func (r *SheetRecognizer) CandidateSheets(sheetNames []string) []string {
	present := make(map[string]struct{}, len(sheetNames))
	for _, s := range sheetNames {
		present[s] = struct{}{}
	}

	var out []string
	for _, s := range r.preferred {
		if _, ok := present[s]; ok {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, s := range sheetNames {
		if IsPivotSheetName(s) {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		return out
	}

	return append([]string(nil), sheetNames...)
}

// IsPivotSheetName 名称是否像零售商/品牌数据透视表
func IsPivotSheetName(name string) bool {
	lower := strings.ToLower(name)
	return ContainsAny(lower, []string{"ret", "brand"}) && strings.Contains(lower, "pivot")
}
