package model

// Period 报告期口径
type Period string

const (
	Period4Weeks  Period = "4"
	Period12Weeks Period = "12"
	Period24Weeks Period = "24"
	Period52Weeks Period = "52"
	PeriodYTD     Period = "YTD"
	PeriodUnknown Period = "unknown"
)

// TidyColumns 规范化输出的列（固定顺序）
var TidyColumns = []string{
	"chain",
	"units",
	"dollars",
	"stores",
	"brand",
	"report_date",
	"report_month",
	"period",
	"source_file",
}

// TidyRow 规范化输出记录
type TidyRow struct {
	Chain       string   `json:"chain"`
	Units       *float64 `json:"units"`
	Dollars     *float64 `json:"dollars"`
	Stores      *float64 `json:"stores"`
	Brand       string   `json:"brand"`
	ReportDate  *string  `json:"report_date"`
	ReportMonth *string  `json:"report_month"`
	Period      Period   `json:"period"`
	SourceFile  string   `json:"source_file"`
}
