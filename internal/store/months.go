package store

import "fmt"

// ReportMonthStat 报告月统计
type ReportMonthStat struct {
	ReportMonth string `db:"report_month" json:"reportMonth"`
	Facts       int    `db:"facts" json:"facts"`
	Chains      int    `db:"chains" json:"chains"`
}

// ListReportMonths 列出已有数据的报告月（倒序）
func (s *Store) ListReportMonths() ([]ReportMonthStat, error) {
	var out []ReportMonthStat
	err := s.db.Select(&out, `
		SELECT
			rm.report_month,
			COUNT(f.id) AS facts,
			COUNT(DISTINCT f.chain_id) AS chains
		FROM report_months rm
		JOIN spins_facts f ON f.report_month_id = rm.id
		GROUP BY rm.report_month
		ORDER BY rm.report_month DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query report months failed: %w", err)
	}
	return out, nil
}
