package store

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

// Fact 事实表记录（带维度名称）
type Fact struct {
	ReportMonth string          `db:"report_month" json:"reportMonth"`
	Brand       string          `db:"brand" json:"brand"`
	Chain       string          `db:"chain" json:"chain"`
	Units       sql.NullFloat64 `db:"units" json:"-"`
	Dollars     sql.NullFloat64 `db:"dollars" json:"-"`
	Stores      sql.NullFloat64 `db:"stores" json:"-"`
	Period      string          `db:"period" json:"period"`
	ReportDate  sql.NullString  `db:"report_date" json:"-"`
	SourceFile  string          `db:"source_file" json:"sourceFile"`
}

// TidyRow 转回规范化行
func (f Fact) TidyRow() model.TidyRow {
	month := f.ReportMonth
	row := model.TidyRow{
		Chain:       f.Chain,
		Units:       nullFloat(f.Units),
		Dollars:     nullFloat(f.Dollars),
		Stores:      nullFloat(f.Stores),
		Brand:       f.Brand,
		ReportMonth: &month,
		Period:      model.Period(f.Period),
		SourceFile:  f.SourceFile,
	}
	if f.ReportDate.Valid {
		date := f.ReportDate.String
		row.ReportDate = &date
	}
	return row
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// UpsertStats 写入统计
type UpsertStats struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"` // 缺少 report_month 或 chain 的行
}

// UpsertTidyRows 在一个事务内写入规范化行。
// 维度（报告月/品牌/连锁）按名称取或建；事实按 (报告月, 品牌, 连锁) 覆盖。
func (s *Store) UpsertTidyRows(rows []model.TidyRow) (UpsertStats, error) {
	var stats UpsertStats

	tx, err := s.db.Beginx()
	if err != nil {
		return stats, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	dims := newDimCache(tx)
	stmt, err := tx.Preparex(`
		INSERT INTO spins_facts (
			report_month_id, brand_id, chain_id,
			units, dollars, stores, period, report_date, source_file
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(report_month_id, brand_id, chain_id) DO UPDATE SET
			units = excluded.units,
			dollars = excluded.dollars,
			stores = excluded.stores,
			period = excluded.period,
			report_date = excluded.report_date,
			source_file = excluded.source_file,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return stats, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	latest := ""
	for _, row := range rows {
		if row.ReportMonth == nil || *row.ReportMonth == "" || row.Chain == "" {
			stats.Skipped++
			continue
		}

		monthID, err := dims.id("report_months", "report_month", *row.ReportMonth)
		if err != nil {
			return stats, err
		}
		brandID, err := dims.id("brands", "name", row.Brand)
		if err != nil {
			return stats, err
		}
		chainID, err := dims.id("chains", "name", row.Chain)
		if err != nil {
			return stats, err
		}

		if _, err := stmt.Exec(
			monthID, brandID, chainID,
			row.Units, row.Dollars, row.Stores,
			string(row.Period), row.ReportDate, row.SourceFile,
		); err != nil {
			return stats, fmt.Errorf("upsert fact %s/%s: %w", *row.ReportMonth, row.Chain, err)
		}
		stats.Written++
		if *row.ReportMonth > latest {
			latest = *row.ReportMonth
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit: %w", err)
	}
	if latest != "" {
		if err := s.bumpLatestReportMonth(latest); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// ListFacts 列出某个报告月的事实（reportMonth 为空时列出全部）
func (s *Store) ListFacts(reportMonth string) ([]Fact, error) {
	query := `
		SELECT rm.report_month, b.name AS brand, c.name AS chain,
			f.units, f.dollars, f.stores, f.period, f.report_date, f.source_file
		FROM spins_facts f
		JOIN report_months rm ON rm.id = f.report_month_id
		JOIN brands b ON b.id = f.brand_id
		JOIN chains c ON c.id = f.chain_id
	`
	var args []interface{}
	if reportMonth != "" {
		query += " WHERE rm.report_month = ?"
		args = append(args, reportMonth)
	}
	query += " ORDER BY rm.report_month, c.name"

	var out []Fact
	if err := s.db.Select(&out, query, args...); err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}
	return out, nil
}

// dimCache 事务内的维度 id 缓存
type dimCache struct {
	tx    *sqlx.Tx
	cache map[string]int64
}

func newDimCache(tx *sqlx.Tx) *dimCache {
	return &dimCache{tx: tx, cache: make(map[string]int64)}
}

// id 取或建维度行。table/column 只来自本包内的常量
func (d *dimCache) id(table, column, value string) (int64, error) {
	key := table + "\x00" + value
	if id, ok := d.cache[key]; ok {
		return id, nil
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?) ON CONFLICT(%s) DO NOTHING", table, column, column)
	if _, err := d.tx.Exec(insert, value); err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}

	var id int64
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s = ?", table, column)
	if err := d.tx.Get(&id, query, value); err != nil {
		return 0, fmt.Errorf("lookup %s: %w", table, err)
	}
	d.cache[key] = id
	return id, nil
}
