package parser

import (
	"errors"
	"fmt"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

// ErrRequiredColumnMissing chain/units/dollars 未能全部映射
var ErrRequiredColumnMissing = errors.New("required column missing")

// SchemaMapper 规范列名 → 语义字段映射器
type SchemaMapper struct {
	rules []RoleRule
}

// NewSchemaMapper 创建映射器；rules 为空时使用默认规则
func NewSchemaMapper(rules []RoleRule) *SchemaMapper {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &SchemaMapper{rules: rules}
}

// MatchRole 规则优先于列位置：依次尝试每条规则，每条规则从左到右扫描列，
// 第一条有命中的规则决定结果。两层循环的顺序决定了歧义表格上的取舍，不能互换。
func (m *SchemaMapper) MatchRole(role model.Role, headers []string) string {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeColumnName(h)
	}

	for _, rule := range m.rules {
		if rule.Role != role {
			continue
		}
		for _, re := range rule.Patterns {
			for i, h := range normalized {
				if h == "" {
					continue
				}
				if re.MatchString(h) {
					return headers[i]
				}
			}
		}
	}
	return ""
}

// Suggest 建议模式：六个字段各自独立匹配，同一列可被多个字段建议
func (m *SchemaMapper) Suggest(headers []string) model.ColumnMapping {
	mapping := model.NewColumnMapping()
	for _, role := range model.AllRoles {
		mapping[role] = m.MatchRole(role, headers)
	}
	return mapping
}

// MapRequired 自动导入模式：chain/units/dollars 必须命中，stores 可选
func (m *SchemaMapper) MapRequired(headers []string) (model.ColumnMapping, error) {
	mapping := model.NewColumnMapping()
	for _, role := range []model.Role{model.RoleChain, model.RoleUnits, model.RoleDollars, model.RoleStores} {
		mapping[role] = m.MatchRole(role, headers)
	}

	if missing := mapping.Missing(model.RequiredRoles); len(missing) > 0 {
		return mapping, fmt.Errorf("%w: %v", ErrRequiredColumnMissing, missing)
	}
	return mapping, nil
}
