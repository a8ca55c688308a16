package profile

import (
	"fmt"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

// UsableHeaders 去掉空列名（指纹只基于可用列）
func UsableHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

// BuildMapping 把 字段名 → 列名 转成映射并校验：字段名合法、列名存在于 headers、必填字段齐全
func BuildMapping(raw map[string]string, headers []string) (model.ColumnMapping, error) {
	mapping := model.NewColumnMapping()
	for name, col := range raw {
		role, ok := model.ParseRole(name)
		if !ok {
			return nil, fmt.Errorf("unknown role %q", name)
		}
		mapping[role] = col
	}
	if !mapping.ValidFor(headers) {
		return nil, fmt.Errorf("mapping refers to columns not in headers")
	}
	if missing := mapping.Missing(model.RequiredRoles); len(missing) > 0 {
		return nil, fmt.Errorf("required roles not mapped: %v", missing)
	}
	return mapping, nil
}
