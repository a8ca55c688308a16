package model

// Role 语义字段
type Role string

const (
	RoleChain   Role = "chain"
	RoleUnits   Role = "units"
	RoleDollars Role = "dollars"
	RoleStores  Role = "stores" // 门店数（doors），不是 store-weeks
	RoleBrand   Role = "brand"
	RoleACV     Role = "acv"
)

// AllRoles 全部语义字段（固定顺序）
var AllRoles = []Role{RoleChain, RoleUnits, RoleDollars, RoleStores, RoleBrand, RoleACV}

// RequiredRoles 自动导入时必须映射的字段
var RequiredRoles = []Role{RoleChain, RoleUnits, RoleDollars}

// ParseRole 解析字段名
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// ColumnMapping 语义字段 → 规范列名；空串表示未映射
type ColumnMapping map[Role]string

// NewColumnMapping 创建包含全部字段的空映射
func NewColumnMapping() ColumnMapping {
	m := make(ColumnMapping, len(AllRoles))
	for _, r := range AllRoles {
		m[r] = ""
	}
	return m
}

// Get 读取映射列名
func (m ColumnMapping) Get(r Role) string {
	if m == nil {
		return ""
	}
	return m[r]
}

// Missing 返回未映射的字段
func (m ColumnMapping) Missing(roles []Role) []Role {
	var out []Role
	for _, r := range roles {
		if m.Get(r) == "" {
			out = append(out, r)
		}
	}
	return out
}

// ValidFor 检查所有非空映射是否都指向 headers 中存在的列
func (m ColumnMapping) ValidFor(headers []string) bool {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		if h != "" {
			set[h] = struct{}{}
		}
	}
	for _, col := range m {
		if col == "" {
			continue
		}
		if _, ok := set[col]; !ok {
			return false
		}
	}
	return true
}

// Clone 复制映射（补齐全部字段）
func (m ColumnMapping) Clone() ColumnMapping {
	out := NewColumnMapping()
	for r, col := range m {
		out[r] = col
	}
	return out
}
