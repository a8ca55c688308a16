package parser

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

// RoleRule 单个语义字段的有序匹配规则（越具体越靠前）
type RoleRule struct {
	Role     model.Role
	Patterns []*regexp.Regexp
}

// seg 匹配多行表头中的一整段（段之间以 " | " 分隔）
func seg(p string) string {
	return `(?:^|\|\s*)` + p + `(?:\s*\||$)`
}

// defaultPatterns 默认规则表。stores 只认门店数（doors），
// "Sum of # of Stores Selling Calc" 这类 store-weeks 列不能命中。
var defaultPatterns = map[model.Role][]string{
	model.RoleChain: {
		seg(`row\s*labels`),
		seg(`ret(ailer)?`),
		seg(`banner`),
		seg(`chain`),
		`\bretailer\b`,
		`\bret.*label`,
		`\bbanner`,
		`\bchain`,
	},
	model.RoleUnits: {
		seg(`sum\s*of\s*units?`),
		seg(`units?`),
		`\bsum\s*of\s*units?\b`,
		`\bunits?\b`,
		`units.*4w`,
		`4w.*units`,
	},
	model.RoleDollars: {
		seg(`sum\s*of\s*dollars?`),
		seg(`dollars?`),
		`\bsum\s*of\s*dollars?\b`,
		`\bdollars?\b`,
		`\bnet\s*sales\b`,
		`\bsales\b`,
		`\brevenue\b`,
		`(?:^|\|\s*)\$`,
	},
	model.RoleStores: {
		seg(`(?:sum\s*of\s*)?#?\s*(?:of\s*)?stores\s*selling`),
		seg(`(?:avg|average)\b.*stores.*selling`),
		seg(`stores?`),
		seg(`doors?`),
		seg(`num(?:ber)?\s*of\s*stores`),
		`door.*count`,
	},
	model.RoleBrand: {
		seg(`brand`),
		seg(`brand\s*name`),
		`\bbrand\b`,
	},
	model.RoleACV: {
		`\bacv\b`,
		`\bacv\s*weighted\b`,
		`tdp.*acv`,
		`weighted\s*dist`,
	},
}

// CompileRules 按 model.AllRoles 顺序编译规则；未提供的字段规则为空
func CompileRules(raw map[model.Role][]string) ([]RoleRule, error) {
	rules := make([]RoleRule, 0, len(model.AllRoles))
	for _, role := range model.AllRoles {
		rule := RoleRule{Role: role}
		for _, p := range raw[role] {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q for %s: %w", p, role, err)
			}
			rule.Patterns = append(rule.Patterns, re)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// DefaultRules 默认规则
func DefaultRules() []RoleRule {
	rules, err := CompileRules(defaultPatterns)
	if err != nil {
		panic(err)
	}
	return rules
}

// DefaultPatterns 返回默认规则的副本（用于导出/编辑）
func DefaultPatterns() map[model.Role][]string {
	out := make(map[model.Role][]string, len(defaultPatterns))
	for role, ps := range defaultPatterns {
		out[role] = append([]string(nil), ps...)
	}
	return out
}

// patternFile 规则覆盖文件格式
//
//	patterns:
//	  units: ["^sum of units$", "\\bunits?\\b"]
type patternFile struct {
	Patterns map[string][]string `yaml:"patterns"`
}

// LoadRules 读取 YAML 规则文件，文件中出现的字段整体替换默认规则；path 为空时返回默认规则
func LoadRules(path string) ([]RoleRule, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns file: %w", err)
	}

	var pf patternFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse patterns file: %w", err)
	}

	merged := DefaultPatterns()
	for name, ps := range pf.Patterns {
		role, ok := model.ParseRole(name)
		if !ok {
			return nil, fmt.Errorf("unknown role %q in patterns file", name)
		}
		merged[role] = ps
	}
	return CompileRules(merged)
}
