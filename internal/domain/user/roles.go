package user

// Capability 操作能力
type Capability string

const (
	CanAddBook    Capability = "canAddBook"
	CanEditBook   Capability = "canEditBook"
	CanDeleteBook Capability = "canDeleteBook"
)

// RoleTable 角色 → 能力列表
type RoleTable map[string][]Capability

// Grants 任一角色拥有该能力即返回true
func (t RoleTable) Grants(roles []string, c Capability) bool {
	for _, r := range roles {
		for _, granted := range t[r] {
			if granted == c {
				return true
			}
		}
	}
	return false
}

// Capabilities 返回角色集合拥有的全部能力（去重，保持出现顺序）
func (t RoleTable) Capabilities(roles []string) []Capability {
	seen := make(map[Capability]bool)
	var out []Capability
	for _, r := range roles {
		for _, c := range t[r] {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
