package redact

var (
	// BearerRule Authorization 头中的 token
	BearerRule = MustPatternRule("bearer", `(?i)(bearer\s+)[A-Za-z0-9\-_.~+/]+=*`, "${1}"+Mask)

	// JWTRule 裸露的 JWT (header.payload.signature)
	JWTRule = MustPatternRule("jwt", `eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`, Mask)
)

// CredentialFields 会话及登录相关的敏感字段
var CredentialFields = []string{"access", "refresh", "accessToken", "refreshToken", "password", "token"}

// Builtin 返回默认规则集
func Builtin() []Rule {
	rules := []Rule{BearerRule, JWTRule}
	for _, f := range CredentialFields {
		rules = append(rules, NewFieldRule(f))
	}
	return rules
}
