package jwt

import "github.com/golang-jwt/jwt/v5"

// OperatorClaims are carried by tokens issued to competition operators.
type OperatorClaims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// CanMutate reports whether the role may change competitions.
func (r Role) CanMutate() bool {
	return r == RoleOperator || r == RoleAdmin
}
