package repoargs

import "github.com/savelyev-an/packmart/internal/domain"

type CreateUser struct {
	Username string
	Password string
	Role     domain.RoleType
}
