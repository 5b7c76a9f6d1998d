package repoargs

import "github.com/fsdevblog/groph-points/internal/domain"

type CreateUser struct {
	Username     string
	Email        string
	Phone        string
	Password     string
	Role         domain.RoleType
	BusinessName string
	Address      string
}
