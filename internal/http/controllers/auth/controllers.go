package auth

import svc "github.com/dropDatabas3/authhub/internal/http/services/auth"

type Controllers struct {
	Login *LoginController
}

func NewControllers(s svc.Services, frontendURL string) *Controllers {
	return &Controllers{Login: NewLoginController(s.Login, frontendURL)}
}
