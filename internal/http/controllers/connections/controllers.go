package connections

import svc "github.com/dropDatabas3/authhub/internal/http/services/connections"

type Controllers struct {
	Connections *ConnectionsController
}

func NewControllers(s svc.Service) *Controllers {
	return &Controllers{Connections: NewConnectionsController(s)}
}
