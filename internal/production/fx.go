package production

import (
	"github.com/smallbiznis/prodline/internal/production/service"
	"go.uber.org/fx"
)

var Module = fx.Module("production.service",
	fx.Provide(service.New),
)
