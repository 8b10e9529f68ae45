package handoff

import (
	"github.com/smallbiznis/prodline/internal/handoff/service"
	"go.uber.org/fx"
)

var Module = fx.Module("handoff.service",
	fx.Provide(service.New),
)
