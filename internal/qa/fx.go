package qa

import (
	"github.com/smallbiznis/prodline/internal/qa/service"
	"go.uber.org/fx"
)

var Module = fx.Module("qa.service",
	fx.Provide(service.New),
)
