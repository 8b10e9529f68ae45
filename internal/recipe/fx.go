package recipe

import (
	"github.com/smallbiznis/prodline/internal/recipe/service"
	"go.uber.org/fx"
)

var Module = fx.Module("recipe.service",
	fx.Provide(service.New),
)
