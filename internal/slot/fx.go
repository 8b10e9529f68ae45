package slot

import (
	"github.com/smallbiznis/prodline/internal/slot/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("slot",
	fx.Provide(repository.Provide),
)
