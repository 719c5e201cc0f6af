package merge

import "go.uber.org/fx"

var Module = fx.Module("merge",
	fx.Provide(NewEngine),
)
