package service

import (
	"go.uber.org/fx"
)

var (
	Module = fx.Provide(
		NewJWTSigner,
		NewAuth,
		NewUser,
		NewBookmark,
	)
)
