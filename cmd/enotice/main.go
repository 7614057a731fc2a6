package main

import (
	"enotice/internal/bootstrap"
	pkg "enotice/pkg/routes"

	"go.uber.org/fx"
)

func main() {
	bootstrap.Loadenv()

	app := fx.New(
		pkg.NoticeBoardModules,
	)

	app.Run()
}
