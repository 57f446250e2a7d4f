package main

import (
	"go.uber.org/fx"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/internal/server"
)

func main() {
	fx.New(server.Module).Run()
}
