package main

import (
	"context"
	"os"

	"github.com/cuxvas/peliculas/internal/server/cmd"
)

var buildVersion = "dev"

func main() {
	cmd.BuildVersion = buildVersion

	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
