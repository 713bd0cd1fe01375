package main

import (
	"coinbot/internal/di"
	"coinbot/internal/structures"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVarP(&flags.ConfigPath, "config", "c", "./config.yaml", "path to the YAML config file")
	flag.BoolVarP(&flags.DebugMode, "debug", "d", false, "mirror logs to the console")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	app, cleanup, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %s\n", err)
		os.Exit(1)
	}

	err = app.Run()
	cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
