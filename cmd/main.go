// cmd/main.go

package main

import (
	"flag"
	"os"

	"hotelac/internal/app"
	"hotelac/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "config directory (defaults to ./configs)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		logger.SetLevel(logger.DebugLevel)
	}

	a, err := app.New(*configPath)
	if err != nil {
		logger.Error("初始化失败: %v", err)
		os.Exit(1)
	}
	if err := a.Run(); err != nil {
		logger.Error("运行失败: %v", err)
		os.Exit(1)
	}
}
