package main

import (
	"log"

	"github.com/m3rciful/signalbot/bot/app"
	"github.com/m3rciful/signalbot/bot/config"
	corecmd "github.com/m3rciful/signalbot/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		EnvFiles:          []string{".env"},
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := config.Load(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: app.Bootstrap,
	})
	if err != nil {
		log.Fatalf("signalbot: %v", err)
	}
}
