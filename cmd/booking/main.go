package main

import (
	stdLog "log"
	"os"
	"time"

	"github.com/Astemirdum/table-booking/booking/app"
	"github.com/Astemirdum/table-booking/booking/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// @title                       Table booking API
// @version                     1.0
// @description                 Restaurant table registry and reservation booking.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLog.Fatal("load envs from .env ", zap.Error(err))
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)

	app.Run(cfg)
}
