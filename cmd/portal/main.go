package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/meduaid/qb-portal/internal/cli"
)

func main() {
	_ = godotenv.Load() // optional .env for local dev

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	}

	if err := cli.Execute(); err != nil {
		logrus.WithError(err).Fatal("portal exited")
	}
}
