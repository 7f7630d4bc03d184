package main

import (
	"fmt"
	"orderform/internal/db/migrations"
	"os"

	"github.com/caarlos0/env/v6"
)

type config struct {
	PostgresqlURL string `env:"POSTGRESQL_URL,required"`
}

func main() {
	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := migrations.Up(cfg.PostgresqlURL); err != nil {
		fmt.Fprintln(os.Stderr, "could not apply migrations:", err)
		os.Exit(1)
	}
	fmt.Println("migrations applied")
}
