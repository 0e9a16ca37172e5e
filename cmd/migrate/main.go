package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/jhoicas/Agromercado-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Agromercado-api/pkg/config"
	"github.com/jhoicas/Agromercado-api/pkg/logger"
	"github.com/jhoicas/Agromercado-api/pkg/migrate"
)

func main() {
	cmd := flag.String("cmd", "up", "comando: up|down|status|version|validate")
	version := flag.String("version", "", "versión destino (YYYYMMDDHHMMSS) para -cmd=version")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("migrate")

	// No requiere DB
	if *cmd == "validate" {
		if err := migrate.Validate(); err != nil {
			log.Error().Err(err).Msg("validación de migraciones fallida")
			os.Exit(1)
		}
		log.Info().Msg("migraciones válidas")
		return
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	log.Info().Str("cmd", *cmd).Str("env", cfg.App.Env).Msg("migrate listo")

	switch *cmd {
	case "up", "down", "status":
		err = migrate.Run(ctx, db, *cmd)
	case "version":
		if *version == "" {
			fmt.Fprintln(os.Stderr, "falta -version para -cmd=version")
			os.Exit(1)
		}
		err = migrate.MigrateToVersion(ctx, db, *version)
	default:
		fmt.Fprintln(os.Stderr, "valor de -cmd desconocido:", *cmd)
		os.Exit(1)
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", *cmd).Msg("migración fallida")
		os.Exit(1)
	}
	log.Info().Str("cmd", *cmd).Msg("migración completada")
}
