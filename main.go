package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fishbowlhq/go-server/internal/httpserver"
	"github.com/fishbowlhq/go-server/internal/session"
	"github.com/fishbowlhq/go-server/internal/store"
	"github.com/fishbowlhq/go-server/internal/words"
)

func main() {
	_ = godotenv.Load()

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("load word pool")
	}
	log.Info().Int("words", words.Count()).Msg("word pool ready")

	var st store.SessionStore
	switch getEnv("STORE", "sqlite") {
	case "memory":
		st = store.NewMemoryStore()
	case "sqlite":
		dbPath := getEnv("DB_PATH", "./data/fishbowl.db")
		sq, err := store.OpenSQLite(dbPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", dbPath).Msg("open sqlite store")
		}
		defer sq.Close()
		st = sq
		log.Info().Str("path", dbPath).Msg("sqlite store ready")
	default:
		log.Fatal().Str("store", os.Getenv("STORE")).Msg("unknown STORE value")
	}

	ctrl := session.New(st)
	srv := httpserver.New(ctrl)

	addr := ":" + getEnv("PORT", "8080")
	log.Info().Str("addr", addr).Msg("fishbowl server listening")
	if err := srv.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
