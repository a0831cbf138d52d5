package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/saeidalz13/battleship-solo/api"
	"github.com/saeidalz13/battleship-solo/db"
	"github.com/saeidalz13/battleship-solo/db/sqlc"
)

func mustMillisEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	ms, err := strconv.Atoi(raw)
	if err != nil {
		panic(err)
	}
	return time.Duration(ms) * time.Millisecond
}

func main() {
	if os.Getenv("STAGE") != api.StageProd {
		if err := godotenv.Load(".env"); err != nil {
			panic(err)
		}
	}

	stage := os.Getenv("STAGE")
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		panic(err)
	}

	opts := []api.Option{
		api.WithPort(port),
		api.WithStage(stage),
		api.WithOpponentDelay(
			mustMillisEnv("OPPONENT_DELAY_MIN_MS", time.Second),
			mustMillisEnv("OPPONENT_DELAY_MAX_MS", time.Second*2),
		),
	}

	if rawSeed := os.Getenv("GAME_SEED"); rawSeed != "" {
		seed, err := strconv.ParseUint(rawSeed, 10, 64)
		if err != nil {
			panic(err)
		}
		opts = append(opts, api.WithSeed(seed))
	}

	if psqlUrl := os.Getenv("DATABASE_URL"); psqlUrl != "" {
		migrationDir := os.Getenv("MIGRATION_DIR")
		if migrationDir == "" {
			migrationDir = db.DefaultMigrationDir
		}

		psqlDb := db.MustConnectToDb(psqlUrl, migrationDir)
		defer psqlDb.Close()
		opts = append(opts, api.WithQuerier(sqlc.New(psqlDb)))
	} else {
		log.Println("DATABASE_URL not set; analytics disabled")
	}

	rp := api.NewRequestProcessor(opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rp.SessionManager().CleanupPeriodically(ctx)

	log.Printf("Listening to %s (stage: %s)\n", rp.Addr(), rp.Stage())
	log.Fatalln(http.ListenAndServe(rp.Addr(), rp.Routes()))
}
