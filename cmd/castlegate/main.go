package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	castlegate "github.com/castlegate/castlegate"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	godotenv.Load()

	cfg := castlegate.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	db, err := setupDatabase(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	repo := castlegate.NewRepositoryManager(db)
	store := repo.Accounts()

	codec := castlegate.NewTokenCodec([]byte(cfg.SigningSecret), cfg.TokenTTL, nil)
	verifier := castlegate.NewCredentialVerifier(store, cfg)
	sessions := castlegate.NewSessionManager(store, codec)
	registrar := castlegate.NewRegisterAccountHandler(repo, cfg)

	controller := castlegate.NewAuthController(
		castlegate.WithRepositoryManager(repo),
		castlegate.WithCredentialVerifier(verifier),
		castlegate.WithSessionManager(sessions),
		castlegate.WithRegistrar(registrar),
	)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	gate := castlegate.AccessGate(store, codec)
	castlegate.RegisterAuthRoutes(srv.Router(), controller, gate)

	if _, err := os.Stat(cfg.PublicDir); err == nil {
		srv.Router().Static("/", cfg.PublicDir)
	}

	srv.Serve(cfg.ListenAddr)

	WaitExitSignal()
}

func setupDatabase(ctx context.Context, cfg *castlegate.Config) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*castlegate.Account)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
