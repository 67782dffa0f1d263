package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/adapters/observability"
	redisad "github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/adapters/redis"
	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/app"
	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/shared"
	mysqlrepo "github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/storage/mysql"
)

func main() {
	noLock := flag.Bool("no-lock", false, "seed without the redis barrier (single-instance setups)")
	var add addOpts
	flag.StringVar(&add.Make, "make", "", "add this make (with -description) or add -model under it")
	flag.StringVar(&add.Description, "description", "", "description for a new make")
	flag.StringVar(&add.Model, "model", "", "model name to add under -make")
	flag.StringVar(&add.Type, "type", "", "model type (default Sedan)")
	flag.IntVar(&add.Year, "year", 0, "model year, 2015..2023")
	flag.Int64Var(&add.DealerID, "dealer", 0, "dealer id selling the model")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	log.Info().Bool("lock", !*noLock).Msg("seeder starting")

	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect failed")
	}
	defer db.Close()
	log.Info().Msg("db ping ok")

	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	var locker *redisad.Locker
	if !*noLock {
		rdb := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rdb.Close()
		if err := redisad.Ping(ctx, rdb); err != nil {
			log.Fatal().Err(err).Msg("redis ping failed; rerun with -no-lock to skip the barrier")
		}
		locker = redisad.NewLocker(rdb)
	}

	repo := mysqlrepo.New(db)
	// keep a nil *Locker out of the interface
	var svc *app.CatalogService
	if locker != nil {
		svc = app.NewCatalogService(repo, locker)
	} else {
		svc = app.NewCatalogService(repo, nil)
	}
	if err := svc.EnsureSeeded(ctx); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	n, err := repo.CountMakes(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("count makes failed")
	}
	log.Info().Int64("makes", n).Msg("seeding completed")

	if add.Make != "" {
		if err := runAdd(ctx, svc, add); err != nil {
			log.Fatal().Err(err).Msg("catalog add failed")
		}
	}
}
