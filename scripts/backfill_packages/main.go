// Command backfill_packages creates the package purchases missing for
// completed orders, for example after importing historical orders.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/Govind-619/InfuseDesk/config"
	"github.com/Govind-619/InfuseDesk/events"
	"github.com/Govind-619/InfuseDesk/lock"
	"github.com/Govind-619/InfuseDesk/services"
	"github.com/Govind-619/InfuseDesk/utils"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would be created without writing anything")
	flag.Parse()

	if err := utils.InitLogger("logs"); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer utils.SyncLoggers()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Error loading config:", err)
	}
	if err := config.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Share the server's lock when Redis is configured so a run started
	// from the admin API and one started here never overlap.
	var locker lock.Locker = lock.NewLocal()
	if rdb := config.NewRedisClient(cfg); rdb != nil {
		locker = lock.NewRedis(rdb, 10*time.Minute)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQ.URL != "" {
		amqpPublisher := events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	svc := services.NewBackfillService(config.DB, publisher, locker)
	svc.PackageValidity = cfg.PackageValidity()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := svc.Run(ctx, *dryRun)
	if err != nil {
		log.Fatal("Backfill failed:", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal("Failed to print report:", err)
	}
}
