package main

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/internal/database"
	"github.com/customeros/payrelay/internal/repository"
	"github.com/customeros/payrelay/server"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: payrelay <command>")
		fmt.Println("Commands:")
		fmt.Println("  migrate   Run database migrations")
		fmt.Println("  server    Start the application server")
		os.Exit(1)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Config initialization failed: %v", err)
	}
	if cfg == nil {
		log.Fatalf("config is empty")
	}

	// The delivery log database is optional
	var payrelayDB *gorm.DB
	if cfg.PayRelayDatabaseConfig.Configured() {
		payrelayDB, err = database.InitPayRelayDatabase(&database.DatabaseConfig{
			DBName:          cfg.PayRelayDatabaseConfig.DBName,
			Host:            cfg.PayRelayDatabaseConfig.Host,
			Port:            cfg.PayRelayDatabaseConfig.Port,
			User:            cfg.PayRelayDatabaseConfig.User,
			Password:        cfg.PayRelayDatabaseConfig.Password,
			MaxConn:         cfg.PayRelayDatabaseConfig.MaxConn,
			MaxIdleConn:     cfg.PayRelayDatabaseConfig.MaxIdleConn,
			ConnMaxLifetime: cfg.PayRelayDatabaseConfig.ConnMaxLifetime,
			LogLevel:        cfg.PayRelayDatabaseConfig.LogLevel,
			SSLMode:         cfg.PayRelayDatabaseConfig.SSLMode,
		})
		if err != nil {
			log.Fatalf("PayRelay database initialization failed: %v", err)
		}
	}

	switch os.Args[1] {
	case "migrate":

		if payrelayDB == nil {
			log.Fatalf("Database is not configured, nothing to migrate")
		}
		err := repository.MigrateDB(payrelayDB)
		if err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		log.Println("Database migration completed successfully")

	case "server":

		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("PayRelay starting up...")

		server, err := server.NewServer(cfg, payrelayDB)
		if err != nil {
			log.Fatalf("Server setup failed: %v", err)
		}

		err = server.Run()
		if err != nil {
			log.Fatalf("Server startup failed: %v", err)
		}

		log.Println("Shutdown complete")

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		fmt.Println("Usage: payrelay <command>")
		fmt.Println("Commands:")
		fmt.Println("  migrate   Run database migrations")
		fmt.Println("  server    Start the application server")
		os.Exit(1)
	}
}
