package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"roomkeeper/internal/client/api"
	"roomkeeper/internal/client/cli"
	"roomkeeper/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Remote store URL")
	dbPath := flag.String("db", "roomkeeper-client.db", "Path to local database")

	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// Получаем команду
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}

	command := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Создаем API клиент
	apiClient := api.NewClient(*serverURL)

	// Собираем приложение: состояние загружается из хранилища
	app, err := cli.NewApp(ctx, boltStorage, apiClient)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	// Выполняем команду
	var cmdErr error
	switch command {
	case "add":
		cmdErr = app.RunAdd(ctx, args[1:])
	case "color":
		cmdErr = app.RunColor(ctx, args[1:])
	case "mark":
		cmdErr = app.RunMark(ctx, args[1:])
	case "complete":
		cmdErr = app.RunComplete(ctx, args[1:])
	case "deepclean":
		cmdErr = app.RunDeepClean(ctx, args[1:])
	case "time":
		cmdErr = app.RunTime(ctx, args[1:])
	case "delete":
		cmdErr = app.RunDelete(ctx, args[1:])
	case "list":
		cmdErr = app.RunList(ctx, args[1:])
	case "history":
		cmdErr = app.RunHistory(ctx, args[1:])
	case "backup":
		cmdErr = app.RunBackup(ctx, args[1:])
	case "sync":
		cmdErr = app.RunSync(ctx, args[1:])
	case "watch":
		cmdErr = app.RunWatch(ctx, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		cli.PrintUsage()
		os.Exit(1)
	}

	if cmdErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cmdErr)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("RoomKeeper Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
