package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"roomkeeper/internal/models"
	"roomkeeper/internal/scheduler"
	"roomkeeper/internal/view"
)

// PrintUsage выводит справку по командам
func PrintUsage() {
	fmt.Println("Usage: roomkeeper [flags] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  add <number>                Add a room (3-character floor+index code)")
	fmt.Println("  color <number> <color>      Set room color (none|red|green|purple|blue|white)")
	fmt.Println("  mark <number>               Toggle room mark")
	fmt.Println("  complete <number>           Toggle completed-before-cutoff flag")
	fmt.Println("  deepclean <number>          Toggle deep-cleaned flag")
	fmt.Println("  time <number> <text>        Set available time text")
	fmt.Println("  delete <number>             Delete a room")
	fmt.Println("  list [-floors 123]          List rooms, optionally filtered by floors")
	fmt.Println("  history [-day YYYY-MM-DD]   Show history log")
	fmt.Println("  backup create <name>        Create a named backup")
	fmt.Println("  backup list                 List backups")
	fmt.Println("  backup restore <id>         Restore a backup")
	fmt.Println("  backup delete <id>          Delete a backup")
	fmt.Println("  sync                        Synchronize with the remote store")
	fmt.Println("  watch                       Run periodic sync and daily auto-backups")
}

// RunAdd выполняет команду add
func (a *App) RunAdd(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: add <number>")
	}

	room, err := a.data.AddRoom(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Added room %s (id %s)\n", room.Number, room.ID)
	return a.Save(ctx)
}

// RunColor выполняет команду color
func (a *App) RunColor(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: color <number> <color>")
	}

	if err := a.data.ChangeColor(ctx, args[0], models.RoomColor(args[1])); err != nil {
		return err
	}

	fmt.Printf("Room %s is now %s\n", args[0], args[1])
	return a.Save(ctx)
}

// RunMark выполняет команду mark
func (a *App) RunMark(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: mark <number>")
	}

	if err := a.data.ToggleMark(ctx, args[0]); err != nil {
		return err
	}
	return a.Save(ctx)
}

// RunComplete выполняет команду complete
func (a *App) RunComplete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: complete <number>")
	}

	if err := a.data.ToggleCompleted(ctx, args[0]); err != nil {
		return err
	}
	return a.Save(ctx)
}

// RunDeepClean выполняет команду deepclean
func (a *App) RunDeepClean(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: deepclean <number>")
	}

	if err := a.data.ToggleDeepClean(ctx, args[0]); err != nil {
		return err
	}
	return a.Save(ctx)
}

// RunTime выполняет команду time
func (a *App) RunTime(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: time <number> <text>")
	}

	if err := a.data.SetAvailableTime(ctx, args[0], args[1]); err != nil {
		return err
	}
	return a.Save(ctx)
}

// RunDelete выполняет команду delete
func (a *App) RunDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <number>")
	}

	if err := a.data.DeleteRoom(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted room %s\n", args[0])
	return a.Save(ctx)
}

// RunList выполняет команду list с опциональным фильтром этажей
func (a *App) RunList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	floors := fs.String("floors", "", "Active floors, e.g. 12 for floors 1 and 2")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rooms := a.registry.Snapshot()
	if *floors != "" {
		rooms = view.NewFloorFilter([]byte(*floors)...).Apply(rooms)
	}

	if len(rooms) == 0 {
		fmt.Println("No rooms")
		return nil
	}

	for _, room := range rooms {
		flags := ""
		if room.IsMarked {
			flags += " [marked]"
		}
		if room.IsCompleted {
			flags += " [completed]"
		}
		if room.IsDeepCleaned {
			flags += " [deep-cleaned]"
		}
		fmt.Printf("%s  %-7s%s\n", room.Number, room.Color, flags)
	}
	return nil
}

// RunHistory выполняет команду history
func (a *App) RunHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	day := fs.String("day", "", "Show only records for this day (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *day != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *day, time.Local)
		if err != nil {
			return fmt.Errorf("invalid day %q: %w", *day, err)
		}
		for record := range a.ledger.RecordsOnDay(parsed) {
			printRecord(record)
		}
		return nil
	}

	for _, group := range a.ledger.GroupedByDay() {
		fmt.Printf("=== %s ===\n", group.Day.Format("2006-01-02"))
		for _, record := range group.Records {
			printRecord(record)
		}
	}
	return nil
}

// RunBackup выполняет подкоманды backup
func (a *App) RunBackup(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: backup <create|list|restore|delete> [args]")
	}

	switch args[0] {
	case "create":
		if len(args) != 2 {
			return fmt.Errorf("usage: backup create <name>")
		}
		id := a.backups.Create(args[1], a.registry.Snapshot())
		fmt.Printf("Created backup %s (id %s)\n", args[1], id)
		return a.Save(ctx)

	case "list":
		backups := a.backups.List()
		if len(backups) == 0 {
			fmt.Println("No backups")
			return nil
		}
		for _, b := range backups {
			fmt.Printf("%s  %s  %s  (%d rooms)\n",
				b.ID, b.Timestamp.Format(time.RFC3339), b.Name, len(b.Rooms))
		}
		return nil

	case "restore":
		if len(args) != 2 {
			return fmt.Errorf("usage: backup restore <id>")
		}
		if err := a.backups.Restore(args[1], a.registry, a.ledger); err != nil {
			return err
		}
		fmt.Println("Backup restored")
		return a.Save(ctx)

	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: backup delete <id>")
		}
		if err := a.backups.Delete(args[1]); err != nil {
			return err
		}
		fmt.Println("Backup deleted")
		return a.Save(ctx)

	default:
		return fmt.Errorf("unknown backup command: %s", args[0])
	}
}

// RunSync выполняет команду sync
func (a *App) RunSync(ctx context.Context, args []string) error {
	fmt.Println("Starting synchronization with remote store...")

	result, err := a.sync.Sync(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Synchronization completed")
	fmt.Printf("Fetched from server: %d records\n", result.FetchedRecords)
	fmt.Printf("Adopted new rooms:   %d\n", result.AdoptedRooms)
	fmt.Printf("Updated rooms:       %d\n", result.UpdatedRooms)
	fmt.Printf("Deleted rooms:       %d\n", result.DeletedRooms)
	fmt.Printf("Pushed to server:    %d rooms\n", result.PushedRooms)
	if result.SkippedRecords > 0 {
		fmt.Printf("Skipped (malformed): %d records\n", result.SkippedRecords)
	}

	return a.Save(ctx)
}

// RunWatch запускает фоновый режим: почасовая синхронизация и ежедневный
// автоматический снимок реестра. Блокируется до отмены контекста.
func (a *App) RunWatch(ctx context.Context, args []string) error {
	sched := scheduler.New(a.logger)

	if err := sched.AddJob(scheduler.NewSyncJob(a.sync, scheduler.Hourly)); err != nil {
		return err
	}
	if err := sched.AddJob(scheduler.NewAutoBackupJob(a.registry, a.backups, scheduler.Daily)); err != nil {
		return err
	}

	// Немедленный первый цикл, дальше по расписанию
	if _, err := a.sync.Sync(ctx); err != nil {
		a.logger.Warn("Initial sync failed, continuing on schedule", "error", err)
	}

	sched.Start()
	fmt.Println("Watching: hourly sync, daily auto-backup. Ctrl+C to stop.")

	<-ctx.Done()
	sched.Stop()

	// Состояние сохраняется уже после остановки задач
	return a.Save(context.Background())
}

func printRecord(record models.HistoryRecord) {
	fmt.Printf("%s  %-4s %-12s %s -> %s\n",
		record.Timestamp.Format("15:04:05"),
		record.RoomNumber,
		record.ActionType,
		record.OldStatus,
		record.NewStatus)
}
