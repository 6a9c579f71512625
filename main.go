// Sona is a retro MIDI player for the desktop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"strings"

	fyneapp "fyne.io/fyne/v2/app"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mkalinski/sona/internal/app/keybindings"
	"github.com/mkalinski/sona/internal/app/library"
	"github.com/mkalinski/sona/internal/app/playback"
	"github.com/mkalinski/sona/internal/app/settings"
	"github.com/mkalinski/sona/internal/app/storage"
	"github.com/mkalinski/sona/internal/app/ui"
)

const appID = "io.github.mkalinski.sona"

// defined flags
var (
	levelFlag     logLevelFlag
	debugFlag     = flag.Bool("debug", false, "Show additional debug information")
	logFileFlag   = flag.Bool("logfile", true, "Write logs to a file instead of the console")
	uninstallFlag = flag.Bool("uninstall", false, "Uninstalls the app by deleting all user files")
	showDirsFlag  = flag.Bool("show-dirs", false, "Show directories where user data is stored")
)

func init() {
	levelFlag.value = slog.LevelInfo
	flag.Var(&levelFlag, "loglevel", "set log level")
}

func main() {
	flag.Parse()
	slog.SetLogLoggerLevel(levelFlag.value)
	fyneApp := fyneapp.NewWithID(appID)
	ad := newAppDirs(fyneApp)
	if *showDirsFlag {
		fmt.Printf("Database: %s\n", ad.data)
		fmt.Printf("Logs: %s\n", ad.log)
		fmt.Printf("Settings: %s\n", ad.settings)
		return
	}
	if *uninstallFlag {
		fmt.Print("Are you sure you want to uninstall this app and delete all user files (y/N)?")
		var input string
		fmt.Scanln(&input)
		if strings.ToLower(input) == "y" {
			if err := ad.deleteAll(); err != nil {
				log.Fatal(err)
			}
			fmt.Println("App uninstalled")
		} else {
			fmt.Println("Aborted")
		}
		return
	}
	if *logFileFlag {
		fn, err := ad.initLogFile()
		if err != nil {
			log.Fatal(err)
		}
		log.SetOutput(&lumberjack.Logger{
			Filename:   fn,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
		})
	}
	set := settings.New(fyneApp.Preferences())
	slog.SetLogLoggerLevel(set.LogLevelSlog())
	if *debugFlag {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	dsn, err := ad.initDSN()
	if err != nil {
		log.Fatal(err)
	}
	db, err := storage.ConnectDB(dsn, true)
	if err != nil {
		log.Fatalf("Failed to initialize database %s: %s", dsn, err)
	}
	defer db.Close()
	st := storage.New(db)

	keys, err := keybindings.Load(ad.keybindingsPath())
	if err != nil {
		slog.Error("Failed to load keybindings, using defaults", "error", err)
		keys = keybindings.Defaults()
	}

	engine := playback.New()
	lib := library.New()

	u := ui.New(fyneApp, engine, st, lib, set, keys, fyneApp.Metadata().Version, *debugFlag)
	engine.OnSongLoaded = u.SetSong
	engine.OnStateChanged = u.SetState
	engine.OnError = u.ShowError

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := engine.Start(ctx); err != nil {
		log.Fatalf("Failed to start audio: %s", err)
	}
	defer engine.Close()

	u.Init()
	u.ShowAndRun()
}
