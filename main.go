package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	gigwish "github.com/jvarghese/gigwish/internal"
	"github.com/jvarghese/gigwish/internal/ctxhelper"
	"github.com/jvarghese/gigwish/internal/ingest"
	"github.com/jvarghese/gigwish/internal/log"
	"github.com/jvarghese/gigwish/internal/migrate"
	"github.com/jvarghese/gigwish/internal/models"
	sessionrepo "github.com/jvarghese/gigwish/internal/repos/session/inmem"
	snapshotrepo "github.com/jvarghese/gigwish/internal/repos/snapshot/jsonfile"
	songrepo "github.com/jvarghese/gigwish/internal/repos/song/sqlite"
	"github.com/jvarghese/gigwish/internal/state"
	"github.com/kardianos/osext"
	_ "github.com/mattn/go-sqlite3" // Just needed for the sqlite driver
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	appName      = "Gigwish"
	appVersion   = "0.0.1"
	dbFile       = "gigwish.db"
	snapshotFile = "state.json"
)

// Checks and tries to create the given directory recursively (or panics if this fails)
func checkAndCreateDir(path string, logger *logrus.Entry) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if e, ok := err.(*os.PathError); ok && e.Err == syscall.ENOENT {
			logger.WithField(log.FldPath, path).Info("Directory does not exist - trying to create...")
			if err = os.MkdirAll(path, os.ModePerm); err != nil {
				logger.WithError(err).Fatal("Failed to create directory")
			}
			logger.Info("Directory created successfully")
		} else {
			logger.WithError(err).Fatal("Stat has failed")
		}
	} else {
		if !fileInfo.IsDir() {
			logger.Fatalf("'%s' is not a directory. Remove the plain file if you want to continue", path)
		}
	}
}

func main() {
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		panic(err)
	}

	// A .env file beside the executable may provide overrides like GIGWISH_ADMIN_PIN
	godotenv.Load(filepath.Join(execDir, ".env"))

	configFile := flag.String(
		"config",
		filepath.Join(execDir, "config.json"),
		"The configuration file to load the application's configuration from",
	)
	flag.Parse()

	ctx := context.Background()

	// Initialize the logger
	logger := logrus.WithField(log.FldVersion, appVersion)
	logger.Infof("%s version %s is starting up...", appName, appVersion)
	ctx = context.WithValue(ctx, ctxhelper.KeyLogger, logger)

	// Load the main configuration file
	cs := gigwish.NewConfigService(*configFile)
	if err := cs.Load(ctx); err != nil {
		logger.WithError(err).Error("Cannot load config. Using defaults")
	}
	conf := cs.GetConfig(ctx)

	logger.Infof("Using '%s' as data directory", conf.DataDir)
	checkAndCreateDir(conf.DataDir, logger)

	// Set up the database connection and perform pending migrations
	dbFileName := path.Join(conf.DataDir, dbFile)
	var db *sqlx.DB
	if db, err = sqlx.Open("sqlite3", dbFileName); err != nil {
		logger.WithError(err).Fatal("Failed to open database connection")
	}
	logger.Info("Performing database migrations...")
	if err = migrate.ExecuteMigrationsOnDb(db, logger); err != nil {
		logger.WithError(err).Fatal("Database migration has failed. Please check database for consistency and try again.")
	}

	songRepo := songrepo.New(db, logger)
	sessionRepo := sessionrepo.New()

	// Import the performer's setlist into the catalog, if one is configured
	if conf.SetlistFile != "" {
		importer := ingest.NewImporter(songRepo, logger)
		if num, err := importer.ImportFile(conf.SetlistFile); err != nil {
			logger.WithError(err).Error("Setlist import failed - continuing with the existing catalog")
		} else {
			logger.Infof("Imported %d songs from the setlist", num)
		}
	}

	// Restore the live state of the evening and load the catalog into the browse view
	snapshotRepo := snapshotrepo.New(path.Join(conf.DataDir, snapshotFile))
	store := state.New(snapshotRepo, conf.Restrictions.MaxRequestsPerUser, logger)
	if songs, err := songRepo.All(); err != nil {
		logger.WithError(err).Fatal("Failed to load the song catalog")
	} else {
		logger.Infof("Catalog loaded with %d songs", len(songs))
		store.SetCatalog(songs)
	}

	// Hash the admin PIN - the plain value never leaves the configuration
	admin := &models.Admin{}
	if err := admin.SetPIN(conf.AdminPIN); err != nil {
		logger.WithError(err).Fatal("Failed to hash the admin PIN")
	}

	songSrv := gigwish.NewSongService(songRepo, store, logger)
	reqSrv := gigwish.NewRequestService(store, songRepo, cs, logger)
	pollSrv := gigwish.NewPollService(store, logger)
	anaSrv := gigwish.NewAnalyticsService(store, logger)
	sessServ := gigwish.NewSessionService(sessionRepo, admin, logger)

	httpLogger := logger.WithField(log.FldTransport, "HTTP")

	h := gigwish.MakeHTTPHandler(
		songSrv,
		reqSrv,
		pollSrv,
		anaSrv,
		sessServ,
		cs,
		httpLogger,
	)

	// Start listening
	errs := make(chan error)

	// Listen for stop signals that will end the service
	go func() {
		c := make(chan os.Signal, 2)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		err := fmt.Errorf("%s", <-c)
		logger.Info("Caught signal to stop. Shutting down.")
		if err := snapshotRepo.Save(store.Snapshot()); err != nil {
			logger.WithError(err).Error("Failed to write the final state snapshot")
		}
		errs <- err
	}()

	go func() {
		httpLogger.WithField("addr", conf.ListenAddress).Info("Starting listening port")
		errs <- http.ListenAndServe(conf.ListenAddress, h)
	}()

	// Watchdog for systemd
	go func() {
		interval, err := daemon.SdWatchdogEnabled(false)
		if err != nil || interval == 0 {
			return
		}
		logger.Info("Activating systemd watchdog goroutine")
		port := strings.Split(conf.ListenAddress, ":")[1]
		url := fmt.Sprintf("http://127.0.0.1:%s/alive", port)
		for {
			if _, err := http.Get(url); err == nil {
				daemon.SdNotify(false, "WATCHDOG=1")
			}
			time.Sleep(interval / 3)
		}
	}()

	// Notify systemd that we are ready to go (if available)
	daemon.SdNotify(false, "READY=1")

	logger.WithError(<-errs).Error("Shutdown complete")
}
