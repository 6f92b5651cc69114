// Command pagerdemo serves paginated client and move lists over SQLite or
// MongoDB.
//
//	curl 'localhost:8080/clients?status=active&sortBy=balance:desc&limit=5&page=2'
//	curl 'localhost:8080/moves?crew=2,3&limit=20'
//	curl 'localhost:8080/moves?cursor=<nextCursor>'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Alp4ka/pager"
	"github.com/Alp4ka/pager/ginpager"
	"github.com/Alp4ka/pager/gormexec"
	"github.com/Alp4ka/pager/internal/catalog"
	"github.com/Alp4ka/pager/internal/config"
	"github.com/Alp4ka/pager/mongoexec"
)

const _seed = 42

// store bundles the executors of one backend.
type store struct {
	clients  pager.Executor[catalog.Client]
	moves    pager.Executor[catalog.Move]
	idColumn string
	close    func(context.Context) error
}

func main() {
	confPath := flag.String("conf", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("pagerdemo stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.WithError(err).Error("failed to close store")
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), ginpager.Logger(log), ginpager.Timeout(cfg.Paging.RequestTimeout))

	router.GET("/clients", ginpager.Handler(catalog.ClientEndpoint(st.idColumn, cfg.Paging.MaxLimit), st.clients, log))
	router.GET("/moves", ginpager.Handler(catalog.MoveEndpoint(st.idColumn, cfg.Paging.MaxLimit), st.moves, log))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func newLogger(cfg *config.Logger) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log, nil
}

func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*store, error) {
	clients, moves := catalog.Generate(cfg.Seed.Count, _seed)

	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Store.Mongo.URI))
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping mongo: %w", err)
		}

		database := client.Database(cfg.Store.Mongo.Database)
		if cfg.Seed.Count > 0 {
			if err := catalog.SeedMongo(ctx, database, clients, moves); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, err
			}
		}
		log.WithFields(logrus.Fields{
			"database": cfg.Store.Mongo.Database,
			"clients":  len(clients),
			"moves":    len(moves),
		}).Info("mongo store ready")

		return &store{
			clients:  mongoexec.New[catalog.Client](database.Collection(catalog.ClientsCollection)),
			moves:    mongoexec.New[catalog.Move](database.Collection(catalog.MovesCollection)),
			idColumn: catalog.IDColumnMongo,
			close:    client.Disconnect,
		}, nil

	default:
		db, err := gorm.Open(sqlite.Open(cfg.Store.DSN), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// Shared-cache in-memory databases live as long as one connection does.
		sqlDB.SetMaxOpenConns(1)

		if err := catalog.SeedGORM(ctx, db, clients, moves); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"dsn":     cfg.Store.DSN,
			"clients": len(clients),
			"moves":   len(moves),
		}).Info("sqlite store ready")

		return &store{
			clients:  gormexec.New[catalog.Client](db),
			moves:    gormexec.New[catalog.Move](db),
			idColumn: catalog.IDColumnSQL,
			close:    func(context.Context) error { return sqlDB.Close() },
		}, nil
	}
}
