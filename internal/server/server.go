package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/shareforge/shareforge/internal/auth"
	"github.com/shareforge/shareforge/internal/clamav"
	"github.com/shareforge/shareforge/internal/cleanup"
	"github.com/shareforge/shareforge/internal/config"
	"github.com/shareforge/shareforge/internal/email"
	"github.com/shareforge/shareforge/internal/file"
	"github.com/shareforge/shareforge/internal/metrics"
	"github.com/shareforge/shareforge/internal/reverseshare"
	"github.com/shareforge/shareforge/internal/share"
)

// Server wires the ShareForge managers behind one HTTP API
type Server struct {
	config        *config.Config
	httpServer    *http.Server
	db            *sql.DB
	shareManager  *share.Manager
	shareStore    share.Store
	fileManager   *file.Manager
	reverseShares *reverseshare.Manager
	authManager   *auth.Manager
	metrics       *metrics.Metrics
	cleanupWorker *cleanup.Worker
	packager      *share.Packager
	startTime     time.Time
}

// New creates a new ShareForge server
func New(cfg *config.Config) (*Server, error) {
	db, err := openDatabase(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shareStore, err := share.NewSQLiteStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create share store: %w", err)
	}
	fileStore, err := file.NewSQLiteStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create file store: %w", err)
	}
	reverseStore, err := reverseshare.NewSQLiteStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create reverse share store: %w", err)
	}
	userStore, err := auth.NewSQLiteStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create user store: %w", err)
	}

	backend, err := file.NewBackend(file.Config{
		Backend: cfg.Storage.Backend,
		Root:    cfg.Storage.Root,
		S3: file.S3Config{
			Endpoint:  cfg.Storage.S3Endpoint,
			Region:    cfg.Storage.S3Region,
			Bucket:    cfg.Storage.S3Bucket,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	fileManager := file.NewManager(fileStore, backend)
	reverseShares := reverseshare.NewManager(reverseStore)
	authManager := auth.NewManager(userStore, []byte(cfg.Auth.JWTSecret))

	var notifier share.Notifier
	if cfg.SMTP.Enabled {
		sender := email.NewSender(email.Config{
			Enabled:  cfg.SMTP.Enabled,
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			UseTLS:   cfg.SMTP.UseTLS,
		})
		notifier = email.NewNotifier(sender, cfg.PublicURL)
	}

	// Archive packaging needs the files on the local filesystem; with the
	// s3 backend multi-file shares are downloaded file by file.
	var packager *share.Packager
	if fsBackend, ok := backend.(*file.FilesystemBackend); ok {
		packager = share.NewPackager(
			fsBackend.Root(),
			&archiveSource{files: fileManager},
			shareStore,
			cfg.Share.ZipCompressionLevel,
		)
	}

	var scanner share.Scanner
	if cfg.ClamAV.Enabled {
		client := clamav.NewClient(cfg.ClamAV.Address)
		if err := client.Ping(); err != nil {
			logrus.WithError(err).Warn("ClamAV is enabled but not reachable, scans will fail until it comes up")
		}
		scanner = clamav.NewScanner(client, fileManager, shareStore)
	}

	shareManager := share.NewManager(share.ManagerConfig{
		Store:         shareStore,
		Files:         fileManager,
		Notifier:      notifier,
		Scanner:       scanner,
		ReverseShares: &reverseShareBinder{invitations: reverseShares},
		Packager:      packager,
		TokenSecret:   cfg.Auth.JWTSecret,
		MaxExpiration: share.MaxExpiration{
			Value: cfg.Share.MaxExpirationValue,
			Unit:  cfg.Share.MaxExpirationUnit,
		},
	})

	m := metrics.New()
	cleanupWorker := cleanup.NewWorker(shareStore, shareManager, func(count int) {
		m.ExpiredCleaned.Add(float64(count))
	})

	httpServer := &http.Server{
		Addr:         cfg.Listen,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Large downloads
		IdleTimeout:  60 * time.Second,
	}

	server := &Server{
		config:        cfg,
		httpServer:    httpServer,
		db:            db,
		shareManager:  shareManager,
		shareStore:    shareStore,
		fileManager:   fileManager,
		reverseShares: reverseShares,
		authManager:   authManager,
		metrics:       m,
		cleanupWorker: cleanupWorker,
		packager:      packager,
		startTime:     time.Now(),
	}
	server.httpServer.Handler = server.routes()

	return server, nil
}

func openDatabase(dataDir string) (*sql.DB, error) {
	path := filepath.Join(dataDir, "shareforge.db")
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Start runs the server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	logrus.WithFields(logrus.Fields{
		"address":  s.config.Listen,
		"data_dir": s.config.DataDir,
		"backend":  s.config.Storage.Backend,
	}).Info("Starting ShareForge server")

	if err := s.authManager.EnsureDefaultAdmin(ctx); err != nil {
		return fmt.Errorf("failed to ensure default admin: %w", err)
	}

	s.cleanupWorker.Start(ctx, time.Duration(s.config.Cleanup.IntervalMinutes)*time.Minute)

	go func() {
		var err error
		if s.config.EnableTLS {
			err = s.httpServer.ListenAndServeTLS(s.config.CertFile, s.config.KeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("HTTP server error")
		}
	}()

	<-ctx.Done()
	return s.shutdown()
}

func (s *Server) shutdown() error {
	logrus.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Failed to shutdown HTTP server")
	}

	s.cleanupWorker.Stop()

	if err := s.db.Close(); err != nil {
		logrus.WithError(err).Error("Failed to close database")
	}
	return nil
}
