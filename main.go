package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"themeplane/api"
	"themeplane/cache"
	"themeplane/config"
	"themeplane/preset"
	"themeplane/theme"
)

var (
	dataDir    string
	listen     string
	listenPort int
	appVersion = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:           "themeplane",
	Short:         "themeplane – theme class and color variable resolver",
	Long:          "Themeplane resolves theme options into class names and derives contrasting on-colors for CSS custom properties.",
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage themeplane configuration files.",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a default configuration file",
	Long:  "Generate a default themeplane.config file in the specified data directory (or current directory if not specified).",
	RunE:  runConfigGenerate,
}

func init() {
	wd, _ := os.Getwd()
	rootCmd.Version = appVersion
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", wd, "Data directory (default: current directory)")
	rootCmd.Flags().StringVar(&listen, "listen", "all", "IP address to listen on (default: all)")
	rootCmd.Flags().IntVar(&listenPort, "listen-port", 8080, "Port to listen on (default: 8080)")

	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newPresetCmd())
}

// loadConfig reads the config file and applies --data-dir when given.
func loadConfig(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfg, v, err := config.Load(dataDir)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	} else if cfg.DataDir == "" || cfg.DataDir == "." {
		cfg.DataDir = dataDir
	}

	dataDirAbs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDirAbs

	logger, err := config.NewLogger(v)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newResolver(cfg config.Config, memo theme.Memo) *theme.Resolver {
	opts := []theme.ResolverOption{theme.WithClassPrefix(cfg.ClassPrefix)}
	if cfg.TextTones {
		opts = append(opts, theme.WithDerive(theme.WithTextTones()))
	}
	if memo != nil {
		opts = append(opts, theme.WithMemo(memo))
	}
	return theme.NewResolver(opts...)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cmd.Flags().Changed("listen") || cmd.Flags().Changed("listen-port") {
		if listen != "" && listen != "all" {
			cfg.ListenAddr = net.JoinHostPort(listen, fmt.Sprint(listenPort))
		} else {
			cfg.ListenAddr = fmt.Sprintf(":%d", listenPort)
		}
	}

	store := preset.New(cfg.DataDir, preset.WithBuiltins())
	if err := store.EnsureDirs(); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	memo := cache.New(cache.Options{
		TTL:        time.Duration(cfg.Cache.TTL),
		SweepEvery: time.Duration(cfg.Cache.SweepEvery),
		MaxEntries: cfg.Cache.MaxEntries,
	}, logger.Named("cache"))
	memo.Start(ctx)

	wsManager := api.NewWSConnectionManager()
	apiServer := api.NewServer(newResolver(cfg, memo), store, wsManager, logger.Named("api"), api.Options{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printListeningAddresses(logger, cfg.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	logger.Info("shutting down")

	wsManager.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	return nil
}

func runConfigGenerate(cmd *cobra.Command, args []string) error {
	dataDirAbs, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := config.Default()
	cfg.DataDir = dataDirAbs

	cfgPath := filepath.Join(dataDirAbs, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("config file already exists: %s", cfgPath)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated default config file: %s\n", cfgPath)
	return nil
}

func printListeningAddresses(logger *zap.Logger, addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		logger.Info("listening", zap.String("url", "http://"+addr))
		return
	}

	if host != "" && host != "0.0.0.0" && host != "::" {
		logger.Info("listening", zap.String("url", "http://"+net.JoinHostPort(host, port)))
		return
	}

	urls := []string{}
	if addrs, err := net.InterfaceAddrs(); err == nil {
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				urls = append(urls, "http://"+net.JoinHostPort(ipnet.IP.String(), port))
			}
		}
	}
	urls = append(urls, "http://localhost:"+port, "http://127.0.0.1:"+port)
	logger.Info("listening", zap.Strings("urls", urls))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
