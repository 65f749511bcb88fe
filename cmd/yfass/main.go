package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/JieningYu/yfass/internal/auth"
	"github.com/JieningYu/yfass/internal/config"
	"github.com/JieningYu/yfass/internal/logger"
	"github.com/JieningYu/yfass/internal/proxy"
	"github.com/JieningYu/yfass/internal/registry"
	"github.com/JieningYu/yfass/internal/router"
	"github.com/JieningYu/yfass/internal/store"
	"github.com/JieningYu/yfass/internal/api"
)

func main() {
	var cfgPath, bindAddr, root, baseHost, bwrapPath, logLevel string
	var tokenTTLDays int

	cmd := &cobra.Command{
		Use:   "yfass",
		Short: "Function-as-a-Service platform for GNU/Linux",
		RunE: func(cmd *cobra.Command, args []string) error {
			fileCfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			config.ApplyFlag(&fileCfg.BindAddr, bindAddr)
			config.ApplyFlag(&fileCfg.Root, root)
			config.ApplyFlag(&fileCfg.BaseHost, baseHost)
			config.ApplyFlag(&fileCfg.BwrapPath, bwrapPath)
			config.ApplyFlag(&fileCfg.LogLevel, logLevel)
			config.ApplyFlag(&fileCfg.TokenTTLDays, tokenTTLDays)

			if fileCfg.Root == "" {
				return fmt.Errorf("fatal: --root is required")
			}
			if fileCfg.BaseHost == "" {
				return fmt.Errorf("fatal: --base-host is required")
			}

			logger.Init(fileCfg.LogLevel)
			return run(fileCfg)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "optional YAML config file")
	cmd.Flags().StringVar(&bindAddr, "addr", "", "bind address for the management+proxy server (default :8080)")
	cmd.Flags().StringVar(&root, "root", "", "filesystem root for persistence (required)")
	cmd.Flags().StringVar(&baseHost, "base-host", "", "base hostname for virtual hosts, e.g. example.com (required)")
	cmd.Flags().StringVar(&bwrapPath, "bwrap-path", "", "path to the bwrap executable (default \"bwrap\")")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default info)")
	cmd.Flags().IntVar(&tokenTTLDays, "token-ttl-days", 0, "default token lifetime in days (default 10)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run wires store -> auth -> registry -> router -> proxy -> management API
// behind one HTTP server handling both the base host's /api/ surface and
// every virtual host's data-plane traffic.
func run(cfg *config.Config) error {
	log := logger.Named("main")

	st, err := store.New(cfg.Root)
	if err != nil {
		return fmt.Errorf("fatal: open store: %w", err)
	}
	authStore, err := auth.NewStore(cfg.Root)
	if err != nil {
		return fmt.Errorf("fatal: open auth store: %w", err)
	}
	authStore.SetDefaultTTLDays(cfg.TokenTTLDays)

	rootToken, err := authStore.Bootstrap(time.Now())
	if err != nil {
		return fmt.Errorf("fatal: bootstrap root token: %w", err)
	}
	fmt.Printf("root token: %s\n", rootToken.Bearer)

	rt := router.New()
	reg := registry.New(st, rt, cfg.BwrapPath)
	px := proxy.New(rt)
	mgmt := api.New(authStore, st, reg)

	httpSrv := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: hostRouter{baseHost: cfg.BaseHost, api: mgmt, proxy: px},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.BindAddr, "base_host", cfg.BaseHost)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("fatal: listen: %w", err)
		}
		return nil
	}
}

// hostRouter is the single entry point both for the base host's management
// API and every virtual host's data-plane traffic, which is forwarded
// verbatim to the proxy.
type hostRouter struct {
	baseHost string
	api      http.Handler
	proxy    http.Handler
}

func (h hostRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	host, _, ok := cutPort(r.Host)
	if !ok {
		host = r.Host
	}
	if host == h.baseHost {
		h.api.ServeHTTP(w, r)
		return
	}
	h.proxy.ServeHTTP(w, r)
}

func cutPort(hostport string) (host, port string, ok bool) {
	for i := len(hostport) - 1; i >= 0; i-- {
		if hostport[i] == ':' {
			return hostport[:i], hostport[i+1:], true
		}
		if hostport[i] == ']' {
			break
		}
	}
	return hostport, "", false
}
