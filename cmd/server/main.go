package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"marketproxy/internal/config"
	"marketproxy/internal/httpx"
	"marketproxy/internal/provider/cache"
	"marketproxy/internal/provider/coingecko"
	"marketproxy/internal/provider/yahoo"
	"marketproxy/internal/proxy"
	"marketproxy/internal/refresh"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	assets, err := config.LoadAssets(cfg.AssetsFile)
	if err != nil {
		log.WithError(err).Fatal("assets")
	}

	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second

	equitiesHTTP := httpx.New(timeout)
	equitiesHTTP.MaxRetries = cfg.Equities.MaxRetries
	equities := yahoo.New(yahoo.Config{BaseURL: cfg.Equities.BaseURL}, equitiesHTTP)

	cryptoHTTP := httpx.New(timeout)
	cryptoHTTP.MaxRetries = cfg.Crypto.MaxRetries
	geckoClient, err := coingecko.NewClient(
		coingecko.WithBaseURL(cfg.Crypto.BaseURL),
		coingecko.WithHTTPClient(cryptoHTTP.Std()),
		coingecko.WithRetryAfterDefault(time.Duration(cfg.Crypto.RetryAfterDefaultSec)*time.Second),
	)
	if err != nil {
		log.WithError(err).Fatal("coingecko client")
	}
	crypto := coingecko.New(coingecko.Config{
		Stagger: time.Duration(cfg.Crypto.StaggerMS) * time.Millisecond,
		MaxDays: cfg.Crypto.MaxDays,
	}, geckoClient)

	orch := &proxy.Orchestrator{
		Cache:       cache.New(cfg.Cache.MaxEntries),
		Equities:    equities,
		Crypto:      crypto,
		EquitiesTTL: time.Duration(cfg.Equities.CacheTTLSeconds) * time.Second,
		CryptoTTL:   time.Duration(cfg.Crypto.CacheTTLSeconds) * time.Second,
		Log:         log,
	}

	if cfg.Refresh.Enabled {
		r := &refresh.Refresher{
			Orchestrator: orch,
			Assets:       assets,
			CryptoEvery:  time.Duration(cfg.Refresh.CryptoEverySec) * time.Second,
			GeneralEvery: time.Duration(cfg.Refresh.GeneralEverySec) * time.Second,
			Log:          log,
		}
		if err := r.Start(); err != nil {
			log.WithError(err).Fatal("refresher")
		}
		defer r.Stop()
	}

	h := &Handler{Orch: orch, Assets: assets, Log: log}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withJSONHeaders(withGzip(recoverPanic(routes(h), log))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server")
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
