package cli

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/yongseopkim/workrecap/config"
	"github.com/yongseopkim/workrecap/fetch"
	"github.com/yongseopkim/workrecap/host"
	"github.com/yongseopkim/workrecap/llm"
	"github.com/yongseopkim/workrecap/normalize"
	"github.com/yongseopkim/workrecap/orchestrator"
	"github.com/yongseopkim/workrecap/storage/mirror"
	"github.com/yongseopkim/workrecap/summarize"
)

// app bundles every wired service a command needs.
type app struct {
	orchestrator *orchestrator.Orchestrator
	fetcher      *fetch.Fetcher
	normaliser   *normalize.Normaliser
	summariser   *summarize.Summariser
	router       *llm.Router
}

func buildApp() (*app, error) {
	runtime := config.LoadRuntimeConfig()
	dataDir := resolvedDataDir()
	if dataDir == "" {
		dataDir = runtime.DataDir
	}

	secrets, err := config.LoadSecrets(viper.GetString("secrets"))
	if err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}
	providerCfg, err := config.LoadProviderConfig(viper.GetString("providers"))
	if err != nil {
		return nil, fmt.Errorf("load provider config: %w", err)
	}
	pricing, err := config.LoadPricingTable(viper.GetString("pricing"))
	if err != nil {
		return nil, fmt.Errorf("load pricing table: %w", err)
	}

	poolSize := secrets.PoolSize
	if poolSize <= 0 {
		poolSize = runtime.PoolSize
	}
	retryCap := secrets.RetryCap
	if retryCap <= 0 {
		retryCap = runtime.RetryCap
	}

	pool := host.NewPool(host.Config{
		BaseURL:  secrets.HostBaseURL,
		Token:    secrets.HostToken,
		Timeout:  runtime.ClientTimeout,
		RetryCap: retryCap,
	}, poolSize)

	router, err := llm.NewRouter(providerCfg, pricing)
	if err != nil {
		return nil, fmt.Errorf("build llm router: %w", err)
	}

	mirrors := buildMirrors()

	fetcher := fetch.New(fetch.Config{
		Pool:          pool,
		User:          secrets.HostUser,
		DataDir:       dataDir,
		ClientTimeout: runtime.ClientTimeout,
		MaxWorkers:    runtime.MaxWorkers,
		MaxRetries:    retryCap,
	})
	normaliser := normalize.New(normalize.Config{
		DataDir:              dataDir,
		User:                 secrets.HostUser,
		Router:               router,
		MaxWorkers:           runtime.MaxWorkers,
		IncludeOwnPRComments: viper.GetBool("include_own_pr_comments"),
		Mirrors:              mirrors,
	})
	summariser, err := summarize.New(summarize.Config{
		DataDir:    dataDir,
		Router:     router,
		MaxWorkers: runtime.MaxWorkers,
	})
	if err != nil {
		return nil, fmt.Errorf("build summariser: %w", err)
	}

	orch := orchestrator.New(orchestrator.Config{
		DataDir:    dataDir,
		Fetcher:    fetcher,
		Normaliser: normaliser,
		Summariser: summariser,
		Mirrors:    mirrors,
	})

	return &app{orchestrator: orch, fetcher: fetcher, normaliser: normaliser, summariser: summariser, router: router}, nil
}

// buildMirrors wires the optional best-effort storage mirrors, if
// configured. Neither is required; an empty slice disables mirroring
// entirely.
func buildMirrors() []mirror.Mirror {
	var mirrors []mirror.Mirror
	if dsn := viper.GetString("postgres_dsn"); dsn != "" {
		pg, err := mirror.NewPostgres(dsn)
		if err == nil {
			mirrors = append(mirrors, pg)
		}
	}
	if addr := viper.GetString("redis_addr"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		mirrors = append(mirrors, mirror.NewRedis(client))
	}
	return mirrors
}
