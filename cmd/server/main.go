package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-pathlab/internal/api"
	"github.com/annel0/voxel-pathlab/internal/cache"
	"github.com/annel0/voxel-pathlab/internal/config"
	"github.com/annel0/voxel-pathlab/internal/eventbus"
	"github.com/annel0/voxel-pathlab/internal/harness"
	"github.com/annel0/voxel-pathlab/internal/logging"
	"github.com/annel0/voxel-pathlab/internal/observability"
	"github.com/annel0/voxel-pathlab/internal/render"
	"github.com/annel0/voxel-pathlab/internal/scenario"
	"github.com/annel0/voxel-pathlab/internal/solver"
	"github.com/annel0/voxel-pathlab/internal/storage"
	"github.com/annel0/voxel-pathlab/internal/world"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию ENV PATHLAB_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем систему логирования
	logging.SetLogDir(cfg.Logging.Dir)
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	logging.GetLoggerManager().EnableFiles(cfg.Logging.Files)
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🧪 Запуск стенда поиска пути по вокселям...")
	logging.Info("📡 Решатель: %s, REST API: %s", cfg.Solver.GetURL(), cfg.Server.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === ТЕЛЕМЕТРИЯ ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, observability.Options{
			ServiceName: cfg.Telemetry.ServiceName,
			Endpoint:    cfg.Telemetry.Endpoint,
			Insecure:    cfg.Telemetry.Insecure,
		})
		if err != nil {
			logging.Warn("⚠️ OpenTelemetry не инициализирован: %v", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	// === РЕНДЕР И МИР ===
	scene := render.NewScene()
	renderLoop := render.NewLoop(scene, cfg.Render.FrameRate)
	go renderLoop.Run(ctx)
	voxels := world.NewWorld(scene)

	// === РЕШАТЕЛЬ ===
	metrics := solver.NewMetrics(nil)
	var pathSolver solver.Solver = solver.NewHTTPClient(cfg.Solver.GetURL(), cfg.Solver.Timeout(), metrics)

	resultCache, err := buildCache(cfg.Cache)
	if err != nil {
		logging.Warn("⚠️ Кеш недоступен, запросы идут напрямую: %v", err)
	}
	if resultCache != nil {
		defer resultCache.Close()
		pathSolver = solver.NewCachedSolver(pathSolver, resultCache, cfg.Cache.TTL(), metrics)
		logging.Info("🗃️ Кеш результатов: %s", cfg.Cache.Backend)
	}

	// === ШИНА СОБЫТИЙ ===
	bus, err := buildBus(cfg.EventBus)
	if err != nil {
		logging.Warn("⚠️ JetStream недоступен (%v), используется in-memory шина", err)
		bus = eventbus.NewMemoryBus(cfg.EventBus.Buffer)
	}
	defer bus.Close()
	eventbus.Init(bus)

	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("⚠️ Логирование событий не запущено: %v", err)
	}
	exporter := eventbus.NewMetricsExporter(bus, nil)
	go exporter.Run(ctx)

	// === ИСТОРИЯ ===
	history, err := buildHistory(cfg.Storage)
	if err != nil {
		logging.Error("❌ Ошибка открытия истории: %v", err)
		log.Fatalf("❌ Ошибка открытия истории: %v", err)
	}
	defer history.Close()

	// === СТЕНД ===
	session, err := harness.NewSession(harness.Config{
		World:            voxels,
		Catalog:          scenario.Default(),
		Algorithms:       solver.DefaultAlgorithms(),
		Solver:           pathSolver,
		Bus:              bus,
		History:          history,
		DefaultAlgorithm: cfg.Defaults.Algorithm,
	})
	if err != nil {
		log.Fatalf("❌ Ошибка создания сессии: %v", err)
	}
	session.Run(ctx)

	if cfg.Defaults.Scenario != "" {
		if _, err := session.LoadScenario(ctx, cfg.Defaults.Scenario); err != nil {
			logging.Warn("⚠️ Сценарий по умолчанию не загружен: %v", err)
		}
	}

	// === WEBHOOK'И ===
	webhooks := api.NewOutboundWebhookManager(cfg.Telemetry.ServiceName)
	for _, w := range cfg.Webhooks {
		webhooks.AddWebhook(api.OutboundWebhook{Name: w.Name, URL: w.URL, Secret: w.Secret, Events: w.Events})
	}
	if _, err := webhooks.Attach(ctx, bus); err != nil {
		logging.Warn("⚠️ Webhook'и не подписаны на шину: %v", err)
	}

	// === REST API ===
	gin.SetMode(gin.ReleaseMode)
	restServer := api.NewRestServer(api.Config{
		Port:     cfg.Server.Addr(),
		Session:  session,
		History:  history,
		Loop:     renderLoop,
		Webhooks: webhooks,
		Service:  "pathlab",
	})
	apiIntegration := api.NewServerIntegration(restServer)
	if err := apiIntegration.Start(); err != nil {
		logging.Error("❌ Ошибка запуска REST API: %v", err)
		log.Fatalf("❌ Ошибка запуска REST API: %v", err)
	}

	logging.Info("✅ Стенд запущен")
	logging.Info("💡 Примеры:")
	logging.Info("   curl http://%s/api/scenarios", apiIntegration.Addr())
	logging.Info("   curl -X POST http://%s/api/find-path -H 'Content-Type: application/json' -d '{\"algorithm\":\"astar\"}'", apiIntegration.Addr())

	// Канал для получения сигналов ОС
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
	case err := <-apiIntegration.Errors():
		logging.Error("❌ REST API остановился: %v", err)
	}

	// === GRACEFUL SHUTDOWN ===
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := apiIntegration.Stop(stopCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	session.Stop()
	webhooks.Close()
	cancel()

	logging.Info("👋 Стенд остановлен")
}

// buildCache создаёт кеш результатов; backend "none" возвращает nil
func buildCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(&cache.CacheConfig{
			RedisURL:      cfg.RedisURL,
			RedisPassword: cfg.RedisPassword,
			RedisDB:       cfg.RedisDB,
			DefaultTTL:    cfg.TTL(),
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case "memory":
		return cache.NewMemoryCache(cfg.MaxItems), nil
	default:
		return nil, nil
	}
}

func buildBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.Backend != "jetstream" {
		return eventbus.NewMemoryBus(cfg.Buffer), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, cfg.RetentionDuration())
	if err != nil {
		return nil, err
	}
	logging.Info("📨 JetStream шина: %s, стрим %s", cfg.URL, cfg.Stream)
	return bus, nil
}

func buildHistory(cfg config.StorageConfig) (storage.HistoryRepo, error) {
	if cfg.Backend != "badger" {
		return storage.NewMemoryHistory(cfg.MaxRuns), nil
	}
	h, err := storage.NewBadgerHistory(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("badger %s: %w", cfg.DataPath, err)
	}
	logging.Info("💾 История запусков: badger %s", cfg.DataPath)
	return h, nil
}
