package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/annel0/voxel-pathlab/internal/logging"
)

// ServerIntegration управляет жизненным циклом HTTP сервера стенда
type ServerIntegration struct {
	restServer *RestServer
	httpServer *http.Server
	listener   net.Listener
	errc       chan error
}

// NewServerIntegration создает интеграцию поверх готового REST сервера
func NewServerIntegration(restServer *RestServer) *ServerIntegration {
	return &ServerIntegration{
		restServer: restServer,
		errc:       make(chan error, 1),
	}
}

// Start запускает REST API сервер
func (si *ServerIntegration) Start() error {
	ln, err := net.Listen("tcp", si.restServer.port)
	if err != nil {
		return err
	}
	si.listener = ln

	// Создаем HTTP сервер для graceful shutdown
	si.httpServer = &http.Server{
		Handler:           si.restServer.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := si.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("❌ Ошибка REST API сервера: %v", err)
			si.errc <- err
		}
	}()

	logging.Info("✅ REST API сервер запущен на http://%s", ln.Addr())
	logging.Info("📋 Доступные эндпоинты:")
	logging.Info("   GET  /api/scenarios, POST /api/scenarios/:key")
	logging.Info("   GET  /api/algorithms")
	logging.Info("   POST /api/find-path, /api/compare, /api/reset")
	logging.Info("   GET  /api/status, /api/world, /api/world/snapshot, /api/history, /api/server")
	logging.Info("   GET  /ws/scene, /metrics, /health")
	return nil
}

// Addr возвращает фактический адрес прослушивания
func (si *ServerIntegration) Addr() string {
	if si.listener == nil {
		return si.restServer.port
	}
	return si.listener.Addr().String()
}

// Errors отдаёт фатальные ошибки сервера
func (si *ServerIntegration) Errors() <-chan error {
	return si.errc
}

// Stop останавливает REST API сервер
func (si *ServerIntegration) Stop(ctx context.Context) error {
	logging.Info("🛑 Остановка REST API сервера...")

	if si.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := si.httpServer.Shutdown(ctx); err != nil {
		logging.Error("❌ Ошибка при остановке HTTP сервера: %v", err)
		return err
	}

	logging.Info("✅ REST API сервер остановлен")
	return nil
}
