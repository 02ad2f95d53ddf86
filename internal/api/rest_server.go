package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/voxel-pathlab/internal/harness"
	"github.com/annel0/voxel-pathlab/internal/logging"
	"github.com/annel0/voxel-pathlab/internal/middleware"
	"github.com/annel0/voxel-pathlab/internal/render"
	"github.com/annel0/voxel-pathlab/internal/solver"
	"github.com/annel0/voxel-pathlab/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RestServer - операторская поверхность стенда
type RestServer struct {
	router   *gin.Engine
	session  *harness.Session
	history  storage.HistoryRepo
	loop     *render.Loop
	webhooks *OutboundWebhookManager
	port     string
	metrics  *ServerMetrics
	log      *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string                  // адрес прослушивания, например ":8090"
	Session  *harness.Session        // цикл стенда
	History  storage.HistoryRepo     // история запусков (может быть nil)
	Loop     *render.Loop            // цикл рендера для /ws/scene (может быть nil)
	Webhooks *OutboundWebhookManager // исходящие webhook'и (может быть nil)
	Registry prometheus.Registerer   // nil - дефолтный регистр
	Service  string                  // имя сервиса для otelgin и метрик
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8090"
	}
	if config.Service == "" {
		config.Service = "pathlab"
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware(config.Service))

	loggerMw := middleware.NewRequestLogger()
	router.Use(loggerMw.Handler())

	promMw := middleware.NewPrometheusMiddleware(config.Service, config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	server := &RestServer{
		router:   router,
		session:  config.Session,
		history:  config.History,
		loop:     config.Loop,
		webhooks: config.Webhooks,
		port:     config.Port,
		metrics:  NewServerMetrics(),
		log:      logging.GetAPILogger(),
	}

	server.setupRoutes()
	return server
}

// Handler возвращает http.Handler сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// Middleware для CORS
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	api := rs.router.Group("/api")
	{
		api.GET("/scenarios", rs.handleListScenarios)
		api.POST("/scenarios/:key", rs.handleLoadScenario)
		api.GET("/algorithms", rs.handleListAlgorithms)

		api.POST("/find-path", rs.handleFindPath)
		api.POST("/compare", rs.handleCompare)
		api.POST("/reset", rs.handleReset)

		api.GET("/status", rs.handleStatus)
		api.GET("/world", rs.handleWorld)
		api.GET("/world/snapshot", rs.handleWorldSnapshot)
		api.GET("/history", rs.handleHistory)
		api.GET("/server", rs.handleServerInfo)

		hooks := api.Group("/webhooks")
		{
			hooks.GET("", rs.handleGetOutboundWebhooks)
			hooks.POST("", rs.handleCreateOutboundWebhook)
			hooks.GET("/events", rs.handleGetWebhookEventTypes)
			hooks.DELETE("/:id", rs.handleDeleteOutboundWebhook)
		}
	}

	rs.router.GET("/ws/scene", rs.handleSceneStream)
	rs.router.GET("/health", rs.handleHealth)
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, GenericResponse{
		Success: status < http.StatusBadRequest,
		Message: message,
		Data:    data,
	})
}

// fail переводит ошибку стенда в HTTP статус
func (rs *RestServer) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, harness.ErrUnknownScenario):
		status = http.StatusNotFound
	case errors.Is(err, harness.ErrNoScenario):
		status = http.StatusConflict
	case errors.Is(err, solver.ErrUnknownAlgorithm),
		errors.Is(err, solver.ErrUnknownHeuristic),
		errors.Is(err, solver.ErrInvalidParameter):
		status = http.StatusBadRequest
	case errors.Is(err, harness.ErrStopped):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		rs.log.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	respond(c, status, err.Error(), nil)
}

// scenarioView - сценарий без генератора
type scenarioView struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Start       interface{} `json:"start"`
	Goal        interface{} `json:"goal"`
}

func (rs *RestServer) handleListScenarios(c *gin.Context) {
	list := rs.session.Scenarios().List()
	views := make([]scenarioView, 0, len(list))
	for _, s := range list {
		views = append(views, scenarioView{Key: s.Key, Name: s.Name, Description: s.Description, Start: s.Start, Goal: s.Goal})
	}
	respond(c, http.StatusOK, "Список сценариев", views)
}

func (rs *RestServer) handleLoadScenario(c *gin.Context) {
	sc, err := rs.session.LoadScenario(c.Request.Context(), c.Param("key"))
	if err != nil {
		rs.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Сценарий загружен", scenarioView{
		Key: sc.Key, Name: sc.Name, Description: sc.Description, Start: sc.Start, Goal: sc.Goal,
	})
}

func (rs *RestServer) handleListAlgorithms(c *gin.Context) {
	respond(c, http.StatusOK, "Список алгоритмов", gin.H{
		"algorithms": rs.session.Algorithms().List(),
		"heuristics": solver.Heuristics,
	})
}

func (rs *RestServer) handleFindPath(c *gin.Context) {
	var q harness.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		respond(c, http.StatusBadRequest, "Неверный формат запроса", nil)
		return
	}

	rep, err := rs.session.FindPath(c.Request.Context(), q)
	if err != nil {
		rs.fail(c, err)
		return
	}
	// Все исходы решателя - штатные ответы; статус лежит в отчёте
	respond(c, http.StatusOK, rep.Message, rep)
}

func (rs *RestServer) handleCompare(c *gin.Context) {
	var q harness.CompareQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		respond(c, http.StatusBadRequest, "Неверный формат запроса", nil)
		return
	}

	cmp, err := rs.session.Compare(c.Request.Context(), q)
	if err != nil {
		rs.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Сравнение выполнено", cmp)
}

func (rs *RestServer) handleReset(c *gin.Context) {
	if err := rs.session.Reset(c.Request.Context()); err != nil {
		rs.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Мир сброшен", nil)
}

func (rs *RestServer) handleStatus(c *gin.Context) {
	st, err := rs.session.Status(c.Request.Context())
	if err != nil {
		rs.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Состояние сессии", st)
}

func (rs *RestServer) handleWorld(c *gin.Context) {
	blocks, err := rs.session.Blocks(c.Request.Context())
	if err != nil {
		rs.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Блоки мира", gin.H{"count": len(blocks), "blocks": blocks})
}

// handleWorldSnapshot отдаёт выгрузку мира, сжатую zstd
func (rs *RestServer) handleWorldSnapshot(c *gin.Context) {
	blocks, err := rs.session.Blocks(c.Request.Context())
	if err != nil {
		rs.fail(c, err)
		return
	}
	data, err := storage.EncodeJSON(blocks)
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="world.json.zst"`)
	c.Header("X-Block-Count", strconv.Itoa(len(blocks)))
	c.Data(http.StatusOK, "application/zstd", data)
}

func (rs *RestServer) handleHistory(c *gin.Context) {
	if rs.history == nil {
		respond(c, http.StatusServiceUnavailable, "История отключена", nil)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 1000 {
		respond(c, http.StatusBadRequest, "limit должен быть числом от 1 до 1000", nil)
		return
	}

	runs, err := rs.history.Recent(c.Request.Context(), limit)
	if err != nil {
		rs.fail(c, err)
		return
	}
	total, _ := rs.history.Count(c.Request.Context())
	respond(c, http.StatusOK, "История запусков", gin.H{"runs": runs, "total": total})
}

// handleServerInfo возвращает информацию о процессе
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	info := rs.metrics.Snapshot()
	if rs.loop != nil {
		info.Frames = rs.loop.Frames()
		info.Viewers = rs.loop.Subscribers()
	}
	respond(c, http.StatusOK, "Информация о сервере", info)
}

// handleHealth - проверка живости без обращения к решателю
func (rs *RestServer) handleHealth(c *gin.Context) {
	select {
	case <-rs.session.Done():
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "stopped"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
			"uptime": rs.metrics.GetUptime(),
		})
	}
}
