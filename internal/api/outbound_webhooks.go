package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/annel0/voxel-pathlab/internal/eventbus"
	"github.com/annel0/voxel-pathlab/internal/logging"
	"github.com/gin-gonic/gin"
)

// OutboundWebhook - подписка внешнего сервиса (CI, дашборд) на события стенда
type OutboundWebhook struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name" binding:"required"`
	URL          string     `json:"url" binding:"required,url"`
	Secret       string     `json:"secret,omitempty"`
	Events       []string   `json:"events" binding:"required"` // типы событий шины или "*"
	Active       bool       `json:"active"`
	Timeout      int        `json:"timeout"` // секунды
	RetryCount   int        `json:"retry_count"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsed     *time.Time `json:"last_used,omitempty"`
	Delivered    int        `json:"delivered"`
	FailureCount int        `json:"failure_count"`
}

// OutboundWebhookManager пересылает события шины подписанным webhook'ам
type OutboundWebhookManager struct {
	webhooks   map[uint64]*OutboundWebhook
	eventQueue chan *eventbus.Envelope
	mu         sync.RWMutex
	nextID     uint64
	httpClient *http.Client
	serverID   string
	retryDelay time.Duration
	log        *logging.Logger

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewOutboundWebhookManager создает менеджер исходящих webhook'ов
func NewOutboundWebhookManager(serverID string) *OutboundWebhookManager {
	manager := &OutboundWebhookManager{
		webhooks:   make(map[uint64]*OutboundWebhook),
		eventQueue: make(chan *eventbus.Envelope, 1000),
		nextID:     1,
		serverID:   serverID,
		retryDelay: time.Second,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logging.GetAPILogger(),
	}

	manager.wg.Add(1)
	go manager.eventWorker()
	return manager
}

// Attach подписывает менеджер на все события шины
func (owm *OutboundWebhookManager) Attach(ctx context.Context, bus eventbus.EventBus) (eventbus.Subscription, error) {
	return bus.Subscribe(ctx, eventbus.Filter{}, func(_ context.Context, ev *eventbus.Envelope) {
		owm.Enqueue(ev)
	})
}

// Enqueue ставит событие в очередь, не блокируясь
func (owm *OutboundWebhookManager) Enqueue(ev *eventbus.Envelope) {
	select {
	case owm.eventQueue <- ev:
	default:
		owm.log.Warn("⚠️ Очередь webhook'ов переполнена, событие %s пропущено", ev.EventType)
	}
}

// Close останавливает воркер и дожидается текущих отправок
func (owm *OutboundWebhookManager) Close() {
	owm.closeOnce.Do(func() {
		close(owm.eventQueue)
	})
	owm.wg.Wait()
}

// AddWebhook добавляет новый webhook
func (owm *OutboundWebhookManager) AddWebhook(webhook OutboundWebhook) *OutboundWebhook {
	owm.mu.Lock()
	defer owm.mu.Unlock()

	webhook.ID = owm.nextID
	owm.nextID++
	webhook.CreatedAt = time.Now()
	webhook.Active = true

	if webhook.Timeout == 0 {
		webhook.Timeout = 10
	}
	if webhook.RetryCount == 0 {
		webhook.RetryCount = 2
	}

	owm.webhooks[webhook.ID] = &webhook
	copied := webhook
	return &copied
}

// GetWebhooks возвращает копии всех webhook'ов, упорядоченные по ID
func (owm *OutboundWebhookManager) GetWebhooks() []OutboundWebhook {
	owm.mu.RLock()
	defer owm.mu.RUnlock()

	webhooks := make([]OutboundWebhook, 0, len(owm.webhooks))
	for _, webhook := range owm.webhooks {
		webhooks = append(webhooks, *webhook)
	}
	sort.Slice(webhooks, func(i, j int) bool { return webhooks[i].ID < webhooks[j].ID })
	return webhooks
}

// DeleteWebhook удаляет webhook
func (owm *OutboundWebhookManager) DeleteWebhook(id uint64) bool {
	owm.mu.Lock()
	defer owm.mu.Unlock()

	if _, exists := owm.webhooks[id]; !exists {
		return false
	}
	delete(owm.webhooks, id)
	return true
}

// eventWorker обрабатывает события из очереди
func (owm *OutboundWebhookManager) eventWorker() {
	defer owm.wg.Done()
	for ev := range owm.eventQueue {
		owm.processEvent(ev)
	}
}

// processEvent отправляет событие каждому подписанному webhook'у
func (owm *OutboundWebhookManager) processEvent(ev *eventbus.Envelope) {
	owm.mu.RLock()
	targets := make([]*OutboundWebhook, 0)
	for _, webhook := range owm.webhooks {
		if webhook.Active && isSubscribedToEvent(webhook, ev.EventType) {
			targets = append(targets, webhook)
		}
	}
	owm.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		owm.log.Error("❌ Ошибка маршалинга события %s: %v", ev.EventType, err)
		return
	}

	for _, webhook := range targets {
		owm.wg.Add(1)
		go func(w *OutboundWebhook) {
			defer owm.wg.Done()
			owm.sendToWebhook(w, ev.EventType, body)
		}(webhook)
	}
}

// isSubscribedToEvent проверяет, подписан ли webhook на событие
func isSubscribedToEvent(webhook *OutboundWebhook, eventType string) bool {
	for _, subscribed := range webhook.Events {
		if subscribed == eventType || subscribed == "*" {
			return true
		}
	}
	return false
}

// sendToWebhook отправляет событие конкретному webhook'у с повторами
func (owm *OutboundWebhookManager) sendToWebhook(webhook *OutboundWebhook, eventType string, body []byte) {
	owm.mu.RLock()
	url, name, secret := webhook.URL, webhook.Name, webhook.Secret
	timeout := time.Duration(webhook.Timeout) * time.Second
	retries := webhook.RetryCount
	owm.mu.RUnlock()

	var signature string
	if secret != "" {
		signature = generateSignature(body, secret)
	}

	success := false
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * owm.retryDelay)
		}

		status, err := owm.post(url, timeout, eventType, signature, body)
		if err != nil {
			owm.log.Warn("⚠️ Попытка %d/%d для webhook %s: %v", attempt+1, retries+1, name, err)
			continue
		}
		if status >= 200 && status < 300 {
			success = true
			owm.log.Debug("событие %s отправлено в webhook %s", eventType, name)
			break
		}
		owm.log.Warn("⚠️ Webhook %s вернул статус %d на попытке %d", name, status, attempt+1)
	}

	owm.mu.Lock()
	now := time.Now()
	webhook.LastUsed = &now
	if success {
		webhook.Delivered++
	} else {
		webhook.FailureCount++
	}
	owm.mu.Unlock()
}

// post - одна попытка доставки; запрос собирается заново на каждую попытку
func (owm *OutboundWebhookManager) post(url string, timeout time.Duration, eventType, signature string, body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Voxel-Pathlab/1.0")
	req.Header.Set("X-Event-Type", eventType)
	req.Header.Set("X-Server-ID", owm.serverID)
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}

	resp, err := owm.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// generateSignature генерирует HMAC подпись тела
func generateSignature(data []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// GetEventTypes возвращает типы событий, на которые можно подписаться
func (owm *OutboundWebhookManager) GetEventTypes() []string {
	return []string{
		eventbus.EventScenarioLoaded,
		eventbus.EventPathRequested,
		eventbus.EventPathResolved,
		eventbus.EventWorldReset,
		eventbus.EventCompared,
		"*",
	}
}

// === REST ===

func (rs *RestServer) webhooksEnabled(c *gin.Context) bool {
	if rs.webhooks == nil {
		respond(c, http.StatusServiceUnavailable, "Webhook'и отключены", nil)
		return false
	}
	return true
}

func (rs *RestServer) handleGetOutboundWebhooks(c *gin.Context) {
	if !rs.webhooksEnabled(c) {
		return
	}
	respond(c, http.StatusOK, "Список webhook'ов", rs.webhooks.GetWebhooks())
}

func (rs *RestServer) handleCreateOutboundWebhook(c *gin.Context) {
	if !rs.webhooksEnabled(c) {
		return
	}
	var webhook OutboundWebhook
	if err := c.ShouldBindJSON(&webhook); err != nil {
		respond(c, http.StatusBadRequest, "Неверный формат webhook'а: "+err.Error(), nil)
		return
	}
	created := rs.webhooks.AddWebhook(webhook)
	rs.log.Info("🔗 Добавлен webhook %s -> %s", created.Name, created.URL)
	respond(c, http.StatusCreated, "Webhook создан", created)
}

func (rs *RestServer) handleDeleteOutboundWebhook(c *gin.Context) {
	if !rs.webhooksEnabled(c) {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respond(c, http.StatusBadRequest, "Неверный ID", nil)
		return
	}
	if !rs.webhooks.DeleteWebhook(id) {
		respond(c, http.StatusNotFound, "Webhook не найден", nil)
		return
	}
	respond(c, http.StatusOK, "Webhook удалён", nil)
}

func (rs *RestServer) handleGetWebhookEventTypes(c *gin.Context) {
	if !rs.webhooksEnabled(c) {
		return
	}
	respond(c, http.StatusOK, "Типы событий", rs.webhooks.GetEventTypes())
}
