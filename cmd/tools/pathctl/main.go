package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/annel0/voxel-pathlab/internal/render"
	"github.com/annel0/voxel-pathlab/internal/storage"
	"github.com/annel0/voxel-pathlab/internal/world"
	"github.com/gorilla/websocket"
)

const defaultServerAddr = "http://localhost:8090"

// response повторяет GenericResponse REST API
type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	base string
	http *http.Client
}

func main() {
	var (
		serverAddr = flag.String("server", defaultServerAddr, "адрес REST API стенда")
		command    = flag.String("cmd", "status", "Команда: scenarios, load, algorithms, find, compare, reset, status, world, snapshot, history, watch")
		scenario   = flag.String("scenario", "simple", "ключ сценария для load")
		algorithm  = flag.String("algorithm", "astar", "алгоритм для find")
		algorithms = flag.String("algorithms", "", "алгоритмы для compare через запятую (пусто - astar,dijkstra,bfs)")
		heuristic  = flag.String("heuristic", "", "эвристика: manhattan, euclidean, chebyshev")
		weight     = flag.Float64("weight", 0, "вес эвристики (0 - по умолчанию)")
		iterations = flag.Int("iterations", 0, "лимит итераций IDA* (0 - по умолчанию)")
		allowBreak = flag.Bool("break", false, "разрешить ломать блоки")
		allowPlace = flag.Bool("place", false, "разрешить ставить блоки")
		avoidWater = flag.Bool("avoid-water", false, "избегать воды")
		minVert    = flag.Bool("min-vertical", false, "минимизировать подъёмы")
		limit      = flag.Int("limit", 20, "число записей истории")
		out        = flag.String("out", "world.json.zst", "файл для snapshot")
		frames     = flag.Int("frames", 5, "число кадров для watch")
		timeout    = flag.Duration("timeout", 30*time.Second, "таймаут HTTP запроса")
	)
	flag.Parse()

	c := &client{base: strings.TrimRight(*serverAddr, "/"), http: &http.Client{Timeout: *timeout}}

	options := map[string]any{
		"algorithm":        *algorithm,
		"allowBreaking":    *allowBreak,
		"allowPlacing":     *allowPlace,
		"avoidWater":       *avoidWater,
		"minimiseVertical": *minVert,
	}
	if *heuristic != "" {
		options["heuristicType"] = *heuristic
	}
	if *weight > 0 {
		options["heuristicWeight"] = *weight
	}
	if *iterations > 0 {
		options["maxIterations"] = *iterations
	}

	var err error
	switch *command {
	case "scenarios":
		err = c.print(http.MethodGet, "/api/scenarios", nil)
	case "load":
		err = c.print(http.MethodPost, "/api/scenarios/"+url.PathEscape(*scenario), nil)
	case "algorithms":
		err = c.print(http.MethodGet, "/api/algorithms", nil)
	case "find":
		err = c.print(http.MethodPost, "/api/find-path", options)
	case "compare":
		delete(options, "algorithm")
		options["algorithms"] = parseStringList(*algorithms)
		err = c.print(http.MethodPost, "/api/compare", options)
	case "reset":
		err = c.print(http.MethodPost, "/api/reset", nil)
	case "status":
		err = c.print(http.MethodGet, "/api/status", nil)
	case "world":
		err = c.print(http.MethodGet, "/api/world", nil)
	case "history":
		err = c.print(http.MethodGet, fmt.Sprintf("/api/history?limit=%d", *limit), nil)
	case "snapshot":
		err = c.snapshot(*out)
	case "watch":
		err = c.watch(*frames)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
}

// call выполняет запрос и разбирает GenericResponse
func (c *client) call(method, path string, body any) (*response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("HTTP %d: %w", resp.StatusCode, err)
	}
	if !r.Success {
		return &r, fmt.Errorf("HTTP %d: %s", resp.StatusCode, r.Message)
	}
	return &r, nil
}

func (c *client) print(method, path string, body any) error {
	r, err := c.call(method, path, body)
	if err != nil {
		return err
	}

	fmt.Printf("✅ %s\n", r.Message)
	if len(r.Data) == 0 {
		return nil
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, r.Data, "", "  "); err != nil {
		return err
	}
	fmt.Println(pretty.String())
	return nil
}

// snapshot скачивает сжатую выгрузку мира и проверяет её
func (c *client) snapshot(path string) error {
	resp, err := c.http.Get(c.base + "/api/world/snapshot")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var blocks []world.Entry
	if err := storage.DecodeJSON(data, &blocks); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("💾 %s: %d блоков, %d байт сжато\n", path, len(blocks), len(data))
	return nil
}

// watch печатает сводку кадров рендера
func (c *client) watch(n int) error {
	wsURL := "ws" + strings.TrimPrefix(c.base, "http") + "/ws/scene"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for i := 0; i < n; i++ {
		var frame render.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return err
		}
		counts := make(map[string]int)
		for _, m := range frame.Meshes {
			counts[m.Type.String()]++
		}
		fmt.Printf("🎞️ кадр v%d: %d мешей %v\n", frame.Version, len(frame.Meshes), counts)
	}
	return conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
}

// parseStringList разбирает список через запятую
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
