// README: Bench cases; environment checks, the request lifecycle over HTTP, the accept race and quote load.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// trackingID is the request the lifecycle cases walk through.
	trackingID string
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{Name: "Env: Postgres connect", Run: pingPostgres},
		{Name: "Env: Redis connect", Run: pingRedis},
		{Name: "Migration: apply (optional)", Run: applyMigration},
		{Name: "Migration: tables exist", Run: tablesExist},

		expect("API: health", http.MethodGet, "/health", nil, http.StatusOK),

		{Name: "Quote: campus location ranks bases by fee", Run: quoteRanked},
		expect("Quote: unknown location -> 400", http.MethodPost, "/api/quotes", map[string]any{"location": "Nowhere Near Here"}, http.StatusBadRequest),
		expect("Quote: unknown preset -> 422", http.MethodPost, "/api/quotes", map[string]any{"location": "FBC", "preset": "gold"}, http.StatusUnprocessableEntity),

		{Name: "Request: create", Run: createFlowRequest},
		expect("Request: missing item_description -> 400", http.MethodPost, "/api/requests", requestBody(""), http.StatusBadRequest),
		flow("Request: accept", "accept", map[string]any{"shopper_id": "bench-s1", "name": "Bench Shopper"}, http.StatusOK),
		flow("Request: second accept -> 409", "accept", map[string]any{"shopper_id": "bench-s2"}, http.StatusConflict),
		flow("Request: rate before delivery -> 409", "rate", map[string]any{"rating": 5}, http.StatusConflict),
		flow("Request: deliver by other shopper -> 403", "deliver", map[string]any{"shopper_id": "bench-s2"}, http.StatusForbidden),
		flow("Request: deliver", "deliver", map[string]any{"shopper_id": "bench-s1"}, http.StatusOK),
		flow("Request: cancel delivered -> 409", "cancel", map[string]any{"shopper_id": "bench-s1"}, http.StatusConflict),
		flow("Request: rating 6 -> 400", "rate", map[string]any{"rating": 6}, http.StatusBadRequest),
		flow("Request: rate", "rate", map[string]any{"rating": 5}, http.StatusOK),

		{Name: "Consistency: audit trail matches transitions", Run: eventsMatch},
		{Name: "Consistency: status_version in database", Run: statusVersion},

		{Name: "Concurrency: many shoppers accept one request", Run: concurrentAccept},
		{Name: "Perf: quote throughput", Run: quoteLoad},
	}
}

func requestBody(item string) map[string]any {
	return map[string]any{
		"requester_name":         "Bench Requester",
		"requester_contact":      "+23276000000",
		"location":               "FBC",
		"item_description":       item,
		"preferred_shopper_base": "Congo Cross",
	}
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (r *Runner) do(ctx context.Context, method, path string, body, out any) (int, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, 0, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.AccessKey != "" {
		req.Header.Set("X-Access-Key", r.cfg.AccessKey)
	}

	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	latency := time.Since(start)
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, latency, fmt.Errorf("decode response: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, latency, nil
}

func expect(name, method, path string, body any, want int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			code, latency, err := r.do(ctx, method, path, body, nil)
			return statusResult(code, latency, err, want)
		},
	}
}

// flow posts an action against the lifecycle request created earlier.
func flow(name, action string, body any, want int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			if r.trackingID == "" {
				return Result{Status: StatusSkip, Note: "no request created"}
			}
			code, latency, err := r.do(ctx, http.MethodPost, "/api/requests/"+r.trackingID+"/"+action, body, nil)
			return statusResult(code, latency, err, want)
		},
	}
}

func statusResult(code int, latency time.Duration, err error, want int) Result {
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	if code != want {
		return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d want=%d", code, want)}
	}
	return Result{Status: StatusPass, Latency: latency, Note: fmt.Sprintf("status=%d", code)}
}

func pingPostgres(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: StatusSkip, Note: "dsn not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	return Result{Status: StatusPass}
}

func pingRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: StatusSkip, Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	return Result{Status: StatusPass}
}

func applyMigration(ctx context.Context, r *Runner) Result {
	if !r.cfg.ApplyMigration {
		return Result{Status: StatusSkip, Note: "apply-migration=false"}
	}
	if r.db == nil {
		return Result{Status: StatusFail, Note: "db not configured"}
	}
	sql, err := os.ReadFile(r.cfg.MigrationPath)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	for _, s := range splitSQL(string(sql)) {
		if _, err := r.db.Exec(ctx, s); err != nil {
			return Result{Status: StatusFail, Note: err.Error()}
		}
	}
	return Result{Status: StatusPass}
}

func tablesExist(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: StatusSkip, Note: "db not configured"}
	}
	tables, err := extractTables(r.cfg.MigrationPath)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	for _, t := range tables {
		var exists bool
		err := r.db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
			t,
		).Scan(&exists)
		if err != nil {
			return Result{Status: StatusFail, Note: err.Error()}
		}
		if !exists {
			return Result{Status: StatusFail, Note: "missing table: " + t}
		}
	}
	return Result{Status: StatusPass, Note: fmt.Sprintf("%d tables", len(tables))}
}

type quoteResponse struct {
	Table struct {
		Quotes []struct {
			Base string `json:"base"`
			Fee  struct {
				Amount int64 `json:"amount"`
			} `json:"fee"`
		} `json:"quotes"`
	} `json:"table"`
}

func quoteRanked(ctx context.Context, r *Runner) Result {
	var res quoteResponse
	code, latency, err := r.do(ctx, http.MethodPost, "/api/quotes", map[string]any{"location": "FBC"}, &res)
	if err != nil || code != http.StatusOK {
		return statusResult(code, latency, err, http.StatusOK)
	}
	quotes := res.Table.Quotes
	if len(quotes) == 0 {
		return Result{Status: StatusFail, Latency: latency, Note: "empty quote table"}
	}
	if !sort.SliceIsSorted(quotes, func(i, j int) bool { return quotes[i].Fee.Amount < quotes[j].Fee.Amount }) {
		return Result{Status: StatusFail, Latency: latency, Note: "quotes not ordered by fee"}
	}
	return Result{Status: StatusPass, Latency: latency, Note: fmt.Sprintf("cheapest=%s %d", quotes[0].Base, quotes[0].Fee.Amount)}
}

type requestResponse struct {
	TrackingID    string `json:"tracking_id"`
	Status        string `json:"status"`
	StatusVersion int    `json:"status_version"`
}

func createRequest(ctx context.Context, r *Runner) (requestResponse, int, time.Duration, error) {
	var res requestResponse
	code, latency, err := r.do(ctx, http.MethodPost, "/api/requests", requestBody("bench: 1 loaf of bread"), &res)
	return res, code, latency, err
}

func createFlowRequest(ctx context.Context, r *Runner) Result {
	res, code, latency, err := createRequest(ctx, r)
	if err != nil || code != http.StatusCreated {
		return statusResult(code, latency, err, http.StatusCreated)
	}
	if len(res.TrackingID) != 8 || res.Status != "pending" {
		return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("id=%q status=%s", res.TrackingID, res.Status)}
	}
	r.trackingID = res.TrackingID
	return Result{Status: StatusPass, Latency: latency, Note: "tracking_id=" + res.TrackingID}
}

func eventsMatch(ctx context.Context, r *Runner) Result {
	if r.trackingID == "" {
		return Result{Status: StatusSkip, Note: "no request created"}
	}
	var res struct {
		Events []struct {
			Event string `json:"event"`
		} `json:"events"`
	}
	code, latency, err := r.do(ctx, http.MethodGet, "/api/requests/"+r.trackingID+"/events", nil, &res)
	if err != nil || code != http.StatusOK {
		return statusResult(code, latency, err, http.StatusOK)
	}
	names := make([]string, 0, len(res.Events))
	for _, e := range res.Events {
		names = append(names, e.Event)
	}
	got := strings.Join(names, ",")
	if got != "create,accept,deliver,rate" {
		return Result{Status: StatusFail, Latency: latency, Note: "events=" + got}
	}
	return Result{Status: StatusPass, Latency: latency, Note: "events=" + got}
}

func statusVersion(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: StatusSkip, Note: "db not configured"}
	}
	if r.trackingID == "" {
		return Result{Status: StatusSkip, Note: "no request created"}
	}
	var version int
	var status string
	err := r.db.QueryRow(ctx,
		"SELECT status, status_version FROM delivery_requests WHERE tracking_id=$1",
		r.trackingID,
	).Scan(&status, &version)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	if status != "delivered" || version != 3 {
		return Result{Status: StatusFail, Note: fmt.Sprintf("status=%s version=%d", status, version)}
	}
	return Result{Status: StatusPass, Note: fmt.Sprintf("version=%d", version)}
}

func concurrentAccept(ctx context.Context, r *Runner) Result {
	created, code, _, err := createRequest(ctx, r)
	if err != nil || code != http.StatusCreated {
		return statusResult(code, 0, err, http.StatusCreated)
	}
	path := "/api/requests/" + created.TrackingID + "/accept"

	var (
		wg                     sync.WaitGroup
		mu                     sync.Mutex
		success, conflict, bad int
	)
	start := make(chan struct{})
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			code, _, err := r.do(ctx, http.MethodPost, path, map[string]any{"shopper_id": fmt.Sprintf("bench-race-%d", i)}, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				bad++
			case code == http.StatusOK:
				success++
			case code == http.StatusConflict:
				conflict++
			default:
				bad++
			}
		}(i)
	}
	close(start)
	wg.Wait()

	note := fmt.Sprintf("success=%d conflict=%d other=%d", success, conflict, bad)
	if success != 1 || bad > 0 {
		return Result{Status: StatusFail, Note: note}
	}
	return Result{Status: StatusPass, Note: note}
}

func quoteLoad(ctx context.Context, r *Runner) Result {
	end := time.Now().Add(r.cfg.Duration)
	var (
		mu              sync.Mutex
		count, errCount int64
		wg              sync.WaitGroup
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				code, _, err := r.do(ctx, http.MethodPost, "/api/quotes", map[string]any{"location": "IPAM"}, nil)
				mu.Lock()
				if err != nil || code != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
