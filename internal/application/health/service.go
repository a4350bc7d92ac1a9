package health

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"propview-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

var processStart = time.Now()

// DBPinger is optional for health checks. If nil, the database is reported
// as disconnected.
type DBPinger interface {
	Ping() error
}

// CollectResult is the payload for /health/json.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64  `json:"uptimeSeconds"`
	HeapUsed      uint64 `json:"heapUsed"`
	GoVersion     string `json:"goVersion"`
}

type TrafficInfo struct {
	TotalRequests   int    `json:"totalRequests"`
	FailedCount     int    `json:"failedCount"`
	SuccessRate     string `json:"successRate"`
	AvgResponseTime string `json:"avgResponseTime"`
	LastRequest     string `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// CollectHealth gathers runtime stats, Redis traffic counters, and
// dependency pings.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger) CollectResult {
	result := CollectResult{
		Status:       "ok",
		Dependencies: make(map[string]DepStatus),
	}

	dbStatus := "disconnected"
	var dbPingMs *int64
	if db != nil {
		start := time.Now()
		if err := db.Ping(); err == nil {
			ms := time.Since(start).Milliseconds()
			dbPingMs = &ms
			dbStatus = "connected"
		} else {
			dbStatus = "error"
			result.Status = "degraded"
		}
	}
	result.Dependencies["database"] = DepStatus{Status: dbStatus, PingMs: dbPingMs}

	redisStatus := "disconnected"
	var redisPingMs *int64
	if rdb != nil {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisPingMs = &ms
			redisStatus = "connected"
		} else {
			redisStatus = "error"
			result.Status = "degraded"
		}
	}
	result.Dependencies["redis"] = DepStatus{Status: redisStatus, PingMs: redisPingMs}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	result.Runtime = RuntimeInfo{
		UptimeSeconds: int64(time.Since(processStart).Seconds()),
		HeapUsed:      mem.HeapAlloc,
		GoVersion:     runtime.Version(),
	}

	if rdb != nil && redisStatus == "connected" {
		total := getInt(ctx, rdb, middleware.KeyReqTotal)
		failed := getInt(ctx, rdb, middleware.KeyReqErrors)
		resCount := getInt(ctx, rdb, middleware.KeyResCount)
		resTime := getFloat(ctx, rdb, middleware.KeyResTime)

		successRate := "n/a"
		if total > 0 {
			successRate = fmt.Sprintf("%.1f%%", float64(total-failed)/float64(total)*100)
		}
		avg := "n/a"
		if resCount > 0 {
			avg = fmt.Sprintf("%.0fms", resTime/float64(resCount))
		}
		lastReq, _ := rdb.Get(ctx, middleware.KeyLastReq).Result()

		result.Traffic = TrafficInfo{
			TotalRequests:   total,
			FailedCount:     failed,
			SuccessRate:     successRate,
			AvgResponseTime: avg,
			LastRequest:     lastReq,
		}
	}

	return result
}

// ResetStats clears all health counters.
func ResetStats(ctx context.Context, rdb *redis.Client) error {
	return rdb.Del(ctx,
		middleware.KeyReqTotal,
		middleware.KeyReqErrors,
		middleware.KeyResTime,
		middleware.KeyResCount,
		middleware.KeyLastReq,
	).Err()
}

func getInt(ctx context.Context, rdb *redis.Client, key string) int {
	v, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(v)
	return n
}

func getFloat(ctx context.Context, rdb *redis.Client, key string) float64 {
	v, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return 0
	}
	f, _ := strconv.ParseFloat(v, 64)
	return f
}
