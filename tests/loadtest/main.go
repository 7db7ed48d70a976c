package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mr-tron/base58"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numOwners    = 200
)

var txActions = []string{"buy", "claim", "stake", "unstake", "heartbeat"}

var owners = makeOwners(numOwners)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func makeOwners(n int) []string {
	rng := rand.New(rand.NewSource(42))
	out := make([]string, n)
	for i := range out {
		key := make([]byte, 32)
		rng.Read(key)
		out[i] = base58.Encode(key)
	}
	return out
}

func main() {
	fmt.Println("=== MineLens Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Owners: %d\n\n", numWorkers, testDuration, numOwners)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: Telemetry intake
	fmt.Println("\n--- Phase 1: Telemetry intake (POST /admin/telemetry) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doTelemetry(rng)
	})

	// Phase 2: Cached network reads
	fmt.Println("\n--- Phase 2: Network reads (70% aggregate, 20% history, 10% stake) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.70:
			return doGet("GET /hp/network", "/hp/network")
		case r < 0.90:
			return doGetHistory(rng)
		default:
			return doGet("GET /stake/weighted", "/stake/weighted")
		}
	})

	// Phase 3: Per-wallet reads mixed with telemetry
	fmt.Println("\n--- Phase 3: Wallet load (40% wallet, 30% reward, 20% telemetry, 10% technical) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		owner := owners[rng.Intn(len(owners))]
		switch {
		case r < 0.40:
			return doGet("GET /hp/wallet", "/hp/wallet?owner="+owner)
		case r < 0.70:
			return doGet("GET /reward/estimate", "/reward/estimate?owner="+owner)
		case r < 0.90:
			return doTelemetry(rng)
		default:
			return doGet("GET /admin/health/technical", "/admin/health/technical")
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-28s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 94))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-28s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 94))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doTelemetry(rng *rand.Rand) result {
	body := map[string]interface{}{
		"kind":       "tx",
		"action":     txActions[rng.Intn(len(txActions))],
		"ok":         rng.Float64() < 0.97,
		"durationMs": rng.Intn(2000),
	}
	if rng.Float64() < 0.05 {
		body = map[string]interface{}{
			"kind":    "app_error",
			"message": fmt.Sprintf("loadtest error %d", rng.Intn(100)),
		}
	}

	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/admin/telemetry", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /admin/telemetry", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /admin/telemetry", resp.StatusCode, lat, resp.StatusCode != http.StatusAccepted}
}

func doGetHistory(rng *rand.Rand) result {
	hours := []int{24, 72, 168}[rng.Intn(3)]
	return doGet("GET /hp/history", fmt.Sprintf("/hp/history?hours=%d&stepHours=6", hours))
}

func doGet(endpoint, path string) result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
