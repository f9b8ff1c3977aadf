package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numAccounts  = 100
	numTokens    = 3
	seedFunds    = int64(1_000_000_000)
)

var tokens = []string{"usdc", "dai", "wxlm"}

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

// createdIDs collects stream ids made during the run so withdraw, cancel
// and read requests can target real records.
var createdIDs struct {
	mu  sync.Mutex
	ids []uint64
}

func rememberID(id uint64) {
	createdIDs.mu.Lock()
	createdIDs.ids = append(createdIDs.ids, id)
	createdIDs.mu.Unlock()
}

func randomID(rng *rand.Rand) (uint64, bool) {
	createdIDs.mu.Lock()
	defer createdIDs.mu.Unlock()
	if len(createdIDs.ids) == 0 {
		return 0, false
	}
	return createdIDs.ids[rng.Intn(len(createdIDs.ids))], true
}

func main() {
	fmt.Println("=== TSD Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Accounts: %d | Tokens: %d\n\n", numAccounts, numTokens)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/version")
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

	// Phase 0: Fund the sender accounts
	fmt.Println("\n--- Phase 0: Funding accounts ---")
	for acc := 0; acc < numAccounts; acc++ {
		for _, token := range tokens {
			body, _ := json.Marshal(map[string]interface{}{
				"token":   token,
				"account": fmt.Sprintf("acct_%d", acc),
				"amount":  seedFunds,
			})
			resp, err := httpClient.Post(baseURL+"/accounts/deposit", "application/json", bytes.NewReader(body))
			if err != nil {
				fmt.Printf("FAILED: deposit error: %s\n", err)
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}
	fmt.Printf("Funded %d accounts across %d tokens\n", numAccounts, numTokens)

	// Phase 1: Seed streams
	fmt.Println("\n--- Phase 1: Seeding streams (POST /streams) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doCreateStream(rng)
	})

	// Phase 2: Mixed load
	fmt.Println("\n--- Phase 2: Mixed load (50% create, 25% withdraw, 25% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.50:
			return doCreateStream(rng)
		case r < 0.75:
			return doWithdraw(rng)
		case r < 0.90:
			return doGetStream(rng)
		default:
			return doListStreams()
		}
	})

	// Phase 3: Read-heavy load
	fmt.Println("\n--- Phase 3: Read-heavy load (10% create, 90% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doCreateStream(rng)
		case r < 0.55:
			return doGetStream(rng)
		case r < 0.85:
			return doListStreams()
		default:
			return doGetBalance(rng)
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

	fmt.Printf("\n  %-26s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 92))

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

		fmt.Printf("  %-26s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 92))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doCreateStream(rng *rand.Rand) result {
	now := uint64(time.Now().Unix())
	start := now - uint64(rng.Intn(3600))
	end := now + uint64(rng.Intn(86400)+60)
	cliff := start
	if rng.Float64() < 0.5 {
		cliff = start + (end-start)/4
	}

	body, _ := json.Marshal(map[string]interface{}{
		"sender":     fmt.Sprintf("acct_%d", rng.Intn(numAccounts)),
		"receiver":   fmt.Sprintf("acct_%d", rng.Intn(numAccounts)),
		"token":      tokens[rng.Intn(len(tokens))],
		"amount":     int64(rng.Intn(10000) + 1),
		"start_time": start,
		"cliff_time": cliff,
		"end_time":   end,
	})

	startT := time.Now()
	resp, err := httpClient.Post(baseURL+"/streams", "application/json", bytes.NewReader(body))
	lat := time.Since(startT)
	if err != nil {
		return result{"POST /streams", 0, lat, true}
	}
	defer resp.Body.Close()
	if resp.StatusCode == 201 {
		var out struct {
			StreamID uint64 `json:"stream_id"`
		}
		if json.NewDecoder(resp.Body).Decode(&out) == nil && out.StreamID > 0 {
			rememberID(out.StreamID)
		}
	} else {
		io.Copy(io.Discard, resp.Body)
	}
	return result{"POST /streams", resp.StatusCode, lat, resp.StatusCode != 201}
}

func doWithdraw(rng *rand.Rand) result {
	id, ok := randomID(rng)
	if !ok {
		return doCreateStream(rng)
	}
	body, _ := json.Marshal(map[string]interface{}{
		"stream_id": id,
		"receiver":  fmt.Sprintf("acct_%d", rng.Intn(numAccounts)),
	})

	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/streams/withdraw", "application/json", bytes.NewReader(body))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /streams/withdraw", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	// 401/404/409 are expected here: random receivers rarely own the
	// stream, and cliffs may not have passed. Only 5xx counts as failure.
	return result{"POST /streams/withdraw", resp.StatusCode, lat, resp.StatusCode >= 500}
}

func doGetStream(rng *rand.Rand) result {
	id, ok := randomID(rng)
	if !ok {
		return doListStreams()
	}
	url := fmt.Sprintf("%s/stream?id=%d", baseURL, id)
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /stream", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /stream", resp.StatusCode, lat, resp.StatusCode != 200 && resp.StatusCode != 404}
}

func doListStreams() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/streams/list")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /streams/list", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /streams/list", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetBalance(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/accounts/balance?token=%s&account=acct_%d",
		baseURL, tokens[rng.Intn(len(tokens))], rng.Intn(numAccounts))
	start := time.Now()
	resp, err := httpClient.Get(url)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /accounts/balance", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /accounts/balance", resp.StatusCode, lat, resp.StatusCode != 200}
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
		return fmt.Sprintf("%dµs", d.Microseconds())
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
