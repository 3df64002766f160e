package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goCinema/catalog"
	"github.com/MrEthical07/goCinema/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		pages       = flag.Int("pages", 50, "distinct catalog pages to request")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase (catalog + session)")
		latency     = flag.Duration("upstream-latency", 20*time.Millisecond, "simulated catalog latency")
		coalesce    = flag.Bool("coalesce", true, "coalesce concurrent identical catalog requests")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gocinema-loadtest", "session key prefix")
	)
	flag.Parse()

	if *pages <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "pages, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	var upstreamHits atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamHits.Add(1)
		time.Sleep(*latency)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(catalog.Page{
			Page:         page,
			TotalPages:   *pages,
			TotalResults: *pages * 20,
			Results:      []catalog.Movie{{ID: int64(page), Title: "Movie " + strconv.Itoa(page)}},
		})
	}))
	defer upstream.Close()

	client, err := catalog.NewClient(catalog.Config{
		BaseURL:          upstream.URL,
		APIKey:           "loadtest",
		CoalesceRequests: *coalesce,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog client: %v\n", err)
		os.Exit(1)
	}

	storage, cleanup := openStorage(*redisAddr, *prefix)
	defer cleanup()
	store := session.NewStore(ctx, storage, session.Options{})

	catalogStats := runCatalogPhase(ctx, client, *pages, *ops, *concurrency)
	sessionStats := runSessionPhase(store, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("catalog", catalogStats)
	fmt.Printf("catalog: upstream requests=%d cached entries=%d\n", upstreamHits.Load(), client.Len())
	printStats("session", sessionStats)
}

func openStorage(addr, prefix string) (session.Storage, func()) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		return session.NewRedisStorage(client, prefix), func() {
			_ = client.Close()
			mr.Close()
		}
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	fmt.Printf("using redis at %s\n", addr)
	return session.NewRedisStorage(client, prefix), func() { _ = client.Close() }
}

func runCatalogPhase(ctx context.Context, client *catalog.Client, pages, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				page := r.Intn(pages) + 1
				t0 := time.Now()
				_, err := client.Popular(ctx, page)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

// runSessionPhase alternates sign-in, token rotation and sign-out so every
// operation writes through to storage.
func runSessionPhase(store *session.Store, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	user := session.User{ID: "loadtest-user", Email: "loadtest@example.com", Role: "authenticated"}
	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				exp := time.Now().Add(time.Hour).Unix()
				tok := "access-" + strconv.Itoa(i)
				t0 := time.Now()
				switch i % 3 {
				case 0:
					if err := store.Authenticate(user, tok, "refresh-"+strconv.Itoa(i), exp); err != nil {
						atomic.AddInt64(&failures, 1)
					}
				case 1:
					store.SetTokens(tok, "refresh-"+strconv.Itoa(i), exp)
				default:
					store.ClearAuthentication()
				}
				d := time.Since(t0)
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
