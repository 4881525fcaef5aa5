// Command sessiongate-loadtest measures issue and verify throughput of the
// session engine.
//
// It seeds a pool of session cookies, then drives two phases: an issue
// phase (sign + cookie write) and a verify phase (cookie read + parse +
// optional denylist lookup). With -revoke, revocation is enabled against
// Redis (miniredis when no address is given) so the verify phase includes
// the round trip to the denylist.
//
// Run:
//
//	go run ./cmd/sessiongate-loadtest -sessions 100000 -ops 200000 -revoke
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/medtrack/sessiongate"
)

func main() {
	var (
		sessions    = flag.Int("sessions", 100000, "number of session cookies to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (issue + verify)")
		revoke      = flag.Bool("revoke", false, "enable the revocation denylist during verify")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "sg", "revocation key prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	var (
		cleanup = func() {}
		client  *redis.Client
	)
	if *revoke {
		addr := *redisAddr
		if addr == "" {
			addr = os.Getenv("REDIS_ADDR")
		}
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
				os.Exit(1)
			}
			addr = mr.Addr()
			client = redis.NewClient(&redis.Options{Addr: addr})
			cleanup = func() {
				_ = client.Close()
				mr.Close()
			}
			fmt.Printf("using miniredis at %s\n", addr)
		} else {
			client = redis.NewClient(&redis.Options{Addr: addr})
			cleanup = func() { _ = client.Close() }
			fmt.Printf("using redis at %s\n", addr)
		}
	}
	defer cleanup()

	cfg := sessiongate.DefaultConfig()
	cfg.Token.Secret = []byte("loadtest-secret-loadtest-secret-!!!!")
	cfg.Revocation.Enabled = *revoke
	cfg.Revocation.KeyPrefix = *prefix

	builder := sessiongate.New().WithConfig(cfg)
	if *revoke {
		builder = builder.WithRedis(client)
	}
	engine, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("seeding %d session cookies...\n", *sessions)
	startSeed := time.Now()
	cookies := make([]*http.Cookie, *sessions)
	for i := range cookies {
		c, err := seedCookie(engine, i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
		cookies[i] = c
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	issueStats := runIssuePhase(engine, *ops, *concurrency)
	verifyStats := runVerifyPhase(engine, cookies, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("issue", issueStats)
	printStats("verify", verifyStats)
}

func seedCookie(engine *sessiongate.Engine, i int) (*http.Cookie, error) {
	rec := httptest.NewRecorder()
	err := engine.IssueSession(rec, fmt.Sprintf("user-%d", i), fmt.Sprintf("user-%d@example.com", i), i%2 == 0)
	if err != nil {
		return nil, err
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		return nil, fmt.Errorf("expected 1 cookie, got %d", len(cookies))
	}
	return cookies[0], nil
}

func runIssuePhase(engine *sessiongate.Engine, ops, concurrency int) phaseStats {
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
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				rec := httptest.NewRecorder()
				t0 := time.Now()
				err := engine.IssueSession(rec, fmt.Sprintf("issue-%d", i), "load@example.com", true)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

func runVerifyPhase(engine *sessiongate.Engine, cookies []*http.Cookie, ops, concurrency int) phaseStats {
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
				req := httptest.NewRequest(http.MethodGet, "/es/intranet", nil)
				req.AddCookie(cookies[r.Intn(len(cookies))])
				t0 := time.Now()
				p := engine.Session(req)
				d := time.Since(t0)
				if p == nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
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
