package upstream

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"
)

var ErrNoHealthyTargets = errors.New("no healthy upstream targets")

// Pool tracks the storefront application instances behind the gateway:
// health-probed on a timer, selected round-robin or by least connections,
// each guarded by its own circuit breaker.
type Pool struct {
	mu      sync.RWMutex
	targets []string
	healthy map[string]bool
	inUse   map[string]int

	breakers map[string]*Breaker
	strategy string
	next     int

	healthPath  string
	probeEvery  time.Duration
	probeClient *http.Client
	stopOnce    sync.Once
	stop        chan struct{}
	done        chan struct{}
}

type PoolConfig struct {
	Targets         []string
	Strategy        string // "round-robin" or "least-connections"
	BreakerFailures int
	BreakerCooldown time.Duration
	HealthPath      string
	ProbeEvery      time.Duration
}

func NewPool(cfg PoolConfig) (*Pool, error) {
	if len(cfg.Targets) == 0 {
		return nil, errors.New("at least one upstream target is required")
	}
	if cfg.ProbeEvery <= 0 {
		cfg.ProbeEvery = 10 * time.Second
	}
	if cfg.HealthPath == "" {
		cfg.HealthPath = "/health"
	}

	p := &Pool{
		targets:     cfg.Targets,
		healthy:     make(map[string]bool, len(cfg.Targets)),
		inUse:       make(map[string]int, len(cfg.Targets)),
		breakers:    make(map[string]*Breaker, len(cfg.Targets)),
		strategy:    cfg.Strategy,
		healthPath:  cfg.HealthPath,
		probeEvery:  cfg.ProbeEvery,
		probeClient: &http.Client{Timeout: 5 * time.Second},
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	for _, target := range cfg.Targets {
		// Assume healthy until the first probe says otherwise
		p.healthy[target] = true
		p.breakers[target] = NewBreaker(cfg.BreakerFailures, cfg.BreakerCooldown)
	}

	return p, nil
}

// Start launches the periodic health probe. Call Stop on shutdown.
func (p *Pool) Start() {
	go func() {
		defer close(p.done)

		ticker := time.NewTicker(p.probeEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.probeAll()
			case <-p.stop:
				return
			}
		}
	}()
}

func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	<-p.done
}

func (p *Pool) probeAll() {
	for _, target := range p.targets {
		healthy := p.probe(target)

		p.mu.Lock()
		was := p.healthy[target]
		p.healthy[target] = healthy
		p.mu.Unlock()

		if was != healthy {
			log.Printf("upstream %s is now %s", target, healthState(healthy))
		}
	}
}

func (p *Pool) probe(target string) bool {
	resp, err := p.probeClient.Get(target + p.healthPath)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < http.StatusInternalServerError
}

func healthState(healthy bool) string {
	if healthy {
		return "healthy"
	}
	return "unhealthy"
}

// Pick selects a healthy target whose breaker is not open.
func (p *Pool) Pick() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	candidates := make([]string, 0, len(p.targets))
	for _, target := range p.targets {
		if p.healthy[target] && p.breakers[target].State() != BreakerOpen {
			candidates = append(candidates, target)
		}
	}

	if len(candidates) == 0 {
		return "", ErrNoHealthyTargets
	}

	if p.strategy == "least-connections" {
		selected := candidates[0]
		for _, target := range candidates[1:] {
			if p.inUse[target] < p.inUse[selected] {
				selected = target
			}
		}
		return selected, nil
	}

	target := candidates[p.next%len(candidates)]
	p.next++
	return target, nil
}

// Acquire/Release bracket a forwarded request for least-connections counting.
func (p *Pool) Acquire(target string) {
	p.mu.Lock()
	p.inUse[target]++
	p.mu.Unlock()
}

func (p *Pool) Release(target string) {
	p.mu.Lock()
	if p.inUse[target] > 0 {
		p.inUse[target]--
	}
	p.mu.Unlock()
}

func (p *Pool) Breaker(target string) *Breaker {
	return p.breakers[target]
}

// Targets returns all configured targets with their current health.
func (p *Pool) Targets() map[string]bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]bool, len(p.targets))
	for _, target := range p.targets {
		out[target] = p.healthy[target]
	}
	return out
}

// HasHealthy reports whether at least one target is currently usable.
func (p *Pool) HasHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, target := range p.targets {
		if p.healthy[target] && p.breakers[target].State() != BreakerOpen {
			return true
		}
	}
	return false
}

// MarkUnhealthy is used by tests and by the forwarder on hard failures.
func (p *Pool) MarkUnhealthy(target string) {
	p.mu.Lock()
	p.healthy[target] = false
	p.mu.Unlock()
}
