package metrics

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/nemanja-m/taskenv/pkg/core"
)

const scopeDelimiter = "."

var _ core.TaskMetricGroup = (*Group)(nil)

// Group is a metric group that is never registered with a reporter. Metrics
// are kept in memory so tests can inspect them.
type Group struct {
	scope []string

	mu       sync.Mutex
	counters map[string]*SimpleCounter
	gauges   map[string]core.Gauge
	groups   map[string]*Group
}

// NewUnregisteredTaskMetricGroup returns a task-level group with a placeholder scope.
func NewUnregisteredTaskMetricGroup() *Group {
	return NewGroup("localhost", "taskmanager", "job", "task")
}

func NewGroup(scope ...string) *Group {
	return &Group{
		scope:    append([]string(nil), scope...),
		counters: make(map[string]*SimpleCounter),
		gauges:   make(map[string]core.Gauge),
		groups:   make(map[string]*Group),
	}
}

// Counter returns the counter registered under name, creating it on first use.
func (g *Group) Counter(name string) core.Counter {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.counters[name]
	if !ok {
		c = &SimpleCounter{}
		g.counters[name] = c
	}
	return c
}

// Gauge registers gauge under name, replacing any previous one.
func (g *Group) Gauge(name string, gauge core.Gauge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gauges[name] = gauge
}

func (g *Group) GaugeValue(name string) (any, bool) {
	g.mu.Lock()
	gauge, ok := g.gauges[name]
	g.mu.Unlock()
	if !ok || gauge == nil {
		return nil, false
	}
	return gauge(), true
}

func (g *Group) AddGroup(name string) core.TaskMetricGroup {
	g.mu.Lock()
	defer g.mu.Unlock()
	child, ok := g.groups[name]
	if !ok {
		child = NewGroup(append(g.ScopeComponents(), name)...)
		g.groups[name] = child
	}
	return child
}

func (g *Group) ScopeComponents() []string {
	return append([]string(nil), g.scope...)
}

// MetricIdentifier joins the scope and the metric name with dots.
func (g *Group) MetricIdentifier(name string) string {
	return strings.Join(append(g.ScopeComponents(), name), scopeDelimiter)
}

type SimpleCounter struct {
	count atomic.Int64
}

func (c *SimpleCounter) Inc()          { c.count.Add(1) }
func (c *SimpleCounter) IncBy(n int64) { c.count.Add(n) }
func (c *SimpleCounter) Dec()          { c.count.Add(-1) }
func (c *SimpleCounter) DecBy(n int64) { c.count.Add(-n) }
func (c *SimpleCounter) Count() int64  { return c.count.Load() }
