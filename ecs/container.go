package ecs

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SystemId identifies a registered system within its scheduler. Ids are stable
// for the lifetime of the registration and are never reused.
type SystemId uint64

type systemStatsInternal struct {
	executionCount int64
	skipCount      int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// container wraps one registered system together with everything the
// scheduler needs to place it: identity, ordering constraints, access
// descriptor, run conditions, its private command buffer, and the per-tick
// should-run cache. Containers are owned exclusively by the scheduler and
// leave it only through read-only introspection snapshots.
type container struct {
	id     SystemId
	name   string
	label  string
	order  int // registration order, the deterministic tie-break
	system System

	before []string
	after  []string
	conds  []RunCondition

	access     *Access
	refreshers []frameRefresher
	commands   *Commands

	// per-tick state, written only by the scheduler before execution starts
	shouldRun  bool
	skipReason string
	level      int

	stats systemStatsInternal
}

// SystemOption configures a system at registration time.
type SystemOption func(*container)

// WithName overrides the name derived from the system's type.
func WithName(name string) SystemOption {
	return func(c *container) { c.name = name }
}

// WithLabel attaches a symbolic label. Labels are the targets of Before/After
// constraints and may be shared by several systems.
func WithLabel(label string) SystemOption {
	return func(c *container) { c.label = label }
}

// Before constrains the system to complete ahead of every system carrying one
// of the given labels (or names). Unresolved targets fail the rebuild.
func Before(targets ...string) SystemOption {
	return func(c *container) { c.before = append(c.before, targets...) }
}

// After constrains the system to start only once every system carrying one of
// the given labels (or names) has completed.
func After(targets ...string) SystemOption {
	return func(c *container) { c.after = append(c.after, targets...) }
}

// RunIf attaches run conditions; all attached conditions must hold for the
// system to run in a tick.
func RunIf(conds ...RunCondition) SystemOption {
	return func(c *container) { c.conds = append(c.conds, conds...) }
}

// WithAccess merges extra partitions into the derived access descriptor, for
// systems whose storage use is not visible through their fields.
func WithAccess(access *Access) SystemOption {
	return func(c *container) { c.access.merge(access) }
}

func newContainer(id SystemId, order int, system System, storage *Storage, opts ...SystemOption) *container {
	c := &container{
		id:       id,
		order:    order,
		name:     systemName(system),
		system:   system,
		access:   NewAccess(),
		commands: newCommands(),
	}
	c.bindFields(storage)
	if declarer, ok := system.(AccessDeclarer); ok {
		c.access.merge(declarer.DeclaredAccess())
	}
	for _, opt := range opts {
		opt(c)
	}
	c.access.normalize()
	return c
}

func systemName(system System) string {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// bindFields walks the system struct, initializes Query and Singleton fields
// with the storage, and collects the access they declare. A `ecs:"read"` tag
// on the field demotes its declared writes to reads.
func (c *container) bindFields(storage *Storage) {
	v := reflect.ValueOf(c.system)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	structType := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		addr := field.Addr().Interface()

		initable, ok := addr.(interface{ Init(*Storage) })
		if !ok {
			continue
		}
		initable.Init(storage)

		if provider, ok := addr.(accessProvider); ok {
			declared := provider.declaredAccess()
			if fieldTagHasRead(structType.Field(i)) {
				declared.demoteWritesToReads()
			}
			c.access.merge(declared)
		}

		if refresher, ok := addr.(frameRefresher); ok {
			c.refreshers = append(c.refreshers, refresher)
		}
	}
}

func fieldTagHasRead(field reflect.StructField) bool {
	for _, opt := range strings.Split(field.Tag.Get("ecs"), ",") {
		if strings.TrimSpace(opt) == "read" {
			return true
		}
	}
	return false
}

// evalShouldRun evaluates all run conditions, AND-combined, and caches the
// outcome for this tick. A condition error or panic means "do not run"; it is
// logged and never propagated as a tick failure.
func (c *container) evalShouldRun(t Tick, log *zap.Logger) bool {
	c.shouldRun = false
	for _, cond := range c.conds {
		ok, err := evalCondition(cond, t)
		if err != nil {
			c.skipReason = "condition error: " + err.Error()
			c.stats.skipCount++
			log.Warn("run condition failed to evaluate",
				zap.String("system", c.name),
				zap.Uint64("tick", t.Number),
				zap.Error(err))
			return false
		}
		if !ok {
			c.skipReason = "condition not met"
			c.stats.skipCount++
			return false
		}
	}
	c.shouldRun = true
	c.skipReason = ""
	return true
}

func evalCondition(cond RunCondition, t Tick) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return cond(t)
}

// execute runs the wrapped system once. Query caches are refreshed first so
// the system observes the storage state current at its start. A panic is
// recovered and surfaced as an ExecutionError.
func (c *container) execute(t Tick) (err error) {
	if tr := t.Storage.tracker; tr != nil {
		tr.begin(c.name, c.access)
		defer tr.end(c.name)
	}

	start := time.Now()
	defer func() {
		c.recordDuration(time.Since(start))
		if r := recover(); r != nil {
			err = &ExecutionError{System: c.name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	for _, refresher := range c.refreshers {
		refresher.refresh()
	}

	c.system.Execute(newUpdateFrame(t, c.commands))
	return nil
}

func (c *container) recordDuration(duration time.Duration) {
	stats := &c.stats
	stats.executionCount++
	stats.lastDuration = duration
	stats.totalDuration += duration

	if stats.executionCount == 1 || duration < stats.minDuration {
		stats.minDuration = duration
	}
	if duration > stats.maxDuration {
		stats.maxDuration = duration
	}
}

// matchesTarget reports whether the container answers to the given
// constraint target, by label or by name.
func (c *container) matchesTarget(target string) bool {
	return (c.label != "" && c.label == target) || c.name == target
}
