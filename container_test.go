package crate

import (
	"errors"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type apiConfig struct {
	APIURL string
	Retry  *retryConfig
}

type retryConfig struct {
	Attempts int
}

type testLogger struct {
	url string
}

func (l *testLogger) Log() string {
	return l.url
}

type testService struct {
	dep string
}

func TestMake_Empty(t *testing.T) {
	c := NewFactory().Make(nil)

	assert.NotNil(t, c)
	assert.Empty(t, c.Services())
	assert.NotEmpty(t, c.ID())
}

func TestGet_PlainValue(t *testing.T) {
	cfg := map[string]any{"apiUrl": "x"}
	c := NewFactory().Make(Definitions{
		"config": cfg,
		"name":   Value("crate"),
	})

	for i := 0; i < 3; i++ {
		got, err := c.Get("config")
		require.NoError(t, err)
		assert.Equal(t, cfg, got)

		name, err := c.Get("name")
		require.NoError(t, err)
		assert.Equal(t, "crate", name)
	}
}

func TestGet_PlainFunctionValue(t *testing.T) {
	handler := func(a, b int) int { return a + b }
	c := NewFactory().Make(Definitions{
		"handler": Value(handler),
	})

	got, err := c.Get("handler")
	require.NoError(t, err)
	assert.Equal(t, reflect.ValueOf(handler).Pointer(), reflect.ValueOf(got).Pointer())
}

func TestGet_NotFound(t *testing.T) {
	c := NewFactory().Make(Definitions{"a": 1})

	_, err := c.Get("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServiceNotFoundSentinel)
	assert.Contains(t, err.Error(), "missing service does not exist")
}

func TestGet_ZeroValuesArePresent(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"zero":  0,
		"empty": "",
		"off":   false,
		"none":  Value(nil),
	})

	for _, name := range []string{"zero", "empty", "off", "none"} {
		_, err := c.Get(name)
		assert.NoError(t, err, name)
	}

	v, err := c.Get("zero")
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestGet_FactoryWithNamedParameter(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"config": map[string]any{"apiUrl": "x"},
		"logger": func(config map[string]any) *testLogger {
			return &testLogger{url: config["apiUrl"].(string)}
		},
	})

	logger, err := Get[*testLogger](c, "logger")
	require.NoError(t, err)
	assert.Equal(t, "x", logger.Log())
}

func TestGet_FactoryWithMissingParameter(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"greeting": func(name string, punctuation string) string {
			return "hello " + name + punctuation
		},
		"name": "world",
	})

	got, err := c.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
}

func TestGet_Memoized(t *testing.T) {
	calls := 0
	c := NewFactory().Make(Definitions{
		"service": func() *testService {
			calls++

			return &testService{dep: "once"}
		},
	})

	first, err := c.Get("service")
	require.NoError(t, err)
	second, err := c.Get("service")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestGet_Lazy(t *testing.T) {
	calls := 0
	c := NewFactory().Make(Definitions{
		"service": func() string {
			calls++

			return "value"
		},
	})

	assert.Equal(t, 0, calls)
	assert.Empty(t, c.Resolved())

	_, err := c.Get("service")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestGet_TransitiveResolution(t *testing.T) {
	var order []string
	c := NewFactory().Make(Definitions{
		"a": func(b string) string {
			order = append(order, "a")

			return "a" + b
		},
		"b": func(c string) string {
			order = append(order, "b")

			return "b" + c
		},
		"c": func() string {
			order = append(order, "c")

			return "c"
		},
	})

	got, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
	assert.Equal(t, []string{"c", "b", "a"}, order)
}

func TestGet_FactoryReceivesContainer(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"config": &apiConfig{APIURL: "https://api"},
		"zero": func() string {
			return "no params"
		},
		"typed": func(r Resolver) (string, error) {
			cfg, err := Get[*apiConfig](r, "config")
			if err != nil {
				return "", err
			}

			return cfg.APIURL, nil
		},
		"named": func(container any) bool {
			r, ok := container.(Resolver)

			return ok && r.Has("config")
		},
		"spread": func(args ...any) int {
			return len(args)
		},
	})

	zero, err := c.Get("zero")
	require.NoError(t, err)
	assert.Equal(t, "no params", zero)

	typed, err := c.Get("typed")
	require.NoError(t, err)
	assert.Equal(t, "https://api", typed)

	named, err := c.Get("named")
	require.NoError(t, err)
	assert.Equal(t, true, named)

	spread, err := c.Get("spread")
	require.NoError(t, err)
	assert.Equal(t, 1, spread)
}

func TestGet_KeptResolverUsedByAnotherService(t *testing.T) {
	type registry struct {
		resolver Resolver
	}

	c := NewFactory().Make(Definitions{
		"config": &apiConfig{APIURL: "https://api"},
		"registry": func(r Resolver) *registry {
			return &registry{resolver: r}
		},
		"client": func(registry *registry) (string, error) {
			cfg, err := Get[*apiConfig](registry.resolver, "config")
			if err != nil {
				return "", err
			}

			return cfg.APIURL, nil
		},
	})

	done := make(chan any, 1)
	go func() {
		got, err := c.Get("client")
		assert.NoError(t, err)
		done <- got
	}()

	select {
	case got := <-done:
		assert.Equal(t, "https://api", got)
	case <-time.After(2 * time.Second):
		t.Fatal("Get(client) did not return")
	}
}

func TestGet_RecoveredFactoryPanic(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"boom": func() string { panic("factory failed") },
		"ok":   "value",
	})

	assert.PanicsWithValue(t, "factory failed", func() {
		_, _ = c.Get("boom")
	})

	done := make(chan any, 1)
	go func() {
		got, err := c.Get("ok")
		assert.NoError(t, err)
		done <- got
	}()

	select {
	case got := <-done:
		assert.Equal(t, "value", got)
	case <-time.After(2 * time.Second):
		t.Fatal("Get(ok) did not return after a recovered panic")
	}

	assert.NotContains(t, c.Resolved(), "boom")
	assert.False(t, c.Inspect("boom").Resolved)
}

func TestGet_ConcurrentLookupsBuildOnce(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})

	c := NewFactory().Make(Definitions{
		"slow": func() *testService {
			calls.Add(1)
			<-release

			return &testService{dep: "slow"}
		},
	})

	const lookups = 8

	var wg sync.WaitGroup
	results := make([]any, lookups)

	for i := 0; i < lookups; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			got, err := c.Get("slow")
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, got := range results {
		assert.Same(t, results[0], got)
	}
}

func TestGet_ConstructorNotInjectable(t *testing.T) {
	newService := func(dep string) *testService { return &testService{dep: dep} }

	c := NewFactory().Make(Definitions{
		"Service": Constructor(newService),
		"Class":   Class[testService](),
		"Type":    reflect.TypeOf(testService{}),
	})

	got, err := c.Get("Service")
	require.NoError(t, err)
	assert.Equal(t, reflect.ValueOf(newService).Pointer(), reflect.ValueOf(got).Pointer())

	class, err := c.Get("Class")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(testService{}), class)

	typ, err := c.Get("Type")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(testService{}), typ)
	assert.Equal(t, "constructor", c.Inspect("Type").Kind)
}

func TestGet_InjectableDefault(t *testing.T) {
	var received []string
	newService := func(dep string) *testService {
		received = append(received, dep)

		return &testService{dep: dep}
	}

	c := NewFactory().Make(Definitions{
		"Service": Constructor(newService,
			InjectParam("dep", "a.b", "fallback"),
			InjectNewInstance(),
		),
	})

	svc, err := Get[*testService](c, "service")
	require.NoError(t, err)
	assert.Equal(t, "fallback", svc.dep)

	direct, err := Get[*testService](c, "Service")
	require.NoError(t, err)
	assert.Equal(t, "fallback", direct.dep)

	assert.Equal(t, []string{"fallback", "fallback"}, received)
}

func TestGet_InjectableDeepPath(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"config": &apiConfig{APIURL: "https://api", Retry: &retryConfig{Attempts: 3}},
		"settings": map[string]any{
			"client": map[string]any{"timeout": 30},
		},
		"client": Func(func(url string, attempts int, timeout int64, missing string) []any {
			return []any{url, attempts, timeout, missing}
		},
			InjectParam("url", "config.apiUrl", "http://localhost"),
			InjectParam("attempts", "config.retry.attempts", 1),
			InjectParam("timeout", "settings.client.timeout", 10),
			InjectParam("missing", "settings.server.host", "localhost"),
		),
	})

	got, err := c.Get("client")
	require.NoError(t, err)
	assert.Equal(t, []any{"https://api", 3, int64(30), "localhost"}, got)
}

func TestGet_InjectableFalsyIntermediate(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"config": &apiConfig{APIURL: "https://api"},
		"client": Func(func(attempts int) int {
			return attempts
		}, InjectParam("attempts", "config.retry.attempts", 5)),
	})

	got, err := c.Get("client")
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestGet_InjectableUsesArgumentNameAsPath(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"config": "value",
		"client": Func(func(config string, other string) string {
			return config + "|" + other
		}, Injectable()),
	})

	got, err := c.Get("client")
	require.NoError(t, err)
	assert.Equal(t, "value|", got)
}

func TestGet_InjectableClass(t *testing.T) {
	type widget struct {
		URL     string `inject:"url"`
		Logger  *testLogger
		Ignored string `inject:"-"`
	}

	logger := &testLogger{url: "l"}
	c := NewFactory().Make(Definitions{
		"config": &apiConfig{APIURL: "https://api"},
		"Logger": logger,
		"Widget": Class[widget](
			InjectParam("url", "config.APIURL", ""),
			InjectNewInstance(),
		),
	})

	w, err := Get[*widget](c, "widget")
	require.NoError(t, err)
	assert.Equal(t, "https://api", w.URL)
	assert.Same(t, logger, w.Logger)
	assert.Empty(t, w.Ignored)
}

func TestGet_Companion(t *testing.T) {
	calls := 0
	newService := func() *testService {
		calls++

		return &testService{}
	}

	c := NewFactory().Make(Definitions{
		"HTTPService": Constructor(newService, InjectNewInstance()),
	})

	assert.True(t, c.Has("hTTPService"))

	ctor, err := c.Get("HTTPService")
	require.NoError(t, err)
	assert.Equal(t, reflect.ValueOf(newService).Pointer(), reflect.ValueOf(ctor).Pointer())
	assert.Equal(t, 0, calls)

	first, err := c.Get("hTTPService")
	require.NoError(t, err)
	second, err := c.Get("hTTPService")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "HTTPService", c.Inspect("hTTPService").CompanionOf)
}

func TestGet_CompanionPerContainer(t *testing.T) {
	defs := Definitions{
		"Service": Constructor(func() *testService { return &testService{} }, InjectNewInstance()),
	}
	f := NewFactory()

	a, err := f.Make(defs).Get("service")
	require.NoError(t, err)
	b, err := f.Make(defs).Get("service")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
}

func TestGet_CompanionInjectAs(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"deps": map[string]any{"name": "named"},
		"Service": Constructor(func(dep string) *testService {
			return &testService{dep: dep}
		},
			InjectParam("dep", "deps.name", ""),
			InjectAs("mainService"),
			InjectNewInstance(),
		),
	})

	assert.False(t, c.Has("service"))

	svc, err := Get[*testService](c, "mainService")
	require.NoError(t, err)
	assert.Equal(t, "named", svc.dep)
}

func TestMake_CompanionCollision(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	c := NewFactory(WithLogger(zap.New(core))).Make(Definitions{
		"Service": Constructor(func() *testService { return &testService{} }, InjectNewInstance()),
		"service": "explicit",
	})

	got, err := c.Get("service")
	require.NoError(t, err)
	assert.Equal(t, "explicit", got)
	assert.Equal(t, 1, logs.FilterMessage("companion name already registered").Len())
}

func TestGet_FactoryError(t *testing.T) {
	cause := errors.New("boom")
	c := NewFactory().Make(Definitions{
		"broken": func() (*testService, error) {
			return nil, cause
		},
		"dependent": func(broken *testService) string {
			return "unreachable"
		},
	})

	_, err := c.Get("broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServiceErrorSentinel)
	assert.ErrorIs(t, err, cause)

	_, err = c.Get("dependent")
	assert.ErrorIs(t, err, cause)

	assert.NotContains(t, c.Resolved(), "broken")
}

func TestGet_ErrorOnlyResult(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"check": func() error { return nil },
	})

	got, err := c.Get("check")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGet_TypeMismatch(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"port": "not a number",
		"server": func(port int) int {
			return port
		},
	})

	_, err := c.Get("server")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatchSentinel)
}

func TestGet_NumericConversion(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"port": 8080,
		"server": func(port int64) int64 {
			return port
		},
	})

	got, err := c.Get("server")
	require.NoError(t, err)
	assert.Equal(t, int64(8080), got)
}

func TestGet_InvalidDefinition(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"notAFunc": Func("string"),
		"badArgs": Func(func(a, b string) string {
			return a + b
		}, Args("a")),
	})

	_, err := c.Get("notAFunc")
	assert.ErrorIs(t, err, ErrInvalidDefinitionSentinel)

	_, err = c.Get("badArgs")
	assert.ErrorIs(t, err, ErrInvalidDefinitionSentinel)
}

func TestGet_ExplicitArgs(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"host": "localhost",
		"port": 80,
		"addr": Func(func(a string, b int) string {
			return a + ":" + strconv.Itoa(b)
		}, Args("host", "port")),
	})

	got, err := c.Get("addr")
	require.NoError(t, err)
	assert.Equal(t, "localhost:80", got)
}

func TestGet_CircularDependency(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"a": func(b string) string { return b },
		"b": func(c string) string { return c },
		"c": func(a string) string { return a },
	})

	_, err := c.Get("a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
	assert.Contains(t, err.Error(), "a -> b -> c -> a")

	assert.ErrorIs(t, c.Validate(), ErrCircularDependencySentinel)
}

func TestGet_CircularThroughResolver(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"self": func(r Resolver) (any, error) {
			return r.Get("self")
		},
	})

	_, err := c.Get("self")
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
	assert.NoError(t, c.Validate())
}

func TestGet_CircularInjected(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"a": Func(func(x string) string { return x }, InjectParam("x", "b.value", "")),
		"b": Func(func(y map[string]any) map[string]any { return y }, InjectParam("y", "a", nil)),
	})

	_, err := c.Get("b")
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
}

func TestExport(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"config": map[string]any{"apiUrl": "x"},
		"logger": func(config map[string]any) *testLogger {
			return &testLogger{url: config["apiUrl"].(string)}
		},
		"Service": Constructor(func() *testService { return &testService{} }, InjectNewInstance()),
	})

	_, err := c.Get("config")
	require.NoError(t, err)

	exported, err := c.Export()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"config", "logger", "Service", "service"}, keys(exported))

	for _, name := range c.Services() {
		got, err := c.Get(name)
		require.NoError(t, err)

		if reflect.TypeOf(got).Kind() == reflect.Func {
			assert.Equal(t, reflect.ValueOf(got).Pointer(), reflect.ValueOf(exported[name]).Pointer())

			continue
		}
		assert.Equal(t, got, exported[name])
	}
}

func TestExport_AggregatesErrors(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"ok":   "fine",
		"bad1": func() (string, error) { return "", errors.New("first") },
		"bad2": func() (string, error) { return "", errors.New("second") },
	})

	exported, err := c.Export()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
	assert.Equal(t, map[string]any{"ok": "fine"}, exported)
}

func TestResolved_DoesNotResolve(t *testing.T) {
	calls := 0
	c := NewFactory().Make(Definitions{
		"a": "value",
		"b": func() string {
			calls++

			return "b"
		},
	})

	_, err := c.Get("a")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"a": "value"}, c.Resolved())
	assert.Equal(t, 0, calls)
}

func TestServices_Sorted(t *testing.T) {
	c := NewFactory().Make(Definitions{"b": 1, "a": 2, "C": 3})

	assert.Equal(t, []string{"C", "a", "b"}, c.Services())
	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("z"))
}

func TestInspect(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"config": map[string]any{},
		"logger": func(config map[string]any) *testLogger { return &testLogger{} },
	})

	info := c.Inspect("logger")
	assert.Equal(t, "logger", info.Name)
	assert.Equal(t, "factory", info.Kind)
	assert.Equal(t, "unknown", info.Type)
	assert.False(t, info.Resolved)
	assert.Equal(t, []string{"config"}, info.Dependencies)
	assert.Equal(t, []string{"logger"}, c.Inspect("config").Dependents)

	_, err := c.Get("logger")
	require.NoError(t, err)

	info = c.Inspect("logger")
	assert.True(t, info.Resolved)
	assert.Equal(t, "*crate.testLogger", info.Type)

	missing := c.Inspect("missing")
	assert.Equal(t, ServiceInfo{Name: "missing"}, missing)
}

func TestResolutionOrder(t *testing.T) {
	c := NewFactory().Make(Definitions{
		"app":    func(logger *testLogger) string { return logger.Log() },
		"config": map[string]any{},
		"logger": func(config map[string]any) *testLogger { return &testLogger{} },
	})

	order, err := c.ResolutionOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"config", "logger", "app"}, order)
}

func TestFactory_LogsResolution(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	c := NewFactory(WithLogger(zap.New(core))).Make(Definitions{"a": 1})
	_, err := c.Get("a")
	require.NoError(t, err)

	entries := logs.FilterMessage("service resolved").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ContextMap()["service"])
	assert.Equal(t, c.ID(), entries[0].ContextMap()["container"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	return out
}
