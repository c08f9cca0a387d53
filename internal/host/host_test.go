package host

import (
	"strings"
	"testing"

	"github.com/bytecodealliance/wasm-tools-go/wit"
	"github.com/coreos/go-semver/semver"
	"github.com/google/go-cmp/cmp"
)

func testResolve(t *testing.T) (*wit.Resolve, *wit.World) {
	t.Helper()

	pkg := &wit.Package{Name: wit.Ident{Namespace: "docs", Package: "greeter"}}

	loggerIface := &wit.Interface{Name: strPtr("logger"), Package: pkg}
	loggerIface.Functions.Set("log", &wit.Function{
		Name:   "log",
		Kind:   &wit.Freestanding{},
		Params: []wit.Param{{Name: "msg", Type: wit.String{}}},
	})

	w := &wit.World{Name: "greeter", Package: pkg}
	w.Imports.Set("docs:greeter/logger", &wit.InterfaceRef{Interface: loggerIface})
	w.Exports.Set("greet", &wit.Function{
		Name:    "greet",
		Kind:    &wit.Freestanding{},
		Params:  []wit.Param{{Name: "name", Type: wit.String{}}},
		Results: []wit.Param{{Type: wit.String{}}},
	})

	res := &wit.Resolve{
		Packages:   []*wit.Package{pkg},
		Interfaces: []*wit.Interface{loggerIface},
		Worlds:     []*wit.World{w},
	}
	return res, w
}

func strPtr(s string) *string { return &s }

func TestGenerateProducesFactoryAndInstance(t *testing.T) {
	res, _ := testResolve(t)

	pkg, err := Generate(res, []byte("\x00asm"), Options{
		PackagePath: "example.com/host/greeter",
		GeneratedBy: "host_test",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	names := pkg.SortedFileNames()
	if diff := cmp.Diff([]string{"greeter.gen.go"}, names); diff != "" {
		t.Errorf("unexpected file set (-want +got):\n%s", diff)
	}

	src := string(pkg.Files["greeter.gen.go"].Content)
	for _, want := range []string{
		"type GreeterFactory struct",
		"func NewGreeterFactory(ctx context.Context, logger IGreeterLogger) (*GreeterFactory, error)",
		"type IGreeterLogger interface",
		"func (i *GreeterInstance) Greet(ctx context.Context, arg0 string) string",
		"runtime.NewHostModuleBuilder(\"docs:greeter/logger\")",
		"func writeString(",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q:\n%s", want, src)
		}
	}
}

func TestGenerateUnknownWorld(t *testing.T) {
	res, _ := testResolve(t)
	if _, err := Generate(res, nil, Options{World: "nope"}); err == nil {
		t.Fatal("expected error for unknown world")
	}
}

func TestDisambiguateVersionsSuffixesOlder(t *testing.T) {
	v1 := &semver.Version{Major: 1}
	v2 := &semver.Version{Major: 2}
	groups := []importGroup{
		{ifaceType: "ILogger", paramName: "logger", version: v1},
		{ifaceType: "ILogger", paramName: "logger", version: v2},
	}
	got := disambiguateVersions(groups)
	if got[1].ifaceType != "ILogger" || got[1].paramName != "logger" {
		t.Errorf("newer version should keep plain name, got %+v", got[1])
	}
	if got[0].ifaceType != "ILoggerV1" || got[0].paramName != "loggerV1" {
		t.Errorf("older version should be suffixed, got %+v", got[0])
	}
}
