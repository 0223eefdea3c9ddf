package launch

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkingCopyLeavesOriginalUntouched(t *testing.T) {
	cfg := NewConfiguration("demo", "java.application", map[string]any{
		AttrVMArguments: "-Xmx512m",
		AttrClasspath:   []string{"bin", "lib/a.jar"},
	})

	wc := cfg.WorkingCopy()
	wc.SetAttribute(AttrVMArguments, "-Xmx1g")
	wc.SetAttribute(AttrClasspath, []string{"other"})

	require.Equal(t, "-Xmx512m", cfg.Attribute(AttrVMArguments, ""))
	require.Equal(t, []string{"bin", "lib/a.jar"}, cfg.ListAttribute(AttrClasspath))
	require.Equal(t, "-Xmx1g", wc.Attribute(AttrVMArguments, ""))
	require.Equal(t, "demo", wc.Original().Name())

	snap := wc.Configuration()
	require.Equal(t, "java.application", snap.TypeID())
	require.Equal(t, []string{"other"}, snap.ListAttribute(AttrClasspath))
}

func TestConfigurationAccessorsCopy(t *testing.T) {
	cfg := NewConfiguration("demo", "t", map[string]any{AttrClasspath: []string{"a"}})
	list := cfg.ListAttribute(AttrClasspath)
	list[0] = "mutated"
	require.Equal(t, []string{"a"}, cfg.ListAttribute(AttrClasspath))

	attrs := cfg.Attributes()
	attrs["new"] = "x"
	require.False(t, cfg.HasAttribute("new"))
}

func TestNestedAttributesAreCopied(t *testing.T) {
	store, err := ParseStore([]byte(`
configurations:
  - name: app
    type: java.application
    attributes:
      environment: {A: one}
      options: [{k: v}, [x, y]]
`))
	require.NoError(t, err)
	cfg, err := store.Get("app")
	require.NoError(t, err)

	env, ok := cfg.Attributes()[AttrEnvironment].(map[string]any)
	require.True(t, ok)
	env["A"] = "mutated"

	wc := cfg.WorkingCopy()
	wc.Configuration().Attributes()[AttrEnvironment].(map[string]any)["B"] = "added"
	wcEnv := wc.Original().Attributes()[AttrEnvironment].(map[string]any)
	wcEnv["C"] = "added"

	opts := cfg.Attributes()["options"].([]any)
	opts[0].(map[string]any)["k"] = "mutated"
	opts[1].([]any)[0] = "mutated"

	set := map[string]any{"D": "four"}
	wc.SetAttribute(AttrEnvironment, set)
	set["D"] = "changed"

	require.Equal(t, map[string]any{"A": "one"}, cfg.Attributes()[AttrEnvironment])
	require.Equal(t, []any{map[string]any{"k": "v"}, []any{"x", "y"}}, cfg.Attributes()["options"])
	require.Equal(t, map[string]any{"D": "four"}, wc.Configuration().Attributes()[AttrEnvironment])
}

func TestAttributeDefaults(t *testing.T) {
	cfg := NewConfiguration("demo", "t", nil)
	require.Equal(t, "", cfg.Attribute(AttrVMArguments, ""))
	require.Equal(t, "fallback", cfg.Attribute(AttrMainType, "fallback"))
	require.Nil(t, cfg.ListAttribute(AttrClasspath))
}

func TestParseArguments(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "plain", in: "-Xmx512m -ea", want: []string{"-Xmx512m", "-ea"}},
		{name: "extra whitespace", in: "  -a \t -b  ", want: []string{"-a", "-b"}},
		{name: "quoted", in: `-Xmx512m "-javaagent:/my dir/agent.jar=destfile=/tmp/out.exec"`,
			want: []string{"-Xmx512m", "-javaagent:/my dir/agent.jar=destfile=/tmp/out.exec"}},
		{name: "empty quotes", in: `a "" b`, want: []string{"a", "", "b"}},
		{name: "joined quote", in: `-Dx="a b"`, want: []string{"-Dx=a b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ParseArguments(tc.in))
		})
	}
}

func TestConfiguredScope(t *testing.T) {
	cfg := NewConfiguration("demo", "t", map[string]any{AttrClasspath: []any{"bin", "lib"}})
	require.Equal(t, []string{"bin", "lib"}, ConfiguredScope(cfg))

	cfg = NewConfiguration("demo", "t", map[string]any{
		AttrClasspath:     []any{"bin", "lib"},
		AttrCoverageScope: []any{"bin"},
	})
	require.Equal(t, []string{"bin"}, ConfiguredScope(cfg))
}

func TestStoreRoundTrip(t *testing.T) {
	data := []byte(`
configurations:
  - name: app
    type: java.application
    attributes:
      main_type: com.example.Main
      vm_arguments: -Xmx512m
      classpath: [bin, lib/dep.jar]
  - name: other
    type: java.application
`)
	store, err := ParseStore(data)
	require.NoError(t, err)
	require.Equal(t, []string{"app", "other"}, store.Names())

	app, err := store.Get("app")
	require.NoError(t, err)
	require.Equal(t, "com.example.Main", app.Attribute(AttrMainType, ""))
	require.Equal(t, []string{"bin", "lib/dep.jar"}, app.ListAttribute(AttrClasspath))

	path := filepath.Join(t.TempDir(), "launches.yaml")
	require.NoError(t, store.Save(path))
	loaded, err := LoadStore(path)
	require.NoError(t, err)
	reloaded, err := loaded.Get("app")
	require.NoError(t, err)
	require.Equal(t, "-Xmx512m", reloaded.Attribute(AttrVMArguments, ""))

	_, err = store.Get("missing")
	require.Error(t, err)
}

func TestStoreRejectsInvalid(t *testing.T) {
	_, err := ParseStore([]byte("configurations:\n  - type: x\n"))
	require.Error(t, err)
	_, err = ParseStore([]byte("configurations:\n  - name: a\n"))
	require.Error(t, err)
	_, err = ParseStore([]byte("configurations:\n  - {name: a, type: t}\n  - {name: a, type: t}\n"))
	require.Error(t, err)
}

type stubProcess struct {
	code    int
	err     error
	killed  bool
	killErr error
}

func (p *stubProcess) PID() int           { return 1 }
func (p *stubProcess) Wait() (int, error) { return p.code, p.err }
func (p *stubProcess) Kill() error {
	p.killed = true
	return p.killErr
}

func TestLaunchWaitAndTerminate(t *testing.T) {
	l := NewLaunch(NewConfiguration("demo", "t", nil), ModeRun)
	require.Equal(t, ModeRun, l.Mode())
	l.AddProcess(nil)
	require.Empty(t, l.Processes())

	ok := &stubProcess{}
	failed := &stubProcess{code: 3, err: errors.New("exit status 3"), killErr: errors.New("gone")}
	l.AddProcess(ok)
	l.AddProcess(failed)

	code, err := l.Wait()
	require.Equal(t, 3, code)
	require.EqualError(t, err, "exit status 3")

	require.EqualError(t, l.Terminate(), "gone")
	require.True(t, ok.killed)
	require.True(t, failed.killed)
}
