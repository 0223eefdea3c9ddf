package agent

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestOptionsRenderInSetOrder(t *testing.T) {
	o := NewOptions()
	o.SetIncludes("*")
	o.SetExcludes("")
	o.SetExclClassloader("sun.reflect.DelegatingClassLoader")
	o.SetDestFile("/tmp/out.exec")

	require.Equal(t, "includes=*,exclclassloader=sun.reflect.DelegatingClassLoader,destfile=/tmp/out.exec", o.String())

	o.SetIncludes("com.example.*")
	require.Equal(t, "com.example.*", o.Get(KeyIncludes))
	require.Equal(t, "includes=com.example.*,exclclassloader=sun.reflect.DelegatingClassLoader,destfile=/tmp/out.exec", o.String())
}

func TestOptionsVMArgument(t *testing.T) {
	o := NewOptions()
	require.Equal(t, "-javaagent:/opt/agent.jar", o.VMArgument("/opt/agent.jar"))

	o.SetIncludes("*")
	o.SetDestFile("/tmp/out.exec")
	require.Equal(t, "-javaagent:/opt/agent.jar=includes=*,destfile=/tmp/out.exec", o.VMArgument("/opt/agent.jar"))
}

func TestOptionsZeroValue(t *testing.T) {
	var o Options
	o.Set("sessionid", "s1")
	o.SetDestFile("/tmp/a.exec")
	require.Equal(t, "sessionid=s1,destfile=/tmp/a.exec", o.String())
}

func TestResolverExtractsOnce(t *testing.T) {
	memFs := afero.NewMemMapFs()
	source := fstest.MapFS{
		"lib/jacocoagent.jar": &fstest.MapFile{Data: []byte("agent-bytes")},
	}
	r := &Resolver{Source: source, Name: "lib/jacocoagent.jar", Fs: memFs, Dir: "/cache/agent"}

	path, err := r.AgentFile()
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/cache/agent", "jacocoagent.jar"), path)

	data, err := afero.ReadFile(memFs, path)
	require.NoError(t, err)
	require.Equal(t, "agent-bytes", string(data))

	// An identical jar is reused without writing.
	r.Fs = afero.NewReadOnlyFs(memFs)
	again, err := r.AgentFile()
	require.NoError(t, err)
	require.Equal(t, path, again)
}

func TestResolverReextractsSameSizeUpgrade(t *testing.T) {
	memFs := afero.NewMemMapFs()
	source := fstest.MapFS{DefaultJarName: &fstest.MapFile{Data: []byte("agent-v2")}}
	r := &Resolver{Source: source, Fs: memFs, Dir: "/cache"}

	require.NoError(t, afero.WriteFile(memFs, "/cache/"+DefaultJarName, []byte("agent-v1"), 0644))
	path, err := r.AgentFile()
	require.NoError(t, err)
	data, err := afero.ReadFile(memFs, path)
	require.NoError(t, err)
	require.Equal(t, "agent-v2", string(data))
}

func TestResolverReextractsOnSizeChange(t *testing.T) {
	memFs := afero.NewMemMapFs()
	source := fstest.MapFS{DefaultJarName: &fstest.MapFile{Data: []byte("v2-agent")}}
	r := &Resolver{Source: source, Fs: memFs, Dir: "/cache"}

	require.NoError(t, afero.WriteFile(memFs, "/cache/"+DefaultJarName, []byte("v1"), 0644))
	path, err := r.AgentFile()
	require.NoError(t, err)
	data, err := afero.ReadFile(memFs, path)
	require.NoError(t, err)
	require.Equal(t, "v2-agent", string(data))
}

func TestResolverMissingJar(t *testing.T) {
	r := &Resolver{Source: fstest.MapFS{}, Name: "missing.jar", Fs: afero.NewMemMapFs(), Dir: "/cache"}
	_, err := r.AgentFile()
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing.jar")

	r = &Resolver{Fs: afero.NewMemMapFs()}
	_, err = r.AgentFile()
	require.Error(t, err)
}

func TestResolverReadOnlyDestination(t *testing.T) {
	source := fstest.MapFS{DefaultJarName: &fstest.MapFile{Data: []byte("agent")}}
	r := &Resolver{Source: source, Fs: afero.NewReadOnlyFs(afero.NewMemMapFs()), Dir: "/cache"}
	_, err := r.AgentFile()
	require.Error(t, err)
}

func TestNewResolverDefaultsJarName(t *testing.T) {
	r := NewResolver("", t.TempDir())
	require.Equal(t, DefaultJarName, r.Name)

	r = NewResolver("/opt/jacoco/lib/agent.jar", t.TempDir())
	require.Equal(t, "agent.jar", r.Name)
}
