// Package agent describes the coverage agent that is attached to launched JVMs:
// its option string and the on-disk location of its jar.
package agent

import (
	"fmt"
	"strings"
)

// Option keys understood by the agent.
const (
	KeyDestFile        = "destfile"
	KeyIncludes        = "includes"
	KeyExcludes        = "excludes"
	KeyExclClassloader = "exclclassloader"
)

// Options is an ordered set of agent options. Options render in the order they
// were first set; empty values are omitted.
type Options struct {
	keys   []string
	values map[string]string
}

func NewOptions() *Options {
	return &Options{values: map[string]string{}}
}

func (o *Options) Set(key, value string) {
	if o.values == nil {
		o.values = map[string]string{}
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o *Options) Get(key string) string {
	return o.values[key]
}

func (o *Options) SetIncludes(v string)        { o.Set(KeyIncludes, v) }
func (o *Options) SetExcludes(v string)        { o.Set(KeyExcludes, v) }
func (o *Options) SetExclClassloader(v string) { o.Set(KeyExclClassloader, v) }
func (o *Options) SetDestFile(v string)        { o.Set(KeyDestFile, v) }

// String renders the options as key=value pairs separated by commas.
func (o *Options) String() string {
	parts := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		v := o.values[k]
		if v == "" {
			continue
		}
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

// VMArgument returns the single JVM argument that attaches the agent jar with
// these options.
func (o *Options) VMArgument(agentJar string) string {
	opts := o.String()
	if opts == "" {
		return fmt.Sprintf("-javaagent:%s", agentJar)
	}
	return fmt.Sprintf("-javaagent:%s=%s", agentJar, opts)
}
