package launch

import "fmt"

// Mode names the way a configuration is launched.
type Mode string

const (
	ModeRun      Mode = "run"
	ModeDebug    Mode = "debug"
	ModeProfile  Mode = "profile"
	ModeCoverage Mode = "coverage"
)

// Attribute keys understood by the bundled delegates.
const (
	AttrVMArguments      = "vm_arguments"
	AttrProgramArguments = "program_arguments"
	AttrMainType         = "main_type"
	AttrClasspath        = "classpath"
	AttrWorkingDirectory = "working_directory"
	AttrJavaCommand      = "java_command"
	AttrEnvironment      = "environment"
	AttrCoverageScope    = "coverage_scope"
)

// Configuration is an immutable launch configuration. Accessors return copies,
// so a Configuration handed to a delegate cannot be changed through it.
type Configuration struct {
	name       string
	typeID     string
	attributes map[string]any
}

// NewConfiguration builds a configuration of the given launch type.
func NewConfiguration(name, typeID string, attributes map[string]any) Configuration {
	return Configuration{
		name:       name,
		typeID:     typeID,
		attributes: copyAttributes(attributes),
	}
}

func (c Configuration) Name() string { return c.name }

// TypeID returns the launch type identifier the configuration belongs to.
func (c Configuration) TypeID() string { return c.typeID }

// Attribute returns a string attribute or def when it is absent.
func (c Configuration) Attribute(key, def string) string {
	return stringAttribute(c.attributes, key, def)
}

// ListAttribute returns a list attribute. A plain string value is returned as a
// single element list.
func (c Configuration) ListAttribute(key string) []string {
	return listAttribute(c.attributes, key)
}

// HasAttribute reports whether key is set.
func (c Configuration) HasAttribute(key string) bool {
	_, ok := c.attributes[key]
	return ok
}

// Attributes returns a copy of all attributes.
func (c Configuration) Attributes() map[string]any {
	return copyAttributes(c.attributes)
}

// WorkingCopy returns a mutable copy. Changes to the copy never reach c.
func (c Configuration) WorkingCopy() *WorkingCopy {
	return &WorkingCopy{
		original:   c,
		attributes: copyAttributes(c.attributes),
	}
}

// WorkingCopy is a mutable copy of a Configuration, owned by a single launch.
type WorkingCopy struct {
	original   Configuration
	attributes map[string]any
}

// Original returns the configuration the copy was taken from.
func (w *WorkingCopy) Original() Configuration { return w.original }

func (w *WorkingCopy) Name() string { return w.original.name }

func (w *WorkingCopy) Attribute(key, def string) string {
	return stringAttribute(w.attributes, key, def)
}

func (w *WorkingCopy) ListAttribute(key string) []string {
	return listAttribute(w.attributes, key)
}

func (w *WorkingCopy) SetAttribute(key string, value any) {
	w.attributes[key] = copyValue(value)
}

// Configuration snapshots the copy as an immutable configuration.
func (w *WorkingCopy) Configuration() Configuration {
	return NewConfiguration(w.original.name, w.original.typeID, w.attributes)
}

func stringAttribute(attrs map[string]any, key, def string) string {
	v, ok := attrs[key]
	if !ok || v == nil {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func listAttribute(attrs map[string]any, key string) []string {
	v, ok := attrs[key]
	if !ok || v == nil {
		return nil
	}
	switch l := v.(type) {
	case []string:
		return append([]string(nil), l...)
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if l == "" {
			return nil
		}
		return []string{l}
	default:
		return []string{fmt.Sprint(v)}
	}
}

func copyAttributes(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

// copyValue deep-copies the slice and map shapes attributes take, including
// those decoded from YAML.
func copyValue(v any) any {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	case map[string]string:
		m := make(map[string]string, len(t))
		for k, mv := range t {
			m[k] = mv
		}
		return m
	case map[string]any:
		return copyAttributes(t)
	default:
		return v
	}
}
