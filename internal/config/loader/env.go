package loader

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultEnvPrefix is the prefix of editrace environment variables.
const DefaultEnvPrefix = "EDITRACE_"

// EnvLoader reads settings from prefixed environment variables. A variable
// named PREFIX_SECTION_SETTING sets section.setting; aliases cover the
// short names that break that pattern.
type EnvLoader struct {
	prefix  string
	aliases map[string]string
	environ func() []string
}

// NewEnvLoader returns a loader for variables starting with prefix, which
// should include its trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix: prefix,
		aliases: map[string]string{
			"LOG":         "log.level",
			"STRICT_TIME": "validate.strict_time",
			"WORKERS":     "batch.workers",
		},
		environ: os.Environ,
	}
}

// Alias maps PREFIX+name to a setting path.
func (l *EnvLoader) Alias(name, path string) {
	l.aliases[name] = path
}

// Load collects every non-empty prefixed variable that names a setting.
func (l *EnvLoader) Load() (map[string]any, error) {
	out := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, _ := strings.Cut(kv, "=")
		rest, ok := strings.CutPrefix(name, l.prefix)
		if !ok || value == "" {
			continue
		}
		if path := l.pathFor(rest); path != "" {
			put(out, path, decodeEnvValue(value))
		}
	}
	return out, nil
}

// pathFor turns VALIDATE_PROGRESS_EVERY into validate.progress_every. The
// first word is the section and the remainder the setting.
func (l *EnvLoader) pathFor(name string) string {
	if path, ok := l.aliases[name]; ok {
		return path
	}
	section, setting, ok := strings.Cut(strings.ToLower(name), "_")
	if !ok || section == "" || setting == "" {
		return ""
	}
	return section + "." + setting
}

// decodeEnvValue types a raw variable. "1" and "0" stay integers; only
// words are booleans.
func decodeEnvValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return s
}

func put(m map[string]any, path string, value any) {
	section, name, _ := strings.Cut(path, ".")
	inner, ok := m[section].(map[string]any)
	if !ok {
		inner = make(map[string]any)
		m[section] = inner
	}
	inner[name] = value
}
