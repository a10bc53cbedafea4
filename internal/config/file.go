package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// KV is one key/value pair inside a section.
type KV struct {
	Key   string
	Value string
}

// Section is a named group of key/value pairs from the config file.
type Section struct {
	Name string
	Keys []KV
}

// File is a section-oriented view of the config file, used by the CONFIG
// mode renderer. It is built from the TOML parser when possible and from a
// line scanner when the parser rejects the file, so a syntax error in one
// table never blanks the whole view.
type File struct {
	Sections []Section
	// Raw is true when the fallback scanner produced the view.
	Raw bool
}

// OpenFile reads path and returns its section view. A missing file returns
// an empty view and no error; callers render the "no configuration" state.
func OpenFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return &File{}, err
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		f := scanRaw(string(data))
		f.Raw = true
		return f, nil
	}
	return fromTree(tree), nil
}

// Get returns the value for section/key, or "" when absent.
func (f *File) Get(section, key string) string {
	for _, s := range f.Sections {
		if s.Name != section {
			continue
		}
		for _, kv := range s.Keys {
			if kv.Key == key {
				return kv.Value
			}
		}
	}
	return ""
}

// SectionNames enumerates the sections in display order.
func (f *File) SectionNames() []string {
	names := make([]string, len(f.Sections))
	for i, s := range f.Sections {
		names[i] = s.Name
	}
	return names
}

// SectionByName returns the named section.
func (f *File) SectionByName(name string) (Section, bool) {
	for _, s := range f.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// fromTree flattens the parsed TOML tree into sorted sections. Top-level
// scalars land in an unnamed "" section; nested tables flatten with dotted
// names so the view stays a two-level list.
func fromTree(tree map[string]any) *File {
	sections := map[string][]KV{}

	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			switch val := v.(type) {
			case map[string]any:
				name := k
				if prefix != "" {
					name = prefix + "." + k
				}
				walk(name, val)
			case []map[string]any:
				name := k
				if prefix != "" {
					name = prefix + "." + k
				}
				for i, item := range val {
					walk(fmt.Sprintf("%s.%d", name, i), item)
				}
			default:
				sections[prefix] = append(sections[prefix], KV{Key: k, Value: formatValue(v)})
			}
		}
	}
	walk("", tree)

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	f := &File{}
	for _, name := range names {
		kvs := sections[name]
		sort.Slice(kvs, func(i, j int) bool { return kvs[i].Key < kvs[j].Key })
		f.Sections = append(f.Sections, Section{Name: name, Keys: kvs})
	}
	return f
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// scanRaw is the pattern-matching fallback: `[section]` headers and
// `key = value` lines, comments and blanks skipped. It tolerates the exact
// kind of half-broken file the TOML parser rejects.
func scanRaw(content string) *File {
	f := &File{}
	current := Section{Name: ""}
	flush := func() {
		if current.Name != "" || len(current.Keys) > 0 {
			f.Sections = append(f.Sections, current)
		}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flush()
			name := strings.Trim(line, "[]")
			current = Section{Name: name}
			continue
		}
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		value = strings.Trim(value, `"`)
		current.Keys = append(current.Keys, KV{Key: key, Value: value})
	}
	flush()
	return f
}
