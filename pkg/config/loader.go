package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LocalFileNames are searched, in order, in the working directory when no
// config file is named explicitly.
var LocalFileNames = []string{".wsdebug.yaml", ".wsdebug.yml"}

// FindLocal returns the first LocalFileNames entry present in dir, or "".
func FindLocal(dir string) string {
	for _, name := range LocalFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Error is a config file problem with location info when available.
type Error struct {
	Path    string
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", e.Path, e.Line, e.Message)
	}
	return e.Path + ": " + e.Message
}

var yamlLine = regexp.MustCompile(`line (\d+): (.*)`)

func fileError(path string, err error) *Error {
	var te *yaml.TypeError
	if errors.As(err, &te) && len(te.Errors) > 0 {
		err = errors.New(te.Errors[0])
	}
	ce := &Error{Path: path, Message: err.Error()}
	if m := yamlLine.FindStringSubmatch(ce.Message); m != nil {
		ce.Line, _ = strconv.Atoi(m[1])
		ce.Message = m[2]
	}
	return ce
}

// LoadFile reads a Config from a YAML file. Unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse decodes YAML data. path is only used in error messages.
func Parse(path string, data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fileError(path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fileError(path, err)
	}
	cfg.SetFields = make(map[string]bool)
	if len(root.Content) > 0 {
		collectKeys(root.Content[0], "", cfg.SetFields)
	}
	cfg.Sources = make(map[string]string)
	return &cfg, nil
}

// collectKeys records the dotted path of every mapping key under node.
func collectKeys(node *yaml.Node, prefix string, into map[string]bool) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := prefix + node.Content[i].Value
		into[key] = true
		collectKeys(node.Content[i+1], key+".", into)
	}
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Path names the config file. When empty, Dir is searched for LocalFileNames.
	Path string
	// Dir defaults to the working directory.
	Dir string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Load resolves defaults, the config file and the environment. Flags are
// merged afterwards by the caller with SourceFlag.
func Load(opts LoadOptions) (*Config, error) {
	cfg := NewDefault()

	path := opts.Path
	if path == "" {
		dir := opts.Dir
		if dir == "" {
			dir, _ = os.Getwd()
		}
		path = FindLocal(dir)
	}
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		Merge(cfg, fileCfg, SourceFile)
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	envCfg, err := FromEnv(getenv)
	if err != nil {
		return nil, err
	}
	Merge(cfg, envCfg, SourceEnv)

	return cfg, nil
}
