package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

var (
	ErrNotDocument       = errors.New("input is not a document")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Document formats understood by [DecodeDocument].
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
	FormatTOML    = "toml"
)

// FormatOf guesses the document format from a file name. "-" is JSON.
func FormatOf(path string) (string, error) {
	if path == "-" {
		return FormatJSON, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".msgpack", ".mp":
		return FormatMsgpack, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// LoadDocument reads the document at path, or stdin for "-". An empty input
// or a literal null yields a nil document.
func LoadDocument(path string) (diffmap.Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	doc, err := DecodeDocument(r, format)
	if err != nil {
		return nil, fmt.Errorf("cannot load %s: %w", path, err)
	}
	return doc, nil
}

// DecodeDocument decodes a single document in the given format.
func DecodeDocument(r io.Reader, format string) (diffmap.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var v any
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &v)
	case FormatYAML:
		err = yaml.Unmarshal(data, &v)
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.UseLooseInterfaceDecoding(true)
		err = dec.Decode(&v)
	case FormatTOML:
		// a TOML file is always a table
		var table map[string]any
		err = toml.Unmarshal(data, &table)
		v = table
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	switch doc := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return doc, nil
	}
	return nil, fmt.Errorf("%w: got %s", ErrNotDocument, diffmap.KindOf(v))
}
