package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Load reads a document from path. Relative source paths in the document
// are resolved against the document's directory.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewConfigNotFoundError(path)
		}
		return nil, err
	}

	doc, err := decode(data)
	if err != nil {
		if ue := GetUserError(err); ue != nil {
			return nil, ue.WithContext(path)
		}
		return nil, NewYAMLParseError(path, err)
	}

	doc.baseDir = filepath.Dir(path)
	return doc, nil
}

// Parse decodes a document from YAML.
func Parse(data []byte) (*Document, error) {
	doc, err := decode(data)
	if err != nil {
		if GetUserError(err) != nil {
			return nil, err
		}
		return nil, NewYAMLParseError("<input>", err)
	}
	return doc, nil
}

func decode(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}
	return &doc, nil
}

// checkVersion accepts an empty version or any version of the supported
// major. A leading "v" is optional.
func checkVersion(version string) error {
	if version == "" {
		return nil
	}
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Major(v) != SupportedMajor {
		return NewVersionError(version)
	}
	return nil
}

// Marshal encodes the document as YAML.
func (d *Document) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}
