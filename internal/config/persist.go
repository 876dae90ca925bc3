// internal/config/persist.go
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps the report identity inside the config file itself.
// It is the only write path into the config file.
type FileStore struct {
	path string

	mu        sync.Mutex
	messageID string
}

// NewFileStore seeds the store with the identity read at startup.
func NewFileStore(path, messageID string) *FileStore {
	return &FileStore{path: path, messageID: messageID}
}

// MessageID returns the current report identity ("" when absent).
func (s *FileStore) MessageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messageID
}

// SaveMessageID records a newly created report identity.
// The in-memory value is updated even if the file write fails,
// so the running process never posts a second report.
// The write is local and short, so it runs even when the caller's
// context has already expired.
func (s *FileStore) SaveMessageID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messageID = id
	return writeMessageID(s.path, id)
}

// writeMessageID rewrites discord.status_message_id in place.
// Comments, key order and unrelated keys are preserved.
func writeMessageID(path, id string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	root, err := documentRoot(&doc)
	if err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}

	discord := mappingValue(root, "discord")
	if discord == nil {
		discord = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		root.Content = append(root.Content, stringNode("discord", 0), discord)
	}
	if discord.Kind != yaml.MappingNode {
		return fmt.Errorf("config: %s: discord is not a mapping", path)
	}

	// Snowflakes are quoted so they stay strings.
	setScalar(discord, "status_message_id", stringNode(id, yaml.DoubleQuotedStyle))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}

	return writeAtomic(path, buf.Bytes(), info.Mode().Perm())
}

func documentRoot(doc *yaml.Node) (*yaml.Node, error) {
	// Empty file: start a fresh mapping.
	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}
	if doc.Kind != yaml.DocumentNode {
		return nil, errors.New("not a yaml document")
	}
	if len(doc.Content) == 0 {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top level is not a mapping")
	}
	return root, nil
}

// mappingValue returns the value node for key, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setScalar(m *yaml.Node, key string, val *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			old := m.Content[i+1]
			val.LineComment = old.LineComment
			val.HeadComment = old.HeadComment
			val.FootComment = old.FootComment
			m.Content[i+1] = val
			return
		}
	}
	m.Content = append(m.Content, stringNode(key, 0), val)
}

func stringNode(v string, style yaml.Style) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Style: style}
}

// writeAtomic replaces path via a temp file in the same directory.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("config: create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("config: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("config: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("config: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("config: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("config: replace %s: %w", path, err)
	}
	return nil
}
