package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Seednode/bildklick/quiz"
)

type playlistFile struct {
	Items []quiz.RoundConfig `yaml:"items"`
}

// loadPlaylist reads rounds from a YAML (or JSON) file. The file may be a
// bare list of rounds or a mapping with an items key.
func loadPlaylist(path string) ([]quiz.RoundConfig, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("playlist: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("playlist: %s is empty", path)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("playlist: %s: %w", path, err)
	}

	if len(node.Content) == 0 {
		return nil, fmt.Errorf("playlist: %s is empty", path)
	}

	root := node.Content[0]

	switch root.Kind {
	case yaml.SequenceNode:
		var items []quiz.RoundConfig
		if err := root.Decode(&items); err != nil {
			return nil, fmt.Errorf("playlist: %s: %w", path, err)
		}
		return items, nil

	case yaml.MappingNode:
		var f playlistFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("playlist: %s: %w", path, err)
		}
		return f.Items, nil
	}

	return nil, fmt.Errorf("playlist: %s: expected a list of rounds", path)
}
