package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const latestConfigVersion = 1

// migration is a named config migration step.
type migration struct {
	version int
	name    string
	run     func(root *yaml.Node) (bool, error)
}

var migrations = []migration{
	{version: 1, name: "rename_legacy_keys", run: renameLegacyKeys},
}

// legacyKeys maps keys used by older configs onto their current names in
// config.yml.
var legacyKeys = map[string]string{
	"hat_only_players":                        "stick_only_players",
	"number_of_multi_port_controllers_to_use": "ports_to_use",
	"path_common_name_max_length":             "name_max_length",
}

// migrateConfig runs all pending migrations on dir/config.yml, preserving
// comments and formatting, and keeps a .bak of the original.
func migrateConfig(dir string) error {
	path := filepath.Join(dir, configFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("teamjoy: no config.yml, nothing to migrate")
			return nil
		}
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config.yml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return fmt.Errorf("config.yml is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("config.yml root is not a mapping")
	}

	current := configVersion(root)
	if current >= latestConfigVersion {
		fmt.Println("teamjoy: config already up to date")
		return nil
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		fmt.Printf("teamjoy: running migration %d (%s)\n", m.version, m.name)
		changed, err := m.run(root)
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if !changed {
			fmt.Println("  nothing to change")
		}
	}

	setConfigVersion(root, latestConfigVersion)

	if err := os.WriteFile(path+".bak", data, 0644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal config.yml: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("write config.yml: %w", err)
	}

	fmt.Println("teamjoy: migration complete")
	return nil
}

// configVersion reads config_version from a mapping node, 0 if absent.
func configVersion(root *yaml.Node) int {
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == "config_version" {
			var v int
			if err := root.Content[i+1].Decode(&v); err == nil {
				return v
			}
		}
	}
	return 0
}

// setConfigVersion updates or prepends config_version in a mapping node.
func setConfigVersion(root *yaml.Node, version int) {
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == "config_version" {
			root.Content[i+1].Value = fmt.Sprintf("%d", version)
			root.Content[i+1].Tag = "!!int"
			return
		}
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: "config_version", Tag: "!!str"}
	valNode := &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprintf("%d", version), Tag: "!!int"}
	root.Content = append([]*yaml.Node{keyNode, valNode}, root.Content...)
}

// renameLegacyKeys renames legacy top-level keys in place. A legacy key
// whose new name is already present is dropped in favour of the new one.
func renameLegacyKeys(root *yaml.Node) (bool, error) {
	present := make(map[string]bool)
	for i := 0; i < len(root.Content)-1; i += 2 {
		present[root.Content[i].Value] = true
	}

	changed := false
	filtered := make([]*yaml.Node, 0, len(root.Content))
	for i := 0; i < len(root.Content)-1; i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if to, ok := legacyKeys[key.Value]; ok {
			changed = true
			if present[to] {
				fmt.Printf("  dropped %s (%s already set)\n", key.Value, to)
				continue
			}
			fmt.Printf("  renamed %s -> %s\n", key.Value, to)
			key.Value = to
		}
		filtered = append(filtered, key, val)
	}
	root.Content = filtered
	return changed, nil
}
