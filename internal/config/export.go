package config

import "gopkg.in/yaml.v2"

// ExportYAML serializes a validated server list to YAML, for the CLI's
// --dump-config inspection path.
func ExportYAML(servers []*Server) (string, error) {
	out, err := yaml.Marshal(servers)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
