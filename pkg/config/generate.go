package config

import (
	"strings"

	"github.com/arthur-debert/syssetup/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

// Marshal renders cfg as TOML
func Marshal(cfg *Config) ([]byte, error) {
	out, err := toml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to marshal configuration")
	}
	return out, nil
}

// GenerateTemplate returns the defaults file with every value commented
// out, ready to be saved as a user config file.
func GenerateTemplate() string {
	return commentOutConfigValues(DefaultsContent())
}

// commentOutConfigValues comments out every assignment line, keeping
// blank lines, comments and section headers
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
		case strings.HasPrefix(trimmed, "#"):
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		default:
			line = "# " + line
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}
