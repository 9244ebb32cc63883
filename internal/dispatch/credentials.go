package dispatch

import (
	"fmt"
	"os"
	"strings"
)

// Credentials identify the bridge against the labor-dispatch API: the site
// slug plus the basic-auth pair for that site.
type Credentials struct {
	Site     string
	Username string
	Password string
}

// LoadCredentials reads a credentials file with the site on the first
// non-empty line, the username on the second and the password on the third.
// Blank lines are skipped and line endings are normalized so files written
// on Windows load the same way.
func LoadCredentials(path string) (*Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read credentials file %s: %w", path, err)
	}

	var fields []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields = append(fields, line)
	}
	if len(fields) < 3 {
		return nil, fmt.Errorf("credentials file %s is incomplete: want site, username and password lines", path)
	}

	return &Credentials{
		Site:     fields[0],
		Username: fields[1],
		Password: fields[2],
	}, nil
}
