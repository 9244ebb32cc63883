package zone

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/appetiteclub/bodbridge/internal/dispatch"
)

// Entry is one persisted zone record. The cache file is a JSON object keyed
// by location description, each value an Entry.
type Entry struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Source produces a full replacement payload for the zone cache file. The
// cache tries its sources in order and keeps the first success.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// CommandSource runs a configured helper executable and captures its stdout
// as the new cache content. Any nonzero exit is a failure.
type CommandSource struct {
	command string
}

func NewCommandSource(command string) *CommandSource {
	return &CommandSource{command: command}
}

func (s *CommandSource) Name() string {
	return "command"
}

func (s *CommandSource) Fetch(ctx context.Context) ([]byte, error) {
	out, err := exec.CommandContext(ctx, s.command).Output()
	if err != nil {
		return nil, fmt.Errorf("zone refresh helper %s failed: %w", s.command, err)
	}
	return out, nil
}

// DirectorySource pulls every zone from the labor-dispatch directory and
// serializes the snapshot keyed by zone description.
type DirectorySource struct {
	client dispatch.Client
}

func NewDirectorySource(client dispatch.Client) *DirectorySource {
	return &DirectorySource{client: client}
}

func (s *DirectorySource) Name() string {
	return "directory"
}

func (s *DirectorySource) Fetch(ctx context.Context) ([]byte, error) {
	zones, err := s.client.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot list zones: %w", err)
	}
	snapshot := make(map[string]Entry, len(zones))
	for _, z := range zones {
		snapshot[z.Description] = Entry{ID: z.ID, Description: z.Description}
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("cannot serialize zone snapshot: %w", err)
	}
	return raw, nil
}
