package importer

import (
	"encoding/json"
	"os"
)

// progressWriter appends one JSON line per tick to progress_path, per
// spec.md §4.6 ("append one JSON line per progress tick").
type progressWriter struct {
	f *os.File
}

func newProgressWriter(path string) (*progressWriter, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &progressWriter{f: f}, nil
}

func (p *progressWriter) Write(tick progressTick) {
	line, err := json.Marshal(tick)
	if err != nil {
		return
	}
	line = append(line, '\n')
	_, _ = p.f.Write(line)
}

func (p *progressWriter) Close() error {
	return p.f.Close()
}
