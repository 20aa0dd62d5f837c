package logs

import (
	"bufio"
	"context"
	"os"
)

// Source supplies the lines a log tool operates over. A real agent reads
// from a file on disk; tests substitute MockSource.
type Source interface {
	Lines(ctx context.Context) ([]string, error)
}

// FileSource reads every line of a file on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Lines(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return lines, ctx.Err()
		default:
		}
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// MockSource returns a fixed set of lines, for tests.
type MockSource struct {
	Data []string
}

func (s MockSource) Lines(ctx context.Context) ([]string, error) {
	return s.Data, nil
}
