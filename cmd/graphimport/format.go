package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/orneryd/graphcore/pkg/graphstore"
	"github.com/orneryd/graphcore/pkg/schema"
)

// This package reads a simple newline-delimited node/edge text format
// (spec §6's core leaves wire format entirely up to callers: "No CLI,
// wire protocol, file format, or environment variables are part of the
// core"). Two record kinds, one per line, fields separated by
// whitespace:
//
//	NODE <original_id> <label1,label2,...> [key=value ...]
//	EDGE <type> <D|U> <source_original> <target_original> [key=value ...]
//
// Blank lines and lines starting with # are ignored. Property values are
// parsed as int64, then float64, then bool ("true"/"false"), then left as
// a string, in that order —
// the same best-effort numeric sniffing the teacher's env var loader
// uses for untyped input.

// LoadStats summarizes what Load ingested, for cmd/graphimport's summary
// output.
type LoadStats struct {
	Nodes int
	Edges int
	Lines int
}

// Load reads newline-delimited node/edge records from r into b.
func Load(r io.Reader, b *graphstore.Builder) (LoadStats, error) {
	var stats LoadStats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stats.Lines++

		fields := strings.Fields(line)
		switch fields[0] {
		case "NODE":
			if err := loadNodeLine(b, fields); err != nil {
				return stats, fmt.Errorf("line %d: %w", lineNo, err)
			}
			stats.Nodes++
		case "EDGE":
			if err := loadEdgeLine(b, fields); err != nil {
				return stats, fmt.Errorf("line %d: %w", lineNo, err)
			}
			stats.Edges++
		default:
			return stats, fmt.Errorf("line %d: unknown record kind %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

func loadNodeLine(b *graphstore.Builder, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("NODE needs at least <id> <labels>, got %q", strings.Join(fields, " "))
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return fmt.Errorf("NODE id: %w", err)
	}
	labels := splitNonEmpty(fields[2], ",")
	props, err := parseProperties(fields[3:])
	if err != nil {
		return err
	}
	_, err = b.AddNodeWithProperties(id, labels, props)
	return err
}

func loadEdgeLine(b *graphstore.Builder, fields []string) error {
	if len(fields) < 5 {
		return fmt.Errorf("EDGE needs <type> <D|U> <source> <target>, got %q", strings.Join(fields, " "))
	}
	relType := fields[1]
	var direction schema.Direction
	switch fields[2] {
	case "D":
		direction = schema.Directed
	case "U":
		direction = schema.Undirected
	default:
		return fmt.Errorf("EDGE direction must be D or U, got %q", fields[2])
	}
	source, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return fmt.Errorf("EDGE source: %w", err)
	}
	target, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return fmt.Errorf("EDGE target: %w", err)
	}
	props, err := parseProperties(fields[5:])
	if err != nil {
		return err
	}
	return b.AddEdge(relType, source, target, direction, props)
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseProperties(fields []string) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("malformed property %q, want key=value", f)
		}
		props[key] = sniffValue(value)
	}
	return props, nil
}

func sniffValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if s == "true" {
		return true
	}
	if s == "false" {
		return false
	}
	return s
}
