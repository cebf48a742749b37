// Package batch reads batch files of process arrivals and feeds them to the
// admission controller in arrival order.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

// ErrMalformedRecord is returned when a batch file entry cannot be parsed.
var ErrMalformedRecord = errors.New("batch: malformed record")

// A Record describes one job of a batch file.
type Record struct {
	PPID     uint32 `yaml:"ppid"`
	OwnerID  uint32 `yaml:"owner"`
	Start    uint64 `yaml:"start"`
	Duration uint64 `yaml:"duration"`
	Size     uint64 `yaml:"size"`
	Type     string `yaml:"type"`
}

// PCB turns the record into a valid template PCB.
func (r Record) PCB() (*process.PCB, error) {
	t, err := process.ParseType(r.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	if err := r.checkRange(); err != nil {
		return nil, err
	}

	return &process.PCB{
		PPID:     process.PID(r.PPID),
		OwnerID:  r.OwnerID,
		Start:    sim.VTime(r.Start),
		Duration: sim.VTime(r.Duration),
		Size:     r.Size,
		Type:     t,
		Valid:    true,
	}, nil
}

// checkRange rejects values the run recording cannot store. Times and sizes
// are kept in signed 64-bit database columns.
func (r Record) checkRange() error {
	fields := []struct {
		name  string
		value uint64
	}{
		{"start", r.Start},
		{"duration", r.Duration},
		{"size", r.Size},
	}

	for _, f := range fields {
		if f.value > math.MaxInt64 {
			return fmt.Errorf("%w: %s %d is out of range",
				ErrMalformedRecord, f.name, f.value)
		}
	}

	if r.Start > math.MaxInt64-r.Duration {
		return fmt.Errorf("%w: start %d plus duration %d is out of range",
			ErrMalformedRecord, r.Start, r.Duration)
	}

	return nil
}

type yamlBatch struct {
	Processes []Record `yaml:"processes"`
}

// Load reads a batch file. Files ending in .yaml or .yml are read as YAML,
// everything else as CSV.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	default:
		return LoadCSV(f)
	}
}

// LoadYAML reads a document with a top-level "processes" list.
func LoadYAML(r io.Reader) ([]Record, error) {
	b := yamlBatch{}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	err := dec.Decode(&b)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	for i, rec := range b.Processes {
		if _, err := rec.PCB(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	return b.Processes, nil
}

var csvColumns = []string{"start", "duration", "size", "type", "ppid", "owner"}

// LoadCSV reads a CSV file whose header names the columns. The columns
// start, duration and size are required; type, ppid and owner are optional.
// Lines starting with # are comments.
func LoadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedRecord, err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	records := []Record{}

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}

		line, _ := reader.FieldPos(0)

		rec, err := parseCSVRecord(fields, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		records = append(records, rec)
	}

	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)

	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))

		known := false
		for _, c := range csvColumns {
			if c == name {
				known = true
			}
		}

		if !known {
			return nil, fmt.Errorf("%w: unknown column %q",
				ErrMalformedRecord, name)
		}

		index[name] = i
	}

	for _, required := range csvColumns[:3] {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q",
				ErrMalformedRecord, required)
		}
	}

	return index, nil
}

func parseCSVRecord(fields []string, index map[string]int) (Record, error) {
	rec := Record{}

	field := func(name string) (string, bool) {
		i, ok := index[name]
		if !ok || i >= len(fields) {
			return "", false
		}

		return strings.TrimSpace(fields[i]), true
	}

	uintField := func(name string, bits int) (uint64, error) {
		s, ok := field(name)
		if !ok || s == "" {
			return 0, nil
		}

		v, err := strconv.ParseUint(s, 10, bits)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, name, err)
		}

		return v, nil
	}

	var err error

	if _, ok := field("start"); !ok {
		return rec, fmt.Errorf("%w: too few fields", ErrMalformedRecord)
	}

	if rec.Start, err = uintField("start", 63); err != nil {
		return rec, err
	}

	if rec.Duration, err = uintField("duration", 63); err != nil {
		return rec, err
	}

	if rec.Size, err = uintField("size", 63); err != nil {
		return rec, err
	}

	ppid, err := uintField("ppid", 32)
	if err != nil {
		return rec, err
	}
	rec.PPID = uint32(ppid)

	owner, err := uintField("owner", 32)
	if err != nil {
		return rec, err
	}
	rec.OwnerID = uint32(owner)

	rec.Type, _ = field("type")
	if _, err := rec.PCB(); err != nil {
		return rec, err
	}

	return rec, nil
}
