package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yanqian/ecoplot/internal/domain/plant"
	apperrors "github.com/yanqian/ecoplot/pkg/errors"
)

const (
	fieldSeparator = ";"
	fieldCount     = 5
	maxLineBytes   = 1 << 20
)

// Parse reads the semicolon-delimited reference dataset. The first line is a
// header. Lines with the wrong field count or an unknown service tag are
// skipped; an unparsable score or reliability fails the whole parse.
func Parse(r io.Reader) (*Catalog, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	b := newBuilder()
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		if err := b.addLine(lineNo, strings.TrimRight(scanner.Text(), "\r")); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return b.build(), nil
}

// builder accumulates rows per species in first-seen order.
type builder struct {
	order   []string
	records map[string]*plant.Record
}

func newBuilder() *builder {
	return &builder{records: make(map[string]*plant.Record)}
}

func (b *builder) addLine(lineNo int, line string) error {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) != fieldCount {
		return nil
	}
	kind, ok := plant.ParseServiceKind(fields[0])
	if !ok {
		return nil
	}
	name := fields[1]
	score, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return malformed(lineNo, "score", fields[2], err)
	}
	reliability, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return malformed(lineNo, "reliability", fields[3], err)
	}

	rec, exists := b.records[name]
	if !exists {
		fresh := plant.NewRecord(name)
		rec = &fresh
		b.records[name] = rec
		b.order = append(b.order, name)
	}
	idx := kind.Index()
	rec.Services[idx] = score
	rec.Reliabilities[idx] = reliability
	rec.Conditions[idx] = fields[4]
	return nil
}

func (b *builder) build() *Catalog {
	records := make([]plant.Record, 0, len(b.order))
	for _, name := range b.order {
		records = append(records, *b.records[name])
	}
	return newCatalog(records)
}

func malformed(lineNo int, field, raw string, err error) error {
	return apperrors.Wrap(
		apperrors.CodeMalformedNumericField,
		fmt.Sprintf("line %d: %s %q is not a number", lineNo, field, raw),
		err,
	)
}
