package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"medifinder-ingestor/core/utils"
	"medifinder-ingestor/feature/inventory/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
)

// maxLineBytes bounds a single decoded line. Longer lines are counted as errors.
const maxLineBytes = 4 << 20

var errMalformedLine = errors.New("malformed line")

// Result is the outcome of parsing one extract.
type Result struct {
	// Records are the successfully built records in file order.
	Records []models.Record
	// Produced is len(Records).
	Produced int
	// Errors counts lines rejected as malformed or unreadable.
	Errors int
	// HeaderSkipped reports whether the first line was a header.
	HeaderSkipped bool
	// Encoding names the encoding used to decode the file.
	Encoding string
}

// Parser reads pipe-delimited inventory extracts.
type Parser struct {
	cfg          Config
	delimiter    rune
	encoding     encoding.Encoding
	encodingName string
	maxLine      int
	logger       *zap.Logger
}

// New validates the configuration and returns a Parser.
func New(cfg Config, logger *zap.Logger) (*Parser, error) {
	if cfg.Delimiter == "" {
		cfg.Delimiter = "|"
	}
	if utf8.RuneCountInString(cfg.Delimiter) != 1 {
		return nil, fmt.Errorf("delimiter must be a single character, got %q", cfg.Delimiter)
	}
	delim, _ := utf8.DecodeRuneInString(cfg.Delimiter)
	if delim == '"' || delim == '\r' || delim == '\n' || delim == utf8.RuneError {
		return nil, fmt.Errorf("invalid delimiter %q", cfg.Delimiter)
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "utf-8"
	}
	enc, err := lookupEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 1000
	}

	return &Parser{
		cfg:          cfg,
		delimiter:    delim,
		encoding:     enc,
		encodingName: strings.ToLower(cfg.Encoding),
		maxLine:      maxLineBytes,
		logger:       logger,
	}, nil
}

// Parse reads the whole file and returns its valid records.
// Line-level problems are logged and counted; only an unreadable file is an error.
func (p *Parser) Parse(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open extract %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(4)
	res := &Result{Encoding: detectEncoding(head, p.encodingName)}
	p.logger.Info("Parsing extract", zap.String("path", path), zap.String("encoding", res.Encoding))

	lines := newLineReader(decodingReader(br, p.encoding), p.maxLine)

	lineNum := 0
	for {
		raw, tooLong, err := lines.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read extract %s at line %d: %w", path, lineNum+1, err)
		}
		lineNum++

		if tooLong {
			res.Errors++
			p.logger.Warn("Rejected line", zap.Int("line", lineNum),
				zap.Error(fmt.Errorf("%w: longer than %d bytes", errMalformedLine, p.maxLine)))
			continue
		}
		line := strings.TrimSpace(raw)

		if lineNum == 1 && strings.HasPrefix(line, models.ColExecutingUnit) {
			res.HeaderSkipped = true
			p.logger.Info("Skipping header line")
			continue
		}
		if line == "" || strings.HasPrefix(line, "\ufeff") || strings.HasPrefix(line, "\u00ff\u00fe") {
			continue
		}

		rec, err := p.parseLine(line, lineNum)
		if err != nil {
			res.Errors++
			if errors.Is(err, errMalformedLine) {
				p.logger.Warn("Rejected line", zap.Int("line", lineNum), zap.Error(err))
			} else {
				p.logger.Error("Error parsing line", zap.Int("line", lineNum), zap.Error(err))
				p.logger.Debug("Line content", zap.Int("line", lineNum), zap.String("content", line))
			}
			continue
		}

		res.Records = append(res.Records, rec)
		res.Produced++
		if res.Produced%p.cfg.ProgressInterval == 0 {
			p.logger.Info("Parsed records", zap.Int("count", res.Produced))
		}
	}

	p.logger.Info("File parsing complete",
		zap.Int("records", res.Produced),
		zap.Int("errors", res.Errors),
		zap.Bool("header_skipped", res.HeaderSkipped),
	)
	return res, nil
}

func (p *Parser) parseLine(line string, lineNum int) (models.Record, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = p.delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	values, err := r.Read()
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to split fields: %w", err)
	}

	if len(values) < len(models.Columns) {
		return models.Record{}, fmt.Errorf("%w: not enough fields (%d/%d)", errMalformedLine, len(values), len(models.Columns))
	}
	for _, idx := range models.RequiredPositions {
		if strings.TrimSpace(values[idx]) == "" {
			return models.Record{}, fmt.Errorf("%w: missing required field %q", errMalformedLine, models.Columns[idx])
		}
	}

	return p.buildRecord(values[:len(models.Columns)], lineNum), nil
}

// buildRecord assigns each trimmed value to the Record field tagged with its column.
// Numeric and date coercion failures leave the field absent.
func (p *Parser) buildRecord(values []string, lineNum int) models.Record {
	rec := models.Record{Line: lineNum}
	rv := reflect.ValueOf(&rec).Elem()

	for i, col := range models.Columns {
		idx, ok := recordFields()[col]
		if !ok {
			continue
		}
		raw := strings.TrimSpace(values[i])
		field := rv.Field(idx)

		switch field.Interface().(type) {
		case string:
			field.SetString(raw)
		case decimal.NullDecimal:
			d, err := utils.ParseDecimal(raw)
			if err != nil {
				p.logger.Warn("Invalid numeric value, setting to absent",
					zap.Int("line", lineNum), zap.String("field", col), zap.String("value", raw))
			}
			field.Set(reflect.ValueOf(d))
		case *time.Time:
			t, err := utils.ParseDate(raw)
			if err != nil {
				p.logger.Warn("Invalid date format, setting to absent",
					zap.Int("line", lineNum), zap.String("field", col), zap.String("value", raw))
			}
			field.Set(reflect.ValueOf(t))
		}
	}
	return rec
}

var (
	fieldsOnce  sync.Once
	fieldsByCol map[string]int
)

// recordFields maps column names to Record field indexes via the col tag.
func recordFields() map[string]int {
	fieldsOnce.Do(func() {
		fieldsByCol = make(map[string]int)
		t := reflect.TypeOf(models.Record{})
		for i := 0; i < t.NumField(); i++ {
			col := t.Field(i).Tag.Get("col")
			if col == "" || col == "-" {
				continue
			}
			fieldsByCol[col] = i
		}
	})
	return fieldsByCol
}
