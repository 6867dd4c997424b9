package dxf

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	codeEntity  = 0
	codeSection = 2
	codeLayer   = 8
	codeColor   = 62

	sectionEntities = "ENTITIES"
	sectionEnd      = "ENDSEC"
)

// Container is the ordered result of a parse.
type Container struct {
	// Shapes in parse order.
	Shapes []Shape
	// Diagnostics lists every field that was dropped.
	Diagnostics []*FieldError
	// Skipped counts entities of unsupported types.
	Skipped int
}

// Len returns the number of shapes.
func (c *Container) Len() int {
	return len(c.Shapes)
}

// CountByKind returns the number of shapes per entity type.
func (c *Container) CountByKind() map[string]int {
	counts := make(map[string]int)
	for _, s := range c.Shapes {
		counts[s.Kind()]++
	}
	return counts
}

// Reader parses group-code streams into containers.
type Reader struct {
	logger *slog.Logger
}

// NewReader returns a Reader. A nil logger discards output.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reader{logger: logger}
}

// ParseFile opens path and parses it.
func (r *Reader) ParseFile(path string) (*Container, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	c, err := r.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return c, nil
}

// Parse reads the ENTITIES section of src.
//
// A stream without an ENTITIES section yields an empty container. Only read
// errors from src are returned; malformed content is skipped or reported
// through Container.Diagnostics.
func (r *Reader) Parse(src io.Reader) (*Container, error) {
	sc := NewTagScanner(src)
	c := &Container{}

	next, stop := iter.Pull(sc.All())
	defer stop()

	if !r.seekEntities(next) {
		return c, sc.Err()
	}

	var buf []Tag
	for {
		tag, ok := next()
		if !ok {
			// truncated stream: keep the entity that was being read
			r.flush(c, buf)
			break
		}
		if tag.Code != codeEntity {
			if buf != nil {
				buf = append(buf, tag)
			}
			continue
		}
		r.flush(c, buf)
		if strings.EqualFold(tag.Value, sectionEnd) {
			buf = nil
			break
		}
		buf = []Tag{tag}
	}

	r.logger.Debug("parsed entities",
		slog.Int("shapes", len(c.Shapes)),
		slog.Int("skipped", c.Skipped),
		slog.Int("diagnostics", len(c.Diagnostics)))
	return c, sc.Err()
}

func (r *Reader) seekEntities(next func() (Tag, bool)) bool {
	for {
		tag, ok := next()
		if !ok {
			return false
		}
		if tag.Code == codeSection && strings.EqualFold(tag.Value, sectionEntities) {
			return true
		}
	}
}

// flush decodes one entity buffer into c. buf[0] is the code-0 type tag.
func (r *Reader) flush(c *Container, buf []Tag) {
	if len(buf) == 0 {
		return
	}
	entityType := strings.ToUpper(buf[0].Value)
	newDecoder, ok := decoders[entityType]
	if !ok {
		c.Skipped++
		r.logger.Debug("skipping unsupported entity", slog.String("type", entityType), slog.Int("line", buf[0].Line))
		return
	}

	d := newDecoder()
	attrs := defaultAttributes()
	for _, tag := range buf[1:] {
		var err error
		switch tag.Code {
		case codeLayer:
			attrs.Layer = tag.Value
		case codeColor:
			var color int
			if color, err = strconv.Atoi(tag.Value); err == nil {
				attrs.Color = color
			}
		default:
			err = d.apply(tag.Code, tag.Value)
		}
		if err != nil {
			fe := &FieldError{EntityType: entityType, Code: tag.Code, Value: tag.Value, Line: tag.Line, Err: err}
			c.Diagnostics = append(c.Diagnostics, fe)
			r.logger.Debug("dropping field", slog.String("error", fe.Error()))
		}
	}
	c.Shapes = append(c.Shapes, d.build(attrs))
}
