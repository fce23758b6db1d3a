// Package movie defines the record type served by reel and the strict
// decoding rules applied to every movie that enters the system, whether it
// arrives in a request body or in a seed file.
package movie

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// ErrMalformed is returned by Decode when the input does not describe a
// complete movie.
var ErrMalformed = errors.New("malformed movie")

// fieldNames lists the wire names of every Movie field. All are required.
var fieldNames = []string{"id", "name", "year", "was_good"}

// Movie is the single entity type held by the store.
// The ID doubles as the store key and is always supplied by the caller.
type Movie struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Year    uint16 `json:"year" yaml:"year"`
	WasGood bool   `json:"was_good" yaml:"was_good"`
}

// wireMovie mirrors Movie with pointer fields so that absent and null
// fields can be told apart from zero values.
type wireMovie struct {
	ID      *string `json:"id" yaml:"id"`
	Name    *string `json:"name" yaml:"name"`
	Year    *uint16 `json:"year" yaml:"year"`
	WasGood *bool   `json:"was_good" yaml:"was_good"`
}

func (w wireMovie) movie() (Movie, error) {
	switch {
	case w.ID == nil:
		return Movie{}, missingField("id")
	case w.Name == nil:
		return Movie{}, missingField("name")
	case w.Year == nil:
		return Movie{}, missingField("year")
	case w.WasGood == nil:
		return Movie{}, missingField("was_good")
	}
	return Movie{
		ID:      *w.ID,
		Name:    *w.Name,
		Year:    *w.Year,
		WasGood: *w.WasGood,
	}, nil
}

func missingField(name string) error {
	return fmt.Errorf("missing field %q", name)
}

// UnmarshalJSON decodes a movie object, rejecting unknown fields and
// requiring every known one. A JSON null for a field counts as missing.
// Keys must match the field names exactly and may appear only once.
func (m *Movie) UnmarshalJSON(data []byte) error {
	if err := checkKeys(data); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w wireMovie
	if err := dec.Decode(&w); err != nil {
		return err
	}
	decoded, err := w.movie()
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// checkKeys walks the top-level keys of a JSON object. Struct decoding
// matches keys case-insensitively and keeps the last duplicate, so both
// are rejected here first. Input that is not an object is left for the
// struct decode to report.
func checkKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	seen := make(map[string]bool, len(fieldNames))
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in movie object", tok)
		}
		if !slices.Contains(fieldNames, key) {
			return fmt.Errorf("unknown field %q", key)
		}
		if seen[key] {
			return fmt.Errorf("duplicate field %q", key)
		}
		seen[key] = true

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalYAML applies the same rules as UnmarshalJSON to a YAML mapping.
func (m *Movie) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: movie must be a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i]
		if !slices.Contains(fieldNames, key.Value) {
			return fmt.Errorf("line %d: unknown field %q", key.Line, key.Value)
		}
	}

	var w wireMovie
	if err := value.Decode(&w); err != nil {
		return err
	}
	decoded, err := w.movie()
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = decoded
	return nil
}

// Decode reads exactly one movie object from r. Anything that is not a
// single complete movie, including trailing data after the object, is
// reported as ErrMalformed. Reader errors are wrapped alongside it so the
// caller can still inspect them with errors.As.
func Decode(r io.Reader) (Movie, error) {
	dec := json.NewDecoder(r)

	var m Movie
	if err := dec.Decode(&m); err != nil {
		return Movie{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Movie{}, fmt.Errorf("%w: unexpected data after movie object", ErrMalformed)
	}
	return m, nil
}
