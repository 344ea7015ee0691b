package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
	"go.uber.org/multierr"
)

var ErrInvalidLayout = errors.New("invalid layout")

// Load reads a layout from a JSON file and validates it.
func Load(path string) (*SpaceLayout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON layout document.
func Parse(data []byte) (*SpaceLayout, error) {
	var l SpaceLayout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	for i := range l.InteractableAreas {
		if l.InteractableAreas[i].CurrentParticipants == nil {
			l.InteractableAreas[i].CurrentParticipants = []string{}
		}
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate reports every structural problem in the layout at once.
// The returned error wraps ErrInvalidLayout.
func (l *SpaceLayout) Validate() error {
	var errs error
	if l.Width < MinCanvasSize || l.Height < MinCanvasSize {
		errs = multierr.Append(errs, fmt.Errorf("canvas %gx%g is smaller than one avatar (%gx%g)",
			l.Width, l.Height, MinCanvasSize, MinCanvasSize))
	}

	seen := make(map[string]bool)
	for i, o := range l.Obstacles {
		if o.ID == "" {
			errs = multierr.Append(errs, fmt.Errorf("obstacle #%d: missing id", i))
		} else if seen[o.ID] {
			errs = multierr.Append(errs, fmt.Errorf("obstacle %q: duplicate id", o.ID))
		}
		seen[o.ID] = true
		if o.Width < 0 || o.Height < 0 {
			errs = multierr.Append(errs, fmt.Errorf("obstacle %q: negative size", o.ID))
		}
		switch o.Kind {
		case KindWall, KindTable, KindChair, KindDecoration:
		default:
			errs = multierr.Append(errs, fmt.Errorf("obstacle %q: unknown type %q", o.ID, o.Kind))
		}
	}

	seen = make(map[string]bool)
	for i, a := range l.InteractableAreas {
		if a.ID == "" {
			errs = multierr.Append(errs, fmt.Errorf("area #%d: missing id", i))
		} else if seen[a.ID] {
			errs = multierr.Append(errs, fmt.Errorf("area %q: duplicate id", a.ID))
		}
		seen[a.ID] = true
		if a.Width < 0 || a.Height < 0 {
			errs = multierr.Append(errs, fmt.Errorf("area %q: negative size", a.ID))
		}
		if a.MaxParticipants < 0 {
			errs = multierr.Append(errs, fmt.Errorf("area %q: negative maxParticipants", a.ID))
		}
		switch a.Kind {
		case KindMeetingRoom, KindPresentation, KindWhiteboard:
		default:
			errs = multierr.Append(errs, fmt.Errorf("area %q: unknown type %q", a.ID, a.Kind))
		}
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLayout, errs)
	}
	return nil
}

// Schema reflects the JSON schema of a layout document.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.ReflectFromType(reflect.TypeOf(SpaceLayout{}))
	schema.Title = "Space Layout"
	schema.Description = "Obstacles and interactable areas of a shared presence space"
	return schema
}
