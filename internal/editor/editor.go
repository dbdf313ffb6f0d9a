// Package editor owns the state of the roll being edited: the roll data,
// the imported file metadata, the active selection, and the undo history.
// Field updates apply to every exposure in the active selection.
package editor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spoutn1k/brand/internal/gps"
	"github.com/spoutn1k/brand/internal/roll"
)

// Store keys.
const (
	keyData     = "data"
	keyMetadata = "metadata"
	keySelected = "selected"
)

// ErrNoData is returned when an operation needs a roll and none was loaded.
var ErrNoData = fmt.Errorf("no roll data loaded")

// Editor mediates every mutation of the roll being edited.
type Editor struct {
	store   Store
	logger  *slog.Logger
	history roll.History[roll.Data]
}

// New returns an Editor persisting through the given store.
func New(store Store, logger *slog.Logger) *Editor {
	return &Editor{store: store, logger: logger}
}

// Data loads the current roll state.
func (e *Editor) Data() (roll.Data, error) {
	raw, ok, err := e.store.Get(keyData)
	if err != nil {
		return roll.Data{}, err
	}
	if !ok {
		return roll.Data{}, ErrNoData
	}

	var data roll.Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return roll.Data{}, fmt.Errorf("decoding stored roll data: %w", err)
	}
	return data, nil
}

// SetData persists the roll state.
func (e *Editor) SetData(data roll.Data) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding roll data: %w", err)
	}
	return e.store.Set(keyData, string(encoded))
}

// Metadata loads the imported file metadata.
func (e *Editor) Metadata() ([]roll.FileMetadata, error) {
	raw, ok, err := e.store.Get(keyMetadata)
	if err != nil || !ok {
		return nil, err
	}

	var entries []roll.FileMetadata
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decoding stored metadata: %w", err)
	}
	return entries, nil
}

// SetMetadata persists the imported file metadata.
func (e *Editor) SetMetadata(entries []roll.FileMetadata) error {
	encoded, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	return e.store.Set(keyMetadata, string(encoded))
}

// Selection loads the active selection; a missing or unreadable selection
// is simply empty.
func (e *Editor) Selection() roll.Selection {
	raw, ok, err := e.store.Get(keySelected)
	if err != nil || !ok {
		return roll.Selection{}
	}

	var selection roll.Selection
	if err := json.Unmarshal([]byte(raw), &selection); err != nil {
		return roll.Selection{}
	}
	return selection
}

// SetSelection persists the active selection.
func (e *Editor) SetSelection(selection roll.Selection) error {
	encoded, err := json.Marshal(selection)
	if err != nil {
		return fmt.Errorf("encoding selection: %w", err)
	}
	return e.store.Set(keySelected, string(encoded))
}

// TSE renders the current roll in the TSE interchange format.
func (e *Editor) TSE() (string, error) {
	data, err := e.Data()
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if err := roll.WriteTSE(&out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}

// Clear wipes the whole editing session.
func (e *Editor) Clear() error {
	return e.store.Clear()
}

// UpdateRoll overlays the set fields of change on the roll-wide data.
func (e *Editor) UpdateRoll(change roll.RollData) error {
	data, err := e.Data()
	if err != nil {
		return err
	}

	e.history.Record(data)
	data.Roll.Update(change)
	return e.SetData(data)
}

// UpdateExposures overlays the set fields of change on every selected
// exposure. Selecting nothing makes this a no-op.
func (e *Editor) UpdateExposures(change roll.Exposure) error {
	data, err := e.Data()
	if err != nil {
		return err
	}

	targets := e.Selection().Items()
	if len(targets) == 0 {
		return nil
	}

	e.history.Record(data)

	for _, target := range targets {
		exposure, ok := data.Exposures[target]
		if !ok {
			return fmt.Errorf("selection names unknown exposure %d", target)
		}
		exposure.Update(change)
		data.Exposures[target] = exposure
	}

	return e.SetData(data)
}

// UpdateGPSText applies a "lat, lng" text field value to the selection.
func (e *Editor) UpdateGPSText(value string) error {
	coord, err := gps.ParsePair(value)
	if err != nil {
		return err
	}
	return e.UpdateExposures(roll.Exposure{GPS: &coord})
}

// UpdateCoords records a coordinate picked on the map for one exposure.
// Latitude and longitude arrive as the 8-digit strings the picker forwards.
func (e *Editor) UpdateCoords(index uint32, lat, lng string) error {
	coord, err := gps.ParsePair(lat + ", " + lng)
	if err != nil {
		return err
	}

	data, err := e.Data()
	if err != nil {
		return err
	}

	exposure, ok := data.Exposures[index]
	if !ok {
		return fmt.Errorf("no exposure %d", index)
	}

	e.history.Record(data)
	exposure.GPS = &coord
	data.Exposures[index] = exposure
	return e.SetData(data)
}

// Rotate composes a further rotation onto every selected file's orientation.
func (e *Editor) Rotate(angle roll.Orientation) error {
	entries, err := e.Metadata()
	if err != nil {
		return err
	}

	selection := e.Selection()
	for i := range entries {
		if selection.Contains(entries[i].Index) {
			entries[i].Orientation = entries[i].Orientation.Rotate(angle)
		}
	}

	return e.SetMetadata(entries)
}

// ReorderFiles moves the file holding frame old onto frame new, shifting
// the block of files in between.
func (e *Editor) ReorderFiles(old, new uint32) error {
	entries, err := e.Metadata()
	if err != nil {
		return err
	}
	return e.SetMetadata(roll.Reorder(entries, old, new))
}

// Undo restores the most recent recorded snapshot. Returns false when the
// history is exhausted.
func (e *Editor) Undo() (bool, error) {
	snapshot, ok := e.history.Pop()
	if !ok {
		return false, nil
	}
	return true, e.SetData(snapshot)
}

// Undoable reports whether Undo has a snapshot to restore.
func (e *Editor) Undoable() bool {
	return e.history.Undoable()
}

// Tasks builds the processing task list for every exposure in the roll:
// each imported file paired with its merged metadata.
func (e *Editor) Tasks() ([]roll.FileMetadata, []roll.ExposureData, error) {
	data, err := e.Data()
	if err != nil {
		return nil, nil, err
	}
	entries, err := e.Metadata()
	if err != nil {
		return nil, nil, err
	}

	merged := make([]roll.ExposureData, len(entries))
	for i, entry := range entries {
		merged[i] = data.Generate(entry.Index)
	}
	return entries, merged, nil
}
