// Package decompose parses orchestrator task lists into validated task records.
package decompose

import (
	"strings"

	"github.com/ShayCichocki/dispatch/pkg/models"
)

// Markers recognized by the line scanner. Recognition is by line prefix, not
// a full tag grammar: values must fit on the marker's own line.
const (
	taskOpen  = "<task>"
	taskClose = "</task>"
	typeOpen  = "<type>"
	typeClose = "</type>"
	descOpen  = "<description>"
	descClose = "</description>"
)

// scanState tracks whether the scanner is inside a task block.
type scanState int

const (
	stateIdle scanState = iota
	stateInBlock
)

// ParseTasks converts the text of a <tasks> section into task records, in
// encounter order. The scanner is line-oriented and deliberately lenient:
// unterminated blocks and blocks without a description are dropped, sub-element
// lines outside a block are ignored, and a block without a type gets the
// default kind. It never fails; worst case it returns no records.
//
// Multi-line type or description values are not supported: only the marker's
// own line is read, so the remainder of a longer value is silently lost.
func ParseTasks(text string) []models.TaskRecord {
	var records []models.TaskRecord

	state := stateIdle
	var kind, description string
	var hasDescription bool

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, taskOpen):
			// A new block discards any unterminated one.
			state = stateInBlock
			kind = ""
			description = ""
			hasDescription = false

		case strings.HasPrefix(line, taskClose):
			if state == stateInBlock && hasDescription {
				if kind == "" {
					kind = models.DefaultKind
				}
				records = append(records, models.TaskRecord{
					Kind:        kind,
					Description: description,
				})
			}
			state = stateIdle

		case strings.HasPrefix(line, typeOpen):
			if state == stateInBlock {
				kind = stripMarkers(line, typeOpen, typeClose)
			}

		case strings.HasPrefix(line, descOpen):
			if state == stateInBlock {
				description = stripMarkers(line, descOpen, descClose)
				hasDescription = true
			}
		}
	}

	return records
}

// stripMarkers removes the open and close tokens around a single-line value.
func stripMarkers(line, open, closing string) string {
	value := strings.TrimPrefix(line, open)
	value = strings.TrimSuffix(value, closing)
	return strings.TrimSpace(value)
}
