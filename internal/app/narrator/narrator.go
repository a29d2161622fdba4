// Package narrator maps narrator-style names to synthesis delivery
// instructions. The set of styles is closed; unknown names are rejected at
// the boundary instead of being passed through to the model.
package narrator

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownNarrator = errors.New("unknown narrator")

var instructions = map[string]string{
	"The Reluctant Confessor": "Speak softly and intimately, as if confessing something difficult. " +
		"Sound hesitant and self-examining, with gentle pauses and a restrained, honest tone.",
	"The Naive Observer": "Speak with innocent curiosity and understated wonder. " +
		"Sound inexperienced and nonjudgmental, noticing details without fully grasping their meaning.",
	"The Ancient Sentinel": "Speak in a formal, measured, and resonant tone. " +
		"Sound ancient and dutiful, like a timeless guardian issuing calm, authoritative statements.",
	"The Heavy-Hearted Veteran": "Speak with a weary, reflective gravity. " +
		"Sound experienced and burdened by memory, compassionate but restrained.",
}

// Resolve returns the delivery instruction for the named narrator style. An
// empty name means no styling and resolves to an empty instruction.
func Resolve(name string) (string, error) {
	if name == "" {
		return "", nil
	}

	instruction, ok := instructions[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownNarrator, name)
	}

	return instruction, nil
}

// Names lists the known narrator styles in stable order.
func Names() []string {
	names := make([]string, 0, len(instructions))
	for name := range instructions {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
