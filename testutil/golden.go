// Package testutil provides small helpers shared across this repo's test
// suites: deterministic JSON marshaling and readable diffs for assertions
// that compare structured output.
package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalDeterministic marshals v with map keys sorted and two-space
// indentation, so two equivalent values produce byte-identical JSON
// regardless of struct field or map insertion order.
func MarshalDeterministic(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return json.MarshalIndent(generic, "", "  ")
}

// JSONEqual reports whether two JSON byte slices are structurally equal,
// ignoring key order and whitespace.
func JSONEqual(a, b []byte) bool {
	var aData, bData interface{}
	if err := json.Unmarshal(a, &aData); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bData); err != nil {
		return false
	}
	aJSON, _ := json.Marshal(aData)
	bJSON, _ := json.Marshal(bData)
	return string(aJSON) == string(bJSON)
}

// DiffJSON renders a line-by-line diff of two values' indented JSON, for use
// in test failure messages when an exact comparison doesn't hold.
func DiffJSON(expected, actual interface{}) string {
	expJSON, _ := json.MarshalIndent(expected, "", "  ")
	actJSON, _ := json.MarshalIndent(actual, "", "  ")

	expLines := strings.Split(string(expJSON), "\n")
	actLines := strings.Split(string(actJSON), "\n")

	var diff strings.Builder
	diff.WriteString("JSON Diff:\n")

	maxLines := len(expLines)
	if len(actLines) > maxLines {
		maxLines = len(actLines)
	}
	for i := 0; i < maxLines; i++ {
		var expLine, actLine string
		if i < len(expLines) {
			expLine = expLines[i]
		}
		if i < len(actLines) {
			actLine = actLines[i]
		}
		if expLine != actLine {
			fmt.Fprintf(&diff, "- %s\n", expLine)
			fmt.Fprintf(&diff, "+ %s\n", actLine)
		}
	}
	return diff.String()
}
