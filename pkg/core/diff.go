package core

import (
	"encoding/json"
	"fmt"

	"github.com/aymanbagabas/go-udiff"

	"github.com/holps-7/striko/pkg/model"
)

// RequestDiff returns a unified diff of two versions of a saved request,
// compared as indented JSON. It is empty when they serialize identically.
func RequestDiff(before, after model.Request) string {
	name := before.DisplayName()
	original, err := json.MarshalIndent(before, "", "  ")
	if err != nil {
		return ""
	}
	modified, err := json.MarshalIndent(after, "", "  ")
	if err != nil {
		return ""
	}

	edits := udiff.Strings(string(original)+"\n", string(modified)+"\n")
	if len(edits) == 0 {
		return ""
	}
	unified, err := udiff.ToUnified("a/"+name, "b/"+name, string(original)+"\n", edits, 3)
	if err != nil {
		return fmt.Sprintf("--- a/%s\n+++ b/%s\n(diff generation failed)\n", name, name)
	}
	return unified
}
