package domain

import (
	"fmt"
	"strings"
)

// TargetInstance identifies one specific enemy among same-named
// spawns. Number is 1-based and restarts per resolution scope.
type TargetInstance struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
	ID     string `json:"id"`
}

// DisplayName renders "Name #N" for repeat instances and the bare
// name for the first.
func (t TargetInstance) DisplayName() string {
	if t.Number > 1 {
		return fmt.Sprintf("%s #%d", t.Name, t.Number)
	}
	return t.Name
}

// FoldName normalizes a target name for case-insensitive grouping.
func FoldName(name string) string {
	return strings.ToLower(name)
}
