// Package roles edits role definitions. An [Editor] holds a draft role and
// applies every permission change through the dependency rules, so the
// draft is consistent at every step and can be saved as-is.
package roles
