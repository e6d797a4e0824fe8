// Package action defines the Action variant emitted by a matched key
// sequence, and the ordered Binding map that associates sequences with
// action lists.
package action
