package main

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestNewRootCommand(t *testing.T) {
	c := qt.New(t)

	root := newRootCommand()
	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	c.Assert(names, qt.DeepEquals, []string{"catalog", "migrate", "transpile", "verify"})
	c.Assert(root.PersistentFlags().Lookup("debug"), qt.IsNotNil)
}
