package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/ora2pg/internal/logger"
)

func TestSetup(t *testing.T) {
	c := qt.New(t)
	prev := slog.Default()
	c.Cleanup(func() {
		slog.SetDefault(prev)
		logger.SetGlobal(nil, false)
	})

	var buf bytes.Buffer
	l := logger.Setup(&buf, false)
	l.Debug("hidden")
	l.Info("shown", "unit", "HR.EMP_PKG")

	c.Assert(logger.IsDebug(), qt.IsFalse)
	c.Assert(logger.Get(), qt.Equals, l)
	c.Assert(buf.String(), qt.Not(qt.Contains), "hidden")
	c.Assert(buf.String(), qt.Contains, "unit=HR.EMP_PKG")

	buf.Reset()
	logger.Setup(&buf, true).Debug("placeholder", "construct", "multiset")
	c.Assert(logger.IsDebug(), qt.IsTrue)
	c.Assert(buf.String(), qt.Contains, "construct=multiset")
}

func TestGet_Fallback(t *testing.T) {
	c := qt.New(t)
	logger.SetGlobal(nil, false)
	c.Assert(logger.Get(), qt.IsNotNil)
}
