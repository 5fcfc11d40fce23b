package logger_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/jetsetilly/sci0play/logger"
	"github.com/jetsetilly/sci0play/test"
)

type deny struct{}

func (deny) AllowLogging() bool {
	return false
}

func TestLogAndTail(t *testing.T) {
	logger.Clear()

	logger.Log(logger.Allow, "test", "first")
	logger.Logf(logger.Allow, "test", "second %d", 2)
	logger.Log(logger.Allow, "test", errors.New("third"))

	var b strings.Builder
	logger.Tail(&b, -1)
	test.ExpectEquality(t, b.String(), "test: first\ntest: second 2\ntest: third\n")

	b.Reset()
	logger.Tail(&b, 1)
	test.ExpectEquality(t, b.String(), "test: third\n")
}

func TestRepeatedEntries(t *testing.T) {
	logger.Clear()

	logger.Log(logger.Allow, "test", "tick")
	logger.Log(logger.Allow, "test", "tick")
	logger.Log(logger.Allow, "test", "tick")

	var b strings.Builder
	logger.Tail(&b, -1)
	test.ExpectEquality(t, b.String(), "test: tick (repeat x3)\n")
}

func TestPermission(t *testing.T) {
	logger.Clear()

	logger.Log(deny{}, "test", "hidden")
	logger.Log(nil, "test", "hidden")

	var b strings.Builder
	logger.Tail(&b, -1)
	test.ExpectEquality(t, b.String(), "")
}

func TestEcho(t *testing.T) {
	logger.Clear()
	logger.Log(logger.Allow, "test", "before")

	var b strings.Builder
	logger.SetEcho(&b, true)
	defer logger.SetEcho(nil, false)

	logger.Log(logger.Allow, "test", "after")
	test.ExpectEquality(t, b.String(), "test: before\ntest: after\n")
}
