package logger

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestLevels(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.TraceLevel)
	log := NewWithLogrus("myr", l)

	log.Log("picked %s", "gpu0")
	log.Warn("no %s", "validation")
	log.Err(errors.New("boom"), "create %s", "device")
	log.Fine("fine")
	log.Trace("trace")

	want := []logrus.Level{
		logrus.InfoLevel,
		logrus.WarnLevel,
		logrus.ErrorLevel,
		logrus.DebugLevel,
		logrus.TraceLevel,
	}
	entries := hook.AllEntries()
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Errorf("entry %d: level %s, want %s", i, e.Level, want[i])
		}
		if e.Data["component"] != "myr" {
			t.Errorf("entry %d: component %v", i, e.Data["component"])
		}
	}
	if entries[0].Message != "picked gpu0" {
		t.Errorf("message %q", entries[0].Message)
	}
	if err, ok := entries[2].Data[logrus.ErrorKey].(error); !ok || err.Error() != "boom" {
		t.Errorf("error field %v", entries[2].Data[logrus.ErrorKey])
	}
}

func TestWith(t *testing.T) {
	l, hook := test.NewNullLogger()
	log := NewWithLogrus("myr", l).With("context", "abc")
	log.Log("hello")

	e := hook.LastEntry()
	if e == nil || e.Data["context"] != "abc" || e.Data["component"] != "myr" {
		t.Errorf("unexpected entry %+v", e)
	}
}
