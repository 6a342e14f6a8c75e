package myr

import (
	"testing"

	"github.com/pkg/errors"
)

func TestResultOf(t *testing.T) {
	err := errors.Wrap(errors.Wrap(ErrorDeviceLost, "inner"), "outer")
	if r := ResultOf(err); r != ErrorDeviceLost {
		t.Errorf("got %s", r)
	}
	if r := ResultOf(errors.New("plain")); r != Success {
		t.Errorf("got %s", r)
	}
	if r := ResultOf(nil); r != Success {
		t.Errorf("got %s", r)
	}
}

func TestResultString(t *testing.T) {
	if s := ErrorSurfaceLost.String(); s != "VK_ERROR_SURFACE_LOST_KHR" {
		t.Errorf("got %s", s)
	}
	if s := Result(-42).String(); s != "VkResult(-42)" {
		t.Errorf("got %s", s)
	}
}

func TestStageErrorPassesThrough(t *testing.T) {
	inner := &Error{Stage: StageAllocator, Result: ErrorInitializationFailed, Err: errors.New("x")}
	if e := stageError(StageLogicalDevice, errors.Wrap(inner, "wrapped")); e != inner {
		t.Errorf("got %v", e)
	}

	e := stageError(StageDevice, ErrNoEligibleDevice)
	if e.Result != Success || !errors.Is(e, ErrNoEligibleDevice) {
		t.Errorf("got %+v", e)
	}
	if e.Error() != "device stage: no eligible physical device" {
		t.Errorf("message %q", e.Error())
	}
}

func TestVersion(t *testing.T) {
	v := Version{1, 3, 261}
	if got := DecodeVersion(v.Encode()); got != v {
		t.Errorf("got %v", got)
	}
	if v.String() != "1.3.261" {
		t.Errorf("got %s", v)
	}
	if (Version{1, 0, 0}).Encode() != 1<<22 {
		t.Error("bad encoding")
	}
}
