package myr

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func familiesOf(flags ...QueueFlags) []QueueFamilyProperties {
	out := make([]QueueFamilyProperties, len(flags))
	for t, f := range flags {
		out[t] = QueueFamilyProperties{Flags: f, Count: 1}
	}
	return out
}

func TestResolveDedicatedFamilies(t *testing.T) {
	log, _ := testLogger(t)
	f, err := resolveFamilies(familiesOf(QueueGraphics, QueueTransfer, QueueCompute), nil, testConfig(), log)
	if err != nil {
		t.Fatal(err)
	}
	if f.Graphics != 0 {
		t.Errorf("graphics %d", f.Graphics)
	}
	if i, ok := f.Transfer.Get(); !ok || i != 1 {
		t.Errorf("transfer %d, %t", i, ok)
	}
	if i, ok := f.Compute.Get(); !ok || i != 2 {
		t.Errorf("compute %d, %t", i, ok)
	}
	if f.Present.HasValue() {
		t.Error("present resolved without a surface")
	}
	if got := f.Distinct(); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("distinct %v", got)
	}

	info := deviceInfo(testConfig(), f, false)
	if len(info.Queues) != 3 {
		t.Errorf("%d queue requests, want 3", len(info.Queues))
	}
}

func TestDedicatedFamiliesExcludeOverlap(t *testing.T) {
	log, _ := testLogger(t)
	all := []QueueFlags{
		QueueGraphics,
		QueueCompute,
		QueueTransfer,
		QueueGraphics | QueueCompute,
		QueueGraphics | QueueTransfer,
		QueueCompute | QueueTransfer,
		QueueGraphics | QueueCompute | QueueTransfer,
		QueueTransfer | QueueSparseBinding,
	}

	// every ordered pair and triple of family kinds, with graphics first
	for _, a := range all {
		for _, b := range all {
			for _, c := range all {
				flags := []QueueFlags{QueueGraphics, a, b, c}
				f, err := resolveFamilies(familiesOf(flags...), nil, testConfig(), log)
				if err != nil {
					t.Fatal(err)
				}
				if i, ok := f.Transfer.Get(); ok {
					if flags[i].Has(QueueGraphics) || flags[i].Has(QueueCompute) {
						t.Errorf("%v: transfer family %d is %s", flags, i, flags[i])
					}
				}
				if i, ok := f.Compute.Get(); ok {
					if flags[i].Has(QueueGraphics) {
						t.Errorf("%v: compute family %d is %s", flags, i, flags[i])
					}
				}
			}
		}
	}
}

func TestResolveFirstMatch(t *testing.T) {
	log, _ := testLogger(t)
	flags := familiesOf(QueueTransfer, QueueCompute|QueueTransfer, QueueGraphics|QueueCompute, QueueGraphics, QueueTransfer, QueueCompute)
	f, err := resolveFamilies(flags, nil, testConfig(), log)
	if err != nil {
		t.Fatal(err)
	}
	if f.Graphics != 2 {
		t.Errorf("graphics %d, want 2", f.Graphics)
	}
	if i, _ := f.Transfer.Get(); i != 0 {
		t.Errorf("transfer %d, want 0", i)
	}
	if i, _ := f.Compute.Get(); i != 1 {
		t.Errorf("compute %d, want 1", i)
	}
}

func TestResolvePresent(t *testing.T) {
	log, _ := testLogger(t)
	calls := 0
	support := func(family int) (bool, error) {
		calls++
		return family >= 1, nil
	}
	f, err := resolveFamilies(familiesOf(QueueGraphics, QueueGraphics, QueueGraphics), support, testConfig(), log)
	if err != nil {
		t.Fatal(err)
	}
	if i, ok := f.Present.Get(); !ok || i != 1 {
		t.Errorf("present %d, %t; want 1", i, ok)
	}
	if calls != 2 {
		t.Errorf("support queried %d times, want 2", calls)
	}
	if got := f.Distinct(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("distinct %v", got)
	}
}

func TestResolveOptOuts(t *testing.T) {
	log, _ := testLogger(t)
	cfg := testConfig()
	cfg.NoTransferQueue = true
	cfg.NoComputeQueue = true
	f, err := resolveFamilies(familiesOf(QueueGraphics, QueueTransfer, QueueCompute), nil, cfg, log)
	if err != nil {
		t.Fatal(err)
	}
	if f.Transfer.HasValue() || f.Compute.HasValue() {
		t.Error("opted out roles were resolved")
	}
}

func TestResolveMissingDedicatedIsLogged(t *testing.T) {
	log, hook := testLogger(t)
	f, err := resolveFamilies(familiesOf(QueueGraphics|QueueCompute|QueueTransfer), nil, testConfig(), log)
	if err != nil {
		t.Fatal(err)
	}
	if f.Transfer.HasValue() || f.Compute.HasValue() {
		t.Error("dedicated families resolved on a single family device")
	}
	found := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "no dedicated transfer family, transfers share a queue" ||
			e.Message == "no dedicated compute family, compute shares a queue" {
			found++
		}
	}
	if found != 2 {
		t.Errorf("found %d fallback messages, want 2", found)
	}
}

func TestResolveErrors(t *testing.T) {
	log, _ := testLogger(t)

	if _, err := resolveFamilies(familiesOf(QueueCompute, QueueTransfer), nil, testConfig(), log); err != ErrNoGraphicsQueue {
		t.Errorf("got %v, want ErrNoGraphicsQueue", err)
	}

	never := func(int) (bool, error) { return false, nil }
	if _, err := resolveFamilies(familiesOf(QueueGraphics), never, testConfig(), log); err != ErrNoPresentQueue {
		t.Errorf("got %v, want ErrNoPresentQueue", err)
	}

	broken := func(int) (bool, error) { return false, ErrorSurfaceLost }
	_, err := resolveFamilies(familiesOf(QueueGraphics), broken, testConfig(), log)
	if errors.Cause(err) != ErrorSurfaceLost {
		t.Errorf("got %v, want ErrorSurfaceLost", err)
	}
}
