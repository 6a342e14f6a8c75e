package myr

import (
	"github.com/pkg/errors"

	"github.com/perlw/abyssal_drifter/logger"
	"github.com/perlw/abyssal_drifter/optional"
)

// QueueFamilies holds the family index picked for each queue role.
type QueueFamilies struct {
	Graphics int
	Present  optional.Optional[int]
	Transfer optional.Optional[int]
	Compute  optional.Optional[int]
}

// Distinct lists each family once, in role order.
func (f QueueFamilies) Distinct() []int {
	out := []int{f.Graphics}
	for _, o := range []optional.Optional[int]{f.Present, f.Transfer, f.Compute} {
		if i, ok := o.Get(); ok && !inIntSlice(out, i) {
			out = append(out, i)
		}
	}
	return out
}

func resolveQueues(s *initState) error {
	var presentSupport func(int) (bool, error)
	if surface, ok := s.surface.Get(); ok {
		presentSupport = func(family int) (bool, error) {
			return s.physical.SurfaceSupport(family, surface)
		}
	}

	families, err := resolveFamilies(s.physical.QueueFamilies(), presentSupport, s.cfg, s.log)
	if err != nil {
		return err
	}
	s.families = families

	return nil
}

// resolveFamilies walks the families once in index order, giving each role
// the first family that fits. presentSupport is nil when there is no surface.
func resolveFamilies(families []QueueFamilyProperties, presentSupport func(int) (bool, error), cfg RenderConfig, log logger.Logger) (QueueFamilies, error) {
	log.Log("queue families: %d", len(families))

	var graphics, present, transfer, compute optional.Optional[int]
	for i, family := range families {
		log.Trace("family %d: %s x%d", i, family.Flags, family.Count)

		if !graphics.HasValue() && family.Flags.Has(QueueGraphics) {
			graphics = optional.Some(i)
			log.Log("family %d => graphics", i)
		}
		if presentSupport != nil && !present.HasValue() {
			ok, err := presentSupport(i)
			if err != nil {
				return QueueFamilies{}, errors.Wrapf(err, "present support of family %d", i)
			}
			if ok {
				present = optional.Some(i)
				log.Log("family %d => present", i)
			}
		}
		if !cfg.NoTransferQueue && !transfer.HasValue() &&
			family.Flags.Has(QueueTransfer) && !family.Flags.Has(QueueGraphics) && !family.Flags.Has(QueueCompute) {
			transfer = optional.Some(i)
			log.Log("family %d => dedicated transfer", i)
		}
		if !cfg.NoComputeQueue && !compute.HasValue() &&
			family.Flags.Has(QueueCompute) && !family.Flags.Has(QueueGraphics) {
			compute = optional.Some(i)
			log.Log("family %d => dedicated compute", i)
		}
	}

	g, ok := graphics.Get()
	if !ok {
		return QueueFamilies{}, ErrNoGraphicsQueue
	}
	if presentSupport != nil && !present.HasValue() {
		return QueueFamilies{}, ErrNoPresentQueue
	}
	if !cfg.NoTransferQueue && !transfer.HasValue() {
		log.Log("no dedicated transfer family, transfers share a queue")
	}
	if !cfg.NoComputeQueue && !compute.HasValue() {
		log.Log("no dedicated compute family, compute shares a queue")
	}

	return QueueFamilies{
		Graphics: g,
		Present:  present,
		Transfer: transfer,
		Compute:  compute,
	}, nil
}

func inIntSlice(slice []int, val int) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}
