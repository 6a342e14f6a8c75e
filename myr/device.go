package myr

import (
	"github.com/pkg/errors"

	"github.com/perlw/abyssal_drifter/optional"
)

type Queues struct {
	Graphics Queue
	Present  optional.Optional[Queue]
	Transfer optional.Optional[Queue]
	Compute  optional.Optional[Queue]
}

func createLogicalDevice(s *initState) error {
	info := deviceInfo(s.cfg, s.families, s.validation)

	device, err := s.physical.CreateDevice(info)
	if err != nil {
		return errors.Wrap(err, "create device")
	}
	s.device = device
	s.queues = fetchQueues(device, s.families)
	s.log.Log("device created; queues: %v, extensions: %v", s.families.Distinct(), info.Extensions)

	return nil
}

func deviceInfo(cfg RenderConfig, families QueueFamilies, validation bool) DeviceInfo {
	info := DeviceInfo{
		Features: Features{
			SampleRateShading: true,
			SamplerAnisotropy: cfg.AnisotropicFiltering,
		},
		DynamicRendering: true,
	}

	for _, family := range families.Distinct() {
		info.Queues = append(info.Queues, QueueRequest{
			Family:     family,
			Priorities: []float32{1.0},
		})
	}

	sets := [][]string{baseDeviceExtensions, cfg.DeviceExtensions}
	if families.Present.HasValue() {
		sets = append(sets, []string{swapchainExt})
	}
	if cfg.HostImageCopy {
		sets = append(sets, hostImageCopyExtensions)
	}
	info.Extensions = union(sets...)

	if validation {
		info.Layers = []string{validationLayer}
	}

	return info
}

// fetchQueues gets one queue per distinct family. Roles sharing a family
// share the queue.
func fetchQueues(device Device, families QueueFamilies) Queues {
	byFamily := map[int]Queue{}
	get := func(family int) Queue {
		q, ok := byFamily[family]
		if !ok {
			q = device.Queue(family)
			byFamily[family] = q
		}
		return q
	}
	role := func(o optional.Optional[int]) optional.Optional[Queue] {
		if family, ok := o.Get(); ok {
			return optional.Some(get(family))
		}
		return optional.None[Queue]()
	}

	return Queues{
		Graphics: get(families.Graphics),
		Present:  role(families.Present),
		Transfer: role(families.Transfer),
		Compute:  role(families.Compute),
	}
}
