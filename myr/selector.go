package myr

import (
	"github.com/pkg/errors"
)

func selectPhysicalDevice(s *initState) error {
	devices, err := s.instance.PhysicalDevices()
	if err != nil {
		return errors.Wrap(err, "enumerate physical devices")
	}

	for t, d := range devices {
		p := d.Properties()
		s.log.Log("GPU %d: [%04x:%04x] %s (%s), vulkan %s", t, p.VendorID, p.DeviceID, p.Name, p.Type, p.APIVersion)
	}

	picked, err := selectDevice(devices, s.cfg.Ranker)
	if err != nil {
		return err
	}
	s.physical = devices[picked]
	s.props = s.physical.Properties()
	s.log.Log("picked: %s", s.props.Name)

	return nil
}

// selectDevice returns the index of the device with the strictly highest
// non-negative rank. Ties go to the earlier device.
func selectDevice(devices []PhysicalDevice, rank Ranker) (int, error) {
	if len(devices) == 0 {
		return -1, ErrNoPhysicalDevice
	}

	best, bestRank := -1, -1
	for t, d := range devices {
		r := rank(d.Properties())
		if r >= 0 && r > bestRank {
			best, bestRank = t, r
		}
	}
	if best < 0 {
		return -1, ErrNoEligibleDevice
	}

	return best, nil
}
