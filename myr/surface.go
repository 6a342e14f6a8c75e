package myr

import (
	"github.com/pkg/errors"

	"github.com/perlw/abyssal_drifter/optional"
)

func createSurface(s *initState) error {
	if s.window == nil {
		s.log.Fine("headless, no surface")
		return nil
	}

	surface, err := s.window.CreateSurface(s.instance)
	if err != nil {
		return errors.Wrap(err, "create window surface")
	}
	s.surface = optional.Some(surface)

	return nil
}
