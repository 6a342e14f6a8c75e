package myr

import (
	"github.com/pkg/errors"

	"github.com/perlw/abyssal_drifter/gpumem"
)

func createAllocator(s *initState) error {
	allocator, err := gpumem.New(s.device, s.physical.MemoryProperties(), gpumem.WithLogger(s.log))
	if err != nil {
		e := stageError(StageAllocator, errors.Wrap(err, "create allocator"))
		if e.Result == Success {
			e.Result = ErrorInitializationFailed
		}
		return e
	}
	s.allocator = allocator

	return nil
}
