package myr

import (
	"github.com/perlw/abyssal_drifter/logger"
	"github.com/perlw/abyssal_drifter/optional"
)

func installDebugReporter(s *initState) error {
	if !s.validation {
		return nil
	}

	reporter, err := s.instance.CreateDebugReporter(debugLogger(s.log))
	if err != nil {
		s.log.Warn("debug reporter unavailable, diagnostics disabled: %v", err)
		return nil
	}
	s.debug = optional.Some(reporter)
	s.log.Fine("debug reporter installed")

	return nil
}

func debugLogger(log logger.Logger) DebugCallback {
	return func(severity Severity, kind MessageType, message string) {
		switch severity {
		case SeverityError:
			log.Err(nil, "[vk %s] %s", kind, message)
		case SeverityWarning:
			log.Warn("[vk %s] %s", kind, message)
		default:
			log.Fine("[vk %s] %s", kind, message)
		}
	}
}
