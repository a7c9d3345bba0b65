package trigger_test

import "github.com/festivalpos/distribution-engine/pkg/logger"

func nopLogger() logger.Logger { return logger.NewNopLogger() }
