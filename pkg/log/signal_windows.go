package log

import "os"

// there is no SIGUSR2 on windows; level swapping is disabled.
var defaultSwapSignal os.Signal
