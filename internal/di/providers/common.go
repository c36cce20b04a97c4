package providers

import "time"

// shutdownTimeout bounds how long a handle waits for graceful shutdown
// before giving up.
const shutdownTimeout = 15 * time.Second
