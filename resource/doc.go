// Package resource bounds the resources consumed by container builds.
//
// A Controller may be shared by many builders. It enforces:
//
//   - a memory budget for storage buffers (semaphore-weighted bytes)
//   - a limit on concurrently populating workers
//   - a population throughput limit in bytes per second
//
// A nil *Controller is valid and imposes no limits.
package resource
