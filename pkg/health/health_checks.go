package health

import "runtime"

// ProgressCheck reports experiment progress. It is degraded until every
// instance is done, and stays degraded if any instance had to be skipped.
func ProgressCheck(progress func() (total, done, skipped int)) CheckFunc {
	return func() Check {
		total, done, skipped := progress()
		check := Check{
			Name: "experiment",
			Details: map[string]any{
				"instances_total":   total,
				"instances_done":    done,
				"instances_skipped": skipped,
			},
		}

		switch {
		case done < total:
			check.Status = StatusDegraded
			check.Message = "Running"
		case skipped > 0:
			check.Status = StatusDegraded
			check.Message = "Finished with skipped instances"
		default:
			check.Status = StatusHealthy
			check.Message = "Finished"
		}
		return check
	}
}

// MemoryCheck is degraded when allocated heap exceeds 90% of memory obtained
// from the OS. A nil usage reads runtime.MemStats.
func MemoryCheck(usage func() (alloc, sys uint64)) CheckFunc {
	if usage == nil {
		usage = func() (uint64, uint64) {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			return m.Alloc, m.Sys
		}
	}
	return func() Check {
		alloc, sys := usage()
		check := Check{
			Name: "memory",
			Details: map[string]any{
				"alloc_bytes": alloc,
				"sys_bytes":   sys,
			},
		}

		if sys > 0 && float64(alloc)/float64(sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}
		return check
	}
}
