package kernel

import "runtime"

func numCPU() int {
	return runtime.NumCPU()
}
