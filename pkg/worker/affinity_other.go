//go:build !linux

package worker

func pinToCPU(int) error { return nil }
