//go:build !linux && !darwin

package log

func isTerminal(fd uintptr) bool {
	return false
}
