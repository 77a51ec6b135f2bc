//go:build !linux

package keyboard

func NewSource() (Source, error) {
	return nil, ErrNotAvailable
}

func NewExecutor() (Executor, error) {
	return nil, ErrNotAvailable
}
