package cerr

import "fmt"

// WrapStorageWriteError hides backend failures behind a generic message.
func WrapStorageWriteError(target string, err error) error {
	return NewError(Internal, "server error", fmt.Errorf("failed to write %s: %w", target, err))
}
