package browser

import "fmt"

// LaunchError means the browser process could not be started.
type LaunchError struct {
	Bin string
	Err error
}

func (e *LaunchError) Error() string {
	if e.Bin != "" {
		return fmt.Sprintf("failed to launch browser '%s': %v", e.Bin, e.Err)
	}
	return fmt.Sprintf("failed to launch browser: %v", e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ConnectionError means the remote-debugging client could not attach.
type ConnectionError struct {
	ControlURL string
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to browser at '%s': %v", e.ControlURL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
