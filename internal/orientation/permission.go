package orientation

import (
	"context"
	"fmt"

	"mihrab.noorapp.org/internal/appconf"
	"mihrab.noorapp.org/internal/qibla"
)

// AlwaysGranted models platforms that deliver orientation events without a prompt.
type AlwaysGranted struct{}

func (AlwaysGranted) RequestOrientationPermission(ctx context.Context) (qibla.Permission, error) {
	if err := ctx.Err(); err != nil {
		return qibla.PermissionDenied, err
	}
	return qibla.PermissionGranted, nil
}

// Denied models a user who declined the prompt.
type Denied struct{}

func (Denied) RequestOrientationPermission(context.Context) (qibla.Permission, error) {
	return qibla.PermissionDenied, nil
}

// Unsupported models a platform with no orientation capability at all.
type Unsupported struct{}

func (Unsupported) RequestOrientationPermission(context.Context) (qibla.Permission, error) {
	return qibla.PermissionDenied, qibla.ErrOrientationUnsupported
}

// GateForMode returns the permission gate for a configured mode.
func GateForMode(mode string) (qibla.PermissionRequester, error) {
	switch mode {
	case "", appconf.PermissionGranted:
		return AlwaysGranted{}, nil
	case appconf.PermissionDenied:
		return Denied{}, nil
	case appconf.PermissionUnsupported:
		return Unsupported{}, nil
	default:
		return nil, fmt.Errorf("unknown permission mode %q", mode)
	}
}
