package coverage

import (
	"fmt"

	"covlaunch/core/launch"
)

// resolveDelegate finds the delegate registered on launchType for
// DelegateMode. The first registered delegate wins; self is skipped so a
// launcher registered under DelegateMode never wraps itself.
func resolveDelegate(types launch.TypeLookup, launchType string, self launch.Delegate) (launch.Delegate, error) {
	if types == nil {
		return nil, fmt.Errorf("launch type registry required")
	}
	t, ok := types.LaunchType(launchType)
	if !ok || t == nil {
		return nil, &UnknownLaunchTypeError{LaunchType: launchType}
	}
	for _, ref := range t.DelegatesFor(DelegateMode) {
		if ref.Delegate == nil || ref.Delegate == self {
			continue
		}
		return ref.Delegate, nil
	}
	return nil, &NoDelegateRegisteredError{LaunchType: launchType, Mode: DelegateMode}
}
