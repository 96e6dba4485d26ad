package testutil

import (
	"sync"

	"github.com/dalemusser/inclouds/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var (
	bootOnce sync.Once
	bootErr  error
)

// MustBootTemplates installs a template engine holding the layout and
// every feature set imported by the test binary. Feature packages register
// their sets from init, so importing the package under test is enough.
// Only the first call boots; later calls return the same result.
func MustBootTemplates(t interface{ Fatalf(string, ...any) }) {
	bootOnce.Do(func() {
		resources.LoadSharedTemplates()
		eng := templates.New(false)
		if bootErr = eng.Boot(zap.NewNop()); bootErr == nil {
			templates.UseEngine(eng, zap.NewNop())
		}
	})
	if bootErr != nil {
		t.Fatalf("failed to boot templates: %v", bootErr)
	}
}
