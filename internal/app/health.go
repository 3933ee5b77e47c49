package app

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Check is one line of the health report.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

type pinger interface {
	Ping(ctx context.Context, timeout time.Duration) error
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Health reports whether the store loaded, the database answers, the
// extraction tools are installed and the selected generator is wired.
func (a *App) Health(ctx context.Context) []Check {
	var checks []Check
	add := func(name string, err error, okDetail string) {
		c := Check{Name: name, OK: err == nil, Detail: okDetail}
		if err != nil {
			c.Detail = err.Error()
		}
		checks = append(checks, c)
	}

	add("store load", a.Store.LoadError(), a.Config.Store.Backend)
	if p, ok := a.persister.(pinger); ok {
		add("store ping", p.Ping(ctx, a.Config.Store.DialTimeout), "ok")
	}

	for _, tool := range []struct{ name, bin string }{
		{"pdf tool", a.Config.Extract.Pdftotext},
		{"doc tool", a.Config.Extract.Antiword},
		{"xls tool", a.Config.Extract.Xls2csv},
	} {
		path, err := lookPath(tool.bin)
		add(tool.name, err, path)
	}

	backend := a.Store.Settings().Backend
	var err error
	if !a.Generator.Has(backend) {
		err = fmt.Errorf("backend %q is selected but not configured", backend)
	}
	add("generator", err, string(backend))

	for _, c := range checks {
		a.Logger.Debug("app.health", "check", c.Name, "ok", c.OK, "detail", c.Detail)
	}
	return checks
}
