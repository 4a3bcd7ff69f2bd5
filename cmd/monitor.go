package cmd

import (
	"expvar"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
)

type monitor struct {
	info    *expvar.Map
	stopped chan struct{}
	server  *http.Server

	Genes       *expvar.Int
	Fitted      *expvar.Int
	Failed      *expvar.Int
	CurrentGene *expvar.String
	RunTime     *expvar.Float

	LastHalfLife         *expvar.Float
	LastPValue           *expvar.Float
	LastAcceptance       *expvar.Float
	LastRecentAcceptance *expvar.Float
	LastDrift            *expvar.Float
}

// Start begins the monitor
func (m *monitor) Start(addr string) error {
	if m.info != nil {
		return errors.Errorf("BUG: You may only start the process monitor once")
	}

	m.info = expvar.NewMap("dynge-progress")
	m.stopped = make(chan struct{})
	m.server = &http.Server{
		Addr: addr,
	}

	// Help the user and redirect to the only thing currently available:
	// the handler from the expvar package
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/vars", http.StatusTemporaryRedirect)
	})

	m.Genes = expvar.NewInt("Gene-Count")
	m.Fitted = expvar.NewInt("Genes-Fitted")
	m.Failed = expvar.NewInt("Genes-Failed")
	m.CurrentGene = expvar.NewString("Current-Gene")
	m.RunTime = expvar.NewFloat("Run-Time")

	m.LastHalfLife = expvar.NewFloat("Last-Half-Life")
	m.LastPValue = expvar.NewFloat("Last-PP-pval")
	m.LastAcceptance = expvar.NewFloat("Last-Acceptance")
	m.LastRecentAcceptance = expvar.NewFloat("Last-Recent-Acceptance")
	m.LastDrift = expvar.NewFloat("Last-Drift")

	// Actual server that will close the stopped channel on exit
	started := make(chan struct{})
	go func() {
		defer close(m.stopped)
		fmt.Fprintf(os.Stderr, "HTTP now available at %v (see debug/vars/)\n", m.server.Addr)
		close(started)
		m.server.ListenAndServe()
	}()

	<-started
	return nil
}

func (m *monitor) Stop() {
	if m.info == nil {
		return
	}

	m.server.Close()

	select {
	case <-m.stopped:
		fmt.Fprintf(os.Stderr, "HTTP Info Stopped\n")
	case <-time.After(2 * time.Second):
		fmt.Fprintf(os.Stderr, "HTTP would NOT stop: just continuing on\n")
	}
}
