package fixture

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robmorgan/kinetic/config"
	"github.com/robmorgan/kinetic/logger"
	"k8s.io/utils/clock"
)

// DMXState holds the DMX512 values for each universe
type DMXState struct {
	universes map[int][]byte
	lock      sync.Mutex
}

// NewDMXState creates an empty DMX state.
func NewDMXState() *DMXState {
	return &DMXState{universes: make(map[int][]byte)}
}

// Write copies values into universe starting at address.
func (s *DMXState) Write(universe, address int, values []byte) error {
	if universe < 1 {
		return fmt.Errorf("dmx universe (%d) not in range", universe)
	}
	if address < 1 || address+len(values)-1 > config.UniverseChannels {
		return fmt.Errorf("dmx block at %d with %d channels does not fit in a universe", address, len(values))
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.initializeUniverse(universe)
	copy(s.universes[universe][address-1:], values)
	return nil
}

// Snapshot returns a copy of every universe written so far.
func (s *DMXState) Snapshot() map[int][]byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make(map[int][]byte, len(s.universes))
	for k, v := range s.universes {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

func (s *DMXState) initializeUniverse(universe int) {
	if s.universes == nil {
		s.universes = make(map[int][]byte)
	}
	if s.universes[universe] == nil {
		s.universes[universe] = make([]byte, config.UniverseChannels)
	}
}

// OLAClient is the interface for sending DMX frames to a DMX interface.
type OLAClient interface {
	SendDmx(universe int, values []byte) (status bool, err error)
	Close()
}

// SendDMXWorker sends the client the current DMX state across all universes on every tick.
func SendDMXWorker(ctx context.Context, clk clock.Clock, client OLAClient, tick time.Duration, state *DMXState, wg *sync.WaitGroup) error {
	defer wg.Done()
	defer client.Close()

	log := logger.GetProjectLogger()

	t := clk.NewTimer(tick)
	defer t.Stop()
	log.Debugf("dmx timer started at %v", clk.Now())

	failing := false
	for {
		select {
		case <-ctx.Done():
			log.Info("SendDMXWorker shutdown")
			return ctx.Err()
		case <-t.C():
			snapshot := state.Snapshot()
			universes := make([]int, 0, len(snapshot))
			for k := range snapshot {
				universes = append(universes, k)
			}
			sort.Ints(universes)

			for _, u := range universes {
				_, err := client.SendDmx(u, snapshot[u])
				if err != nil && !failing {
					log.WithError(err).WithField("universe", u).Warn("sending dmx failed")
				}
				failing = err != nil
			}
			t.Reset(tick)
		}
	}
}
