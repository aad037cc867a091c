// Command unidump prints the kinetic fixture channels currently held by OLA.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nickysemenza/gola"
	"github.com/robmorgan/kinetic/config"
	"github.com/robmorgan/kinetic/fixture"
	"github.com/robmorgan/kinetic/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the kinetic config file")
	flag.Parse()

	log := logger.GetProjectLogger()

	cfg := config.NewKineticConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	f, err := fixture.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("creating fixture: %v", err)
	}

	client, err := gola.New(cfg.Output.OLAAddress)
	if err != nil {
		log.Fatalf("could not create client: %v", err)
	}
	defer client.Close()

	// dump out DMX on the patched universe
	x, err := client.GetDmx(f.Universe)
	if err != nil {
		log.Fatalf("GetDmx: %d: %v", f.Universe, err)
	}
	dump(os.Stdout, f, x.Data)
}

// dump loads the patched block of data into f and prints each motor.
func dump(w io.Writer, f *fixture.Fixture, data []byte) {
	offset := f.Address - 1
	for role := 1; role <= fixture.MotorRoles; role++ {
		m := f.GetMotor(role)
		for ch := 1; ch <= m.GetChannelCount(); ch++ {
			if i := offset + ch - 1; i < len(data) {
				m.SetChannel(ch, int(data[i]))
			}
		}
		offset += m.GetChannelCount()
	}

	fmt.Fprintf(w, "Universe %d, address %d\n", f.Universe, f.Address)
	f.PrintStatus(w)
}
