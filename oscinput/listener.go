// Package oscinput receives the kinetic light inputs over OSC.
//
// Each pose input has its own address and takes a single number:
//
//	/kinetic/height 1.5
//	/kinetic/roll   10
//	/kinetic/pitch  -5
//	/kinetic/yaw    90
//	/kinetic/speed  200
//
// A message with no arguments disconnects the input again. /kinetic/dmx takes a list of values
// for the lighting channels starting at channel 1, /kinetic/dmx/<channel> sets one channel and
// /kinetic/reset runs the reset action.
package oscinput

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/hypebeast/go-osc/osc"
	"github.com/robmorgan/kinetic/config"
	"github.com/robmorgan/kinetic/engine"
	"github.com/robmorgan/kinetic/logger"
	"k8s.io/utils/ptr"
)

const (
	AddressPrefix = "/kinetic"

	AddressHeight = AddressPrefix + "/height"
	AddressRoll   = AddressPrefix + "/roll"
	AddressPitch  = AddressPrefix + "/pitch"
	AddressYaw    = AddressPrefix + "/yaw"
	AddressSpeed  = AddressPrefix + "/speed"
	AddressDMX    = AddressPrefix + "/dmx"
	AddressReset  = AddressPrefix + "/reset"
	AddressOffset = AddressPrefix + "/offset"
)

// Listener keeps the latest value received for every input. It is an engine.InputSource and an
// osc.Dispatcher.
type Listener struct {
	mu     sync.Mutex
	inputs engine.Inputs

	onReset  func()
	onOffset func(float64)
}

// NewListener creates a listener with every input disconnected.
func NewListener() *Listener {
	return &Listener{}
}

// OnReset sets the handler for /kinetic/reset.
func (l *Listener) OnReset(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onReset = fn
}

// OnOffset sets the handler for /kinetic/offset.
func (l *Listener) OnOffset(fn func(float64)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onOffset = fn
}

// Sample returns a copy of the latest inputs.
func (l *Listener) Sample() engine.Inputs {
	l.mu.Lock()
	defer l.mu.Unlock()

	in := engine.Inputs{
		Height: copyValue(l.inputs.Height),
		Roll:   copyValue(l.inputs.Roll),
		Pitch:  copyValue(l.inputs.Pitch),
		Yaw:    copyValue(l.inputs.Yaw),
		Speed:  copyValue(l.inputs.Speed),
	}
	if l.inputs.Aux != nil {
		in.Aux = append([]float64(nil), l.inputs.Aux...)
	}
	return in
}

func copyValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr.To(*v)
}

// Dispatch handles a received OSC packet.
func (l *Listener) Dispatch(packet osc.Packet) {
	switch p := packet.(type) {
	case *osc.Message:
		l.handleMessage(p)
	case *osc.Bundle:
		for _, msg := range p.Messages {
			l.handleMessage(msg)
		}
		for _, b := range p.Bundles {
			l.Dispatch(b)
		}
	}
}

func (l *Listener) handleMessage(msg *osc.Message) {
	log := logger.GetProjectLogger().WithField("address", msg.Address)

	values, err := numbers(msg.Arguments)
	if err != nil {
		log.WithError(err).Warn("ignoring osc message")
		return
	}

	l.mu.Lock()
	var callback func()
	switch msg.Address {
	case AddressHeight:
		l.inputs.Height = first(values)
	case AddressRoll:
		l.inputs.Roll = first(values)
	case AddressPitch:
		l.inputs.Pitch = first(values)
	case AddressYaw:
		l.inputs.Yaw = first(values)
	case AddressSpeed:
		l.inputs.Speed = first(values)
	case AddressDMX:
		if len(values) == 0 {
			l.inputs.Aux = nil
		} else {
			l.inputs.Aux = values
		}
	case AddressReset:
		if fn := l.onReset; fn != nil {
			callback = fn
		}
	case AddressOffset:
		if fn := l.onOffset; fn != nil && len(values) > 0 {
			v := values[0]
			callback = func() { fn(v) }
		}
	default:
		if !l.setAuxChannel(msg.Address, values) {
			log.Debug("unhandled osc address")
		}
	}
	l.mu.Unlock()

	if callback != nil {
		callback()
	}
}

// setAuxChannel handles /kinetic/dmx/<channel>. It must be called with the lock held.
func (l *Listener) setAuxChannel(address string, values []float64) bool {
	suffix, ok := strings.CutPrefix(address, AddressDMX+"/")
	if !ok || len(values) == 0 {
		return false
	}
	ch, err := strconv.Atoi(suffix)
	if err != nil || ch < 1 || ch > config.UniverseChannels {
		return false
	}

	if len(l.inputs.Aux) < ch {
		aux := make([]float64, ch)
		copy(aux, l.inputs.Aux)
		l.inputs.Aux = aux
	}
	l.inputs.Aux[ch-1] = values[0]
	return true
}

func first(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	return ptr.To(values[0])
}

func numbers(args []interface{}) ([]float64, error) {
	out := make([]float64, 0, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case float32:
			out = append(out, float64(v))
		case float64:
			out = append(out, v)
		case int32:
			out = append(out, float64(v))
		case int64:
			out = append(out, float64(v))
		case bool:
			if v {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		default:
			return nil, fmt.Errorf("argument %d has type %T, expected a number", i, arg)
		}
	}
	return out, nil
}

// ListenAndServe receives OSC packets on addr until ctx is cancelled.
func (l *Listener) ListenAndServe(ctx context.Context, addr string) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}
	return l.Serve(ctx, conn)
}

// Serve receives OSC packets on conn until ctx is cancelled. It closes conn before returning.
func (l *Listener) Serve(ctx context.Context, conn net.PacketConn) error {
	server := &osc.Server{Dispatcher: l}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	logger.GetProjectLogger().WithField("addr", conn.LocalAddr().String()).Info("listening for osc")
	err := server.Serve(conn)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
