package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.einride.tech/can"

	"gm-carstate/carparams"
	"gm-carstate/carstate"
	"gm-carstate/utils"
)

type Runner struct {
	cfg     Config
	log     *utils.Logger
	session string

	scen *Scenario     // replay, simulate
	cmap *utils.CANMap // listen, simulate
	rec  *Recorder     // optional
	ci   *carstate.Interface

	reader utils.CANReader // listen
	writer utils.CANWriter // simulate

	cycles uint64
	sent   uint64
}

// NewRunner loads everything the configured mode needs and opens the bus.
func NewRunner(ctx context.Context, cfg Config, log *utils.Logger) (*Runner, error) {
	r, err := newRunner(cfg, log)
	if err != nil {
		return nil, err
	}

	switch cfg.Mode {
	case ModeListen:
		reader, err := utils.NewSocketCANReader(ctx, cfg.CAN.Iface)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.reader = reader
	case ModeSimulate:
		writer, err := utils.NewSocketCANWriter(ctx, cfg.CAN.Iface)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.writer = writer
	}
	return r, nil
}

// newRunner does the file loading part of NewRunner; the bus is left to the
// caller.
func newRunner(cfg Config, log *utils.Logger) (*Runner, error) {
	session := uuid.NewString()
	r := &Runner{
		cfg:     cfg,
		log:     log.With("session", session),
		session: session,
	}

	if cfg.Mode == ModeReplay || cfg.Mode == ModeSimulate {
		scen, err := LoadScenario(cfg.Scenario)
		if err != nil {
			return nil, fmt.Errorf("load scenario: %w", err)
		}
		r.scen = &scen
	}

	if cfg.Mode == ModeListen || cfg.Mode == ModeSimulate {
		cmap, err := utils.LoadCANMap(cfg.CAN.Map)
		if err != nil {
			return nil, fmt.Errorf("load can map: %w", err)
		}
		for _, sig := range []string{SigCruiseButtons, SigVehicleSpeed} {
			if _, ok := cmap.SignalFrame(sig); !ok {
				return nil, fmt.Errorf("can map has no %q signal", sig)
			}
		}
		r.cmap = cmap
	}

	if cfg.Mode == ModeReplay {
		if err := r.resolveCar(carparams.EmptyFingerprint()); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Runner) carName() string {
	if r.cfg.Vehicle.Fingerprint != "" {
		return r.cfg.Vehicle.Fingerprint
	}
	if r.scen != nil {
		return r.scen.Meta.Car
	}
	return ""
}

// resolveCar builds the vehicle parameters and starts the session.
func (r *Runner) resolveCar(fp carparams.Fingerprint) error {
	name := r.carName()
	cp, err := carparams.Get(name, fp)
	if err != nil {
		return fmt.Errorf("vehicle params: %w", err)
	}
	r.ci = carstate.NewInterface(cp)

	if r.cfg.Recorder.Path != "" && r.rec == nil {
		rec, err := OpenRecorder(r.cfg.Recorder.Path, r.session, cp.CarFingerprint)
		if err != nil {
			return err
		}
		r.rec = rec
	}

	r.log.Info("Vehicle %s: minEnable=%.2f m/s minSteer=%.2f m/s pcmCruise=%v interceptor=%v dashcam=%v",
		cp.CarFingerprint, cp.MinEnableSpeed, cp.MinSteerSpeed, cp.PcmCruise, cp.EnableGasInterceptor, cp.DashcamOnly)
	return nil
}

func (r *Runner) Session() string { return r.session }

func (r *Runner) Close() {
	if r.reader != nil {
		_ = r.reader.Close()
	}
	if r.writer != nil {
		_ = r.writer.Close()
	}
	if r.rec != nil {
		if err := r.rec.Close(); err != nil {
			r.log.Warn("close recorder: %v", err)
		}
	}
}

func (r *Runner) Run(ctx context.Context) error {
	switch r.cfg.Mode {
	case ModeReplay:
		return r.runReplay(ctx)
	case ModeListen:
		return r.runListen(ctx)
	case ModeSimulate:
		return r.runSimulate(ctx)
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, r.cfg.Mode)
	}
}

// cycle runs one sample through the car interface and reports the result.
func (r *Runner) cycle(s carstate.RawSample, at time.Time) carstate.CarState {
	start := time.Now()
	out := r.ci.Update(s)
	r.cycles++

	for _, ev := range out.Events {
		r.log.Debug("cycle=%d v=%.2f event=%s", r.cycles, out.VEgo, ev)
	}
	for _, ev := range out.EnableEvents {
		r.log.Debug("cycle=%d enable=%s", r.cycles, ev)
	}
	if t := out.Transitions; t.GearChanged || t.CruiseEngaged || t.CruiseDisengaged || t.LeftStandstill {
		r.log.Debug("cycle=%d gear=%s transitions=%+v", r.cycles, out.Gear, t)
	}

	if r.rec != nil {
		if err := r.rec.Record(r.cycles, out, at); err != nil {
			r.log.Error("%v", err)
		}
	}

	observeCycle(r.cfg.Mode, out, time.Since(start))
	r.log.Trace("cycle=%d v=%.3f buttons=%s gear=%s cruise=%v standstill=%v",
		r.cycles, s.VEgo, s.CruiseButtons, s.Gear, s.CruiseEnabled, s.Standstill)
	return out
}

func (r *Runner) runReplay(ctx context.Context) error {
	dt := r.scen.Timing.DtS
	steps := r.scen.Steps()

	r.log.Info("Starting replay: scenario=%s car=%s dt=%.3fs steps=%d realtime=%v",
		r.scen.Meta.Name, r.ci.Params().CarFingerprint, dt, steps, r.scen.Timing.RealTimeMode)

	var tick <-chan time.Time
	if r.scen.Timing.RealTimeMode {
		ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

	start := time.Now()
	for i := 0; i < steps; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				r.log.Warn("Context canceled; stopping replay")
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		t := float64(i) * dt
		sample := EvalSample(r.scen, t).Raw()
		r.cycle(sample, start.Add(time.Duration(t*float64(time.Second))))
	}

	r.log.Info("Completed replay. cycles=%d", r.cycles)
	return nil
}

// receiveLoop forwards frames from the bus until ctx is done or the reader
// is closed. A full channel drops the frame.
func (r *Runner) receiveLoop(ctx context.Context, frames chan<- can.Frame) error {
	r.log.Debug("RX loop started")
	defer r.log.Debug("RX loop stopped")

	for {
		frame, err := r.reader.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, utils.ErrReaderClosed) {
				r.log.Critical("RX stopped: %v", err)
				return err
			}
			r.log.Error("RX error: %v", err)
			continue
		}
		RXFramesTotal.WithLabelValues(r.cfg.CAN.Iface).Inc()

		select {
		case frames <- frame:
		default:
			r.log.Warn("RX queue full, dropping id=0x%X", frame.ID)
		}
	}
}

// listenState is what the listen loop has learned from the bus so far.
type listenState struct {
	fp      carparams.Fingerprint
	signals map[string]float64
	seen    bool
}

func (r *Runner) absorb(st *listenState, frame can.Frame) {
	st.fp.Add(0, frame.ID, int(frame.Length))

	if _, known := r.cmap.ByID[frame.ID]; !known {
		return
	}
	values, err := r.cmap.DecodeEinrideFrame(frame)
	if err != nil {
		DecodeErrorsTotal.WithLabelValues(r.cfg.CAN.Iface).Inc()
		r.log.Warn("decode id=0x%X: %v", frame.ID, err)
		return
	}
	for k, v := range values {
		st.signals[k] = v
	}
	st.seen = true
	r.log.Trace("RX id=0x%X len=%d data=% X", frame.ID, frame.Length, frame.Data[:frame.Length])
}

func (r *Runner) runListen(ctx context.Context) error {
	if r.carName() == "" {
		return fmt.Errorf("%w: listen mode needs vehicle.fingerprint", ErrInvalidConfig)
	}

	frames := make(chan can.Frame, 100)
	rxDone := make(chan error, 1)
	go func() { rxDone <- r.receiveLoop(ctx, frames) }()

	st := &listenState{fp: carparams.EmptyFingerprint(), signals: map[string]float64{}}

	if window := r.cfg.Vehicle.FingerprintWindow; window > 0 {
		r.log.Info("Collecting fingerprint on %s for %s", r.cfg.CAN.Iface, window)
		timer := time.NewTimer(window)
	collect:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case frame := <-frames:
				r.absorb(st, frame)
			case err := <-rxDone:
				timer.Stop()
				return err
			case <-timer.C:
				break collect
			}
		}
		r.log.Info("Fingerprint: %d frame ids on bus 0", len(st.fp[0]))
	}

	if err := r.resolveCar(st.fp); err != nil {
		return err
	}

	ticker := time.NewTicker(r.cfg.Period())
	defer ticker.Stop()

	r.log.Info("Starting listen: iface=%s car=%s period=%s", r.cfg.CAN.Iface, r.ci.Params().CarFingerprint, r.cfg.Period())

	for {
		select {
		case <-ctx.Done():
			r.log.Warn("Context canceled; stopping listen")
			r.log.Info("Completed listen. cycles=%d", r.cycles)
			return ctx.Err()

		case frame := <-frames:
			r.absorb(st, frame)

		case err := <-rxDone:
			r.log.Info("Completed listen. cycles=%d", r.cycles)
			return err

		case now := <-ticker.C:
			if !st.seen {
				continue
			}
			r.cycle(SampleFromSignals(st.signals), now)
		}
	}
}

func (r *Runner) runSimulate(ctx context.Context) error {
	frames := r.cmap.Frames(utils.DirectionRX)
	if len(frames) == 0 {
		return fmt.Errorf("can map has no %s frames to transmit", utils.DirectionRX)
	}

	dt := r.scen.Timing.DtS
	steps := r.scen.Steps()
	r.log.Info("Starting simulate: scenario=%s iface=%s frames=%d dt=%.3fs steps=%d",
		r.scen.Meta.Name, r.cfg.CAN.Iface, len(frames), dt, steps)

	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			r.log.Warn("Context canceled; stopping TX")
			r.log.Info("Completed TX. frames_sent=%d", r.sent)
			return ctx.Err()
		case <-ticker.C:
		}

		t := float64(i) * dt
		values := Signals(EvalSample(r.scen, t).Raw())

		for _, fd := range frames {
			frame, err := r.cmap.EncodeEinrideFrame(fd.Name, values)
			if err != nil {
				r.log.Error("Encode %s failed at t=%.3f: %v", fd.Name, t, err)
				return err
			}
			if err := r.writer.WriteFrame(ctx, frame); err != nil {
				r.log.Critical("Transmit failed at t=%.3f: %v", t, err)
				return err
			}
			r.sent++
			TXFramesTotal.WithLabelValues(r.cfg.CAN.Iface).Inc()
			r.log.Trace("TX t=%.3f id=0x%X len=%d data=% X", t, frame.ID, frame.Length, frame.Data[:frame.Length])
		}
	}

	r.log.Info("Completed TX. frames_sent=%d", r.sent)
	return nil
}
