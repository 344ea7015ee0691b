// presence-bot joins a room as a headless participant and wanders around the
// space, which is handy for load and smoke testing a running server.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gatherspace/client"
	"gatherspace/layout"
	"gatherspace/protocol"
)

type options struct {
	endpoint   string
	room       string
	name       string
	codecName  string
	layoutFile string
	duration   time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.endpoint, "url", "ws://localhost:8080/ws", "server websocket endpoint")
	flag.StringVar(&opts.room, "room", "default", "room to join")
	flag.StringVar(&opts.name, "name", "bot", "display name")
	flag.StringVar(&opts.codecName, "codec", "json", "wire codec: json or msgpack")
	flag.StringVar(&opts.layoutFile, "layout", "", "layout JSON file (built-in office when empty)")
	flag.DurationVar(&opts.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Sugar()

	err = run(opts, log)
	_ = log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "presence-bot: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, log *zap.SugaredLogger) error {
	space := layout.Default()
	if opts.layoutFile != "" {
		var err error
		if space, err = layout.Load(opts.layoutFile); err != nil {
			return fmt.Errorf("layout: %w", err)
		}
	}
	codec, err := protocol.CodecByName(opts.codecName)
	if err != nil {
		return fmt.Errorf("codec: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	tr, err := client.Dial(ctx, opts.endpoint, codec)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	me := client.NewPlayer(opts.name, space, rng)

	listeners := &client.Listeners{}
	reg := listeners.Add(reportNearby(log))
	defer reg.Release()

	loop := &client.Loop{
		Transport: tr,
		Layout:    space,
		RoomID:    opts.room,
		Input:     &wanderer{rng: rng},
		Listeners: listeners,
		Log:       log,
	}
	if err := loop.Run(ctx, me); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

// wanderer holds a random direction for a random number of ticks.
type wanderer struct {
	rng    *rand.Rand
	intent client.Intent
	left   int
}

func (w *wanderer) Intent() client.Intent {
	if w.left <= 0 {
		w.intent = client.Intent{
			Up:    w.rng.Intn(3) == 0,
			Down:  w.rng.Intn(3) == 0,
			Left:  w.rng.Intn(3) == 0,
			Right: w.rng.Intn(3) == 0,
		}
		w.left = 30 + w.rng.Intn(90)
	}
	w.left--
	return w.intent
}

// reportNearby logs whenever the set of nearby areas or the connection state changes.
func reportNearby(log *zap.SugaredLogger) func(client.Frame) {
	var last string
	connected := true
	return func(f client.Frame) {
		if f.Connected != connected {
			connected = f.Connected
			log.Infow("connection changed", "connected", connected)
		}
		key := ""
		for _, a := range f.Nearby {
			key += a.ID + ","
		}
		if key == last {
			return
		}
		last = key
		labels := make([]string, 0, len(f.Nearby))
		for _, a := range f.Nearby {
			labels = append(labels, a.Label)
		}
		log.Infow("nearby areas", "areas", labels, "x", f.Local.X, "y", f.Local.Y, "others", len(f.Remote))
	}
}
