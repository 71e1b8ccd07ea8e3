package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrockway/periphflag"
	"github.com/jrockway/segment-clock/control/button"
	"github.com/jrockway/segment-clock/control/clock"
	"github.com/jrockway/segment-clock/control/config"
	"github.com/jrockway/segment-clock/control/face"
	"github.com/jrockway/segment-clock/control/max7219"
	"github.com/jrockway/segment-clock/control/rtc"
	"github.com/jrockway/segment-clock/control/screen"
	"github.com/jrockway/segment-clock/control/timestamp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"golang.org/x/net/trace"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/extra/hostextra"
	"periph.io/x/host/v3"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
)

var (
	configFile = flag.String("config", "/etc/segment-clock.yaml", "yaml file to read settings from")
	bind       = flag.String("bind", ":8080", "address to bind for debug/metrics server")
	matrixSPI  string
)

// source is a clock source that can also tell if its time can't be trusted.
type source interface {
	clock.Source
	LostPower() (bool, error)
}

type blanker interface {
	Blank() error
}

func openSource(ctx context.Context, cfg *config.Config) (source, error) {
	switch cfg.Source {
	case config.SourceDS3231:
		bus, err := i2creg.Open(cfg.I2CBus)
		if err != nil {
			return nil, fmt.Errorf("open i2c bus %q: %w", cfg.I2CBus, err)
		}
		d := rtc.NewDS3231(bus)
		if err := d.EnableOscillator(); err != nil {
			return nil, fmt.Errorf("enable oscillator on %v: %w", d, err)
		}
		return d, nil
	case config.SourceSystem:
		s := rtc.NewSystem(cfg.Location)
		s.ChronyAddr = cfg.ChronyAddr
		return s, nil
	case config.SourceGPS:
		g := rtc.NewGPS(cfg.Location)
		go g.Watch(ctx, cfg.GPSDAddr)
		select {
		case <-g.Ready():
		case <-time.After(time.Minute):
			return nil, errors.New("no time from gpsd after 1 minute")
		}
		return gpsSource{g}, nil
	}
	return nil, fmt.Errorf("unknown clock source %q", cfg.Source)
}

// gpsSource never needs seeding; until there is a fix there is no clock at all.
type gpsSource struct{ *rtc.GPS }

func (gpsSource) LostPower() (bool, error) { return false, nil }

// allowDebug lets anyone see /debug/requests and /debug/events.  The debug server is on a private
// network.
func allowDebug(req *http.Request) (allowed, sensitive bool) {
	return true, true
}

// seed writes a starting time to src if it forgot the time.
func seed(src source, cfg *config.Config) error {
	lost, err := src.LostPower()
	if err != nil {
		return fmt.Errorf("check for power loss: %w", err)
	}
	if !lost {
		return nil
	}
	ts := timestamp.FromTime(time.Now().In(cfg.Location))
	if cfg.SeedTime != nil {
		ts = *cfg.SeedTime
	}
	log.Printf("%v lost power; setting it to %v", src, ts)
	if err := src.Set(ts); err != nil {
		return fmt.Errorf("set seed time: %w", err)
	}
	return nil
}

func main() {
	if _, err := hostextra.Init(); err != nil {
		log.Fatalf("init periph.io: %v", err)
	}
	if _, err := host.Init(); err != nil {
		log.Fatalf("init periph.io v3: %v", err)
	}
	periphflag.SPIDevVar(&matrixSPI, "spi", "", "spi bus that the led matrix is on")
	flag.Parse()

	cfg, err := config.Load(afero.NewOsFs(), *configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	src, err := openSource(ctx, cfg)
	if err != nil {
		log.Fatalf("open clock source %q: %v", cfg.Source, err)
	}
	if err := seed(src, cfg); err != nil {
		log.Fatalf("seed %v: %v", src, err)
	}
	if ts, err := src.Now(); err != nil {
		log.Fatalf("read %v: %v", src, err)
	} else {
		log.Printf("%v says it is %v", src, ts)
	}

	var matrixPort spi.Port
	if cfg.HasDisplay(config.DisplayMatrix) {
		matrixPort, err = spireg.Open(matrixSPI)
		if err != nil {
			log.Fatalf("open spi port %q: %v", matrixSPI, err)
		}
	}
	leds, err := screen.NewScreen(matrixPort)
	if err != nil {
		log.Fatalf("init screen: %v", err)
	}
	displays := face.Multi{leds}
	blankers := []blanker{leds}
	if cfg.HasDisplay(config.DisplayMAX7219) {
		d, err := max7219.Open(cfg.MAX7219Device)
		if err != nil {
			log.Fatalf("init max7219: %v", err)
		}
		displays = append(displays, d)
		blankers = append(blankers, d)
	}
	blank := func() {
		for _, b := range blankers {
			if err := b.Blank(); err != nil {
				log.Printf("blank display: %v", err)
			}
		}
	}
	blank()

	var panel button.Panel
	for _, b := range []struct {
		name string
		pin  string
		dst  **button.Button
	}{
		{"mode", cfg.ModePin, &panel.Mode},
		{"select", cfg.SelectPin, &panel.Select},
	} {
		p := gpioreg.ByName(b.pin)
		if p == nil {
			log.Fatalf("%s button: no gpio pin named %q", b.name, b.pin)
		}
		btn, err := button.New(p, cfg.ButtonConfig())
		if err != nil {
			log.Fatalf("%s button: %v", b.name, err)
		}
		*b.dst = btn
	}

	trace.AuthRequest = allowDebug
	http.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/display.png", http.StatusFound)
	})
	http.Handle("/display.png", leds)
	http.Handle("/metrics", promhttp.Handler())

	httpDoneCh := make(chan error)
	httpServer := http.Server{Addr: *bind}
	go func() {
		log.Printf("http server listening on %s", httpServer.Addr)
		err := httpServer.ListenAndServe()
		select {
		case httpDoneCh <- err:
		case <-ctx.Done():
		}
		close(httpDoneCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	cl := clock.New(src, displays, &panel, cfg.ClockOptions())
	loopDoneCh := make(chan error)
	go func() {
		err := cl.Run(ctx)
		select {
		case loopDoneCh <- err:
		case <-ctx.Done():
		}
		close(loopDoneCh)
	}()

	httpAlive := true
	select {
	case err := <-httpDoneCh:
		log.Printf("http server died: %v", err)
		httpAlive = false
	case err := <-loopDoneCh:
		log.Printf("clock loop died: %v", err)
	case <-sigCh:
		log.Printf("interrupt")
	}
	signal.Stop(sigCh)
	cancel()
	<-loopDoneCh
	blank()
	if httpAlive {
		tctx, c := context.WithTimeout(context.Background(), time.Second)
		httpServer.Shutdown(tctx)
		c()
	}
	os.Exit(1)
}
