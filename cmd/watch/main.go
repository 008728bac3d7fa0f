package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"golang.org/x/sync/errgroup"

	"tradelink/internal/config"
	"tradelink/internal/errors"
	"tradelink/internal/link"
	"tradelink/internal/obs"
	"tradelink/internal/transport"
	"tradelink/internal/wire"
	"tradelink/pkg/exception"
)

const disconnectTimeout = 2 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("watch: %+v", err)
	}
}

func run() error {
	configFlag := flag.String("config", "", "YAML config path")
	identityFlag := flag.String("identity", "", "client name")
	modeFlag := flag.String("mode", "auto", "broker to use: live, sim or auto")
	symbolsFlag := flag.String("symbols", "", "comma separated symbols to watch")
	indicesFlag := flag.String("indices", "", "comma separated indices to watch, e.g. $SPX")
	heartbeatFlag := flag.Duration("heartbeat", 30*time.Second, "heartbeat interval, 0 disables")
	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		return err
	}
	if *identityFlag != "" {
		cfg.Link.Identity = *identityFlag
	}
	if cfg.Link.Identity == "" {
		cfg.Link.Identity = link.DefaultClient
	}
	if link.IsBroker(cfg.Link.Identity) {
		return errors.Wrapf(exception.ErrInvalidArgument, "identity %q is reserved for brokers", cfg.Link.Identity)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Profile.Enabled {
		stop, err := obs.StartProfiler(obs.ProfileOption{
			AppName: cfg.Profile.AppName + "/watch",
			Server:  cfg.Profile.Server,
			Tags:    map[string]string{"identity": cfg.Link.Identity},
		})
		if err != nil {
			return err
		}
		defer stop()
	}

	if err := os.MkdirAll(cfg.Link.SocketDir, 0o755); err != nil {
		return err
	}

	metrics := obs.NewMetrics()
	tr := transport.New(transport.Config{
		Dir:            cfg.Link.SocketDir,
		Identity:       cfg.Link.Identity,
		RequestTimeout: cfg.Link.RequestTimeout,
		DialTimeout:    cfg.Link.DialTimeout,
		MaxFrameSize:   cfg.Link.MaxFrameSize,
		Metrics:        metrics,
	})
	if err := tr.Listen(); err != nil {
		return err
	}
	defer tr.Close()

	l := link.New(tr, link.Config{Peer: cfg.Link.Peer, Metrics: metrics})
	attach(l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-sys.Shutdown():
			logs.Info("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tr.Serve(ctx, l.Dispatch)
	})

	symbols := wire.ParseBasket(*symbolsFlag)
	indices := wire.ParseBasket(*indicesFlag)
	if err := join(ctx, l, *modeFlag, cfg.Link.Peer, symbols, indices); err != nil {
		cancel()
		_ = g.Wait()
		return err
	}
	logs.Infof("%s %s connected to %s", l.Me(), link.Version(), l.Him())
	report(ctx, l, symbols)

	if *heartbeatFlag > 0 {
		g.Go(func() error {
			return heartbeat(ctx, l, *heartbeatFlag)
		})
	}
	g.Go(func() error {
		return obs.Report(ctx, metrics, cfg.StatsInterval)
	})

	err = g.Wait()
	disconnect(l)
	return err
}

// join connects to the broker and subscribes. A failed subscription leaves
// the broker, so it does not keep a half registered client.
func join(ctx context.Context, l *link.Link, mode, peer string, symbols, indices wire.Basket) error {
	if err := connect(ctx, l, mode, peer); err != nil {
		return err
	}
	if len(symbols) > 0 {
		if err := l.Subscribe(ctx, symbols); err != nil {
			disconnect(l)
			return errors.Wrap(err, "subscribe")
		}
	}
	if len(indices) > 0 {
		if err := l.RegisterIndex(ctx, indices); err != nil {
			disconnect(l)
			return errors.Wrap(err, "register index")
		}
	}
	return nil
}

func disconnect(l *link.Link) {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := l.Disconnect(ctx); err != nil {
		logs.Errorf("disconnect, err: %+v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadWithDefaults(path)
}

// connect picks the broker. A configured peer wins over the mode flag.
func connect(ctx context.Context, l *link.Link, mode, peer string) error {
	if peer != "" {
		l.SetHim(peer)
		return l.Register(ctx)
	}

	var ch link.Channels
	switch strings.ToLower(mode) {
	case "live":
		ch = link.LiveChannel
	case "sim":
		ch = link.SimChannel
	case "auto":
		found := l.Discover()
		switch {
		case found.Has(link.LiveChannel):
			ch = link.LiveChannel
		case found.Has(link.SimChannel):
			ch = link.SimChannel
		default:
			return errors.Wrap(exception.ErrPeerNotFound, "no broker found")
		}
	default:
		return errors.Wrapf(exception.ErrInvalidArgument, "unknown mode %q", mode)
	}
	return l.Mode(ctx, ch)
}

func attach(l *link.Link) {
	l.GotTick.Add(func(t wire.Tick) {
		if t.IsTrade() {
			logs.Infof("trade %s %s x %d", t.Symbol, t.Trade, t.Size)
			return
		}
		logs.Infof("quote %s %s/%s %dx%d", t.Symbol, t.Bid, t.Ask, t.BidSize, t.AskSize)
	})
	l.GotIndexTick.Add(func(i wire.IndexTick) {
		logs.Infof("index %s %s", i.Name, i.Value)
	})
	l.GotFill.Add(func(t wire.Trade) {
		logs.Infof("fill %s %d @ %s %s", t.Symbol, t.SignedSize(), t.Price, t.Comment)
	})
	l.GotOrder.Add(func(o wire.Order) {
		side := "sell"
		if o.Buy {
			side = "buy"
		}
		logs.Infof("order %s %s %d @ %s", side, o.Symbol, o.Size, o.Price)
	})
}

// report logs what the broker knows about each symbol.
func report(ctx context.Context, l *link.Link, symbols wire.Basket) {
	for _, sym := range symbols {
		high, err := l.FastHigh(ctx, sym)
		if err != nil {
			logs.Errorf("day high %s, err: %+v", sym, err)
			continue
		}
		low, err := l.FastLow(ctx, sym)
		if err != nil {
			logs.Errorf("day low %s, err: %+v", sym, err)
			continue
		}
		pos, err := l.FastPos(ctx, sym)
		if err != nil {
			logs.Errorf("position %s, err: %+v", sym, err)
			continue
		}
		logs.Infof("%s high %s low %s position %d @ %s", sym, high, low, pos.Size, pos.AvgPrice)
	}
}

func heartbeat(ctx context.Context, l *link.Link, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := l.HeartBeat(ctx); err != nil {
				logs.Errorf("heartbeat, err: %+v", err)
			}
		}
	}
}
