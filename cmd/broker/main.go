package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"golang.org/x/sync/errgroup"

	"tradelink/internal/config"
	"tradelink/internal/journal"
	"tradelink/internal/link"
	"tradelink/internal/obs"
	"tradelink/internal/state"
	"tradelink/internal/transport"
	"tradelink/internal/wire"
	"tradelink/pkg/conn"
)

const fillQueueSize = 256

func main() {
	if err := run(); err != nil {
		log.Fatalf("broker: %+v", err)
	}
}

func run() error {
	configFlag := flag.String("config", "", "YAML config path")
	identityFlag := flag.String("identity", "", "broker name, "+link.SimBroker+" or "+link.LiveBroker)
	replayFlag := flag.String("replay", "", "tick replay file, - for stdin")
	delayFlag := flag.Duration("delay", 0, "pause between replayed records")
	snapshotFlag := flag.String("snapshot", "", "write positions as JSON here on shutdown")
	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		return err
	}
	if *identityFlag != "" {
		cfg.Link.Identity = *identityFlag
	}
	if cfg.Link.Identity == "" {
		cfg.Link.Identity = link.SimBroker
	}
	if !link.IsBroker(cfg.Link.Identity) {
		return fmt.Errorf("identity %q is not a broker name", cfg.Link.Identity)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Profile.Enabled {
		stop, err := obs.StartProfiler(obs.ProfileOption{
			AppName: cfg.Profile.AppName + "/broker",
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

	var (
		recorder link.Recorder
		writer   *journal.Writer
	)
	if cfg.Journal.Enabled {
		client, err := conn.New(cfg.Journal.Postgres)
		if err != nil {
			return err
		}
		defer client.Close()
		store, err := journal.NewPostgresStore(client)
		if err != nil {
			return err
		}
		writer = journal.NewWriter(store, cfg.Journal.QueueSize, metrics)
		recorder = writer
	}

	l := link.New(tr, link.Config{Metrics: metrics, Recorder: recorder})
	p := newPaper()
	fills := make(chan wire.Order, fillQueueSize)
	l.GotFillRequest.Add(func(o wire.Order) {
		select {
		case fills <- o:
		default:
			logs.Errorf("fill queue full, order for %s dropped", o.Symbol)
		}
	})

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

	journalDone := make(chan struct{})
	if writer != nil {
		go func() {
			defer close(journalDone)
			writer.Run(context.Background())
		}()
	} else {
		close(journalDone)
	}

	logs.Infof("broker %s %s listening in %s", cfg.Link.Identity, link.Version(), cfg.Link.SocketDir)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tr.Serve(ctx, l.Dispatch)
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case o := <-fills:
				t, ok := p.fill(o)
				if !ok {
					logs.Infof("order for %s not filled", o.Symbol)
					continue
				}
				l.NewFill(ctx, t)
			}
		}
	})
	if *replayFlag != "" {
		g.Go(func() error {
			r, closeFn, err := openReplay(*replayFlag)
			if err != nil {
				return err
			}
			defer closeFn()
			return replay(ctx, r, l, p, *delayFlag)
		})
	}
	if cfg.Link.StaleAfter > 0 {
		g.Go(func() error {
			return prune(ctx, l, cfg.Link.StaleAfter, cfg.Link.PruneInterval)
		})
	}
	g.Go(func() error {
		return obs.Report(ctx, metrics, cfg.StatsInterval)
	})

	err = g.Wait()

	if writer != nil {
		writer.Close()
	}
	<-journalDone

	if *snapshotFlag != "" {
		snapshot := l.Positions().Snapshot()
		if werr := state.WriteSnapshot(*snapshotFlag, snapshot); werr != nil {
			logs.Errorf("write snapshot, err: %+v", werr)
		} else {
			logs.Infof("wrote %d positions to %s", len(snapshot.Positions), *snapshotFlag)
		}
	}
	return err
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadWithDefaults(path)
}

func openReplay(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func prune(ctx context.Context, l *link.Link, staleAfter, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.PruneStale(staleAfter)
		}
	}
}
