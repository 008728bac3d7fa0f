package main

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/yanun0323/logs"

	"tradelink/internal/errors"
	"tradelink/internal/link"
	"tradelink/internal/wire"
)

// replay publishes one record per line: a tick record, or an index record
// when the first field is an index name. Blank lines and lines starting
// with # are skipped.
func replay(ctx context.Context, r io.Reader, l *link.Link, p *paper, delay time.Duration) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if wire.IsIndex(wire.RecordSymbol(text)) {
			i, err := wire.DecodeIndexTick(text)
			if err != nil {
				logs.Errorf("replay line %d, err: %+v", line, err)
				continue
			}
			l.NewIndexTick(ctx, i)
		} else {
			t, err := wire.DecodeTick(text)
			if err != nil {
				logs.Errorf("replay line %d, err: %+v", line, err)
				continue
			}
			p.observe(t)
			l.NewTick(ctx, t)
		}

		if delay > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
		} else if ctx.Err() != nil {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "read replay")
	}
	logs.Infof("replay finished after %d lines", line)
	return nil
}
