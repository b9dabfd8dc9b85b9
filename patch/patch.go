// Package patch keeps every real MIDI input connected to every real MIDI
// output through the ALSA sequencer graph. It is a standalone reconcile loop
// with no shared state or timing requirements; the kernel-level client links
// are only reachable through the aconnect tool, which is driven here the way
// a user would drive it by hand.
package patch

import (
	"context"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Filter excludes virtual/loopback/system endpoints by name. Implemented by
// midi.Scanner so both daemons share one ignore list.
type Filter interface {
	Ignored(name string) bool
}

// link is a directed ALSA sequencer connection between two client:port ids.
type link struct {
	src, dst string
}

var (
	clientRe = regexp.MustCompile(`^client\s+(\d+):\s+'([^']+)'`)
	portRe   = regexp.MustCompile(`^\s+(\d+)\s+'([^']+)'`)
	destRe   = regexp.MustCompile(`(\d+):(\d+)`)
)

// Patcher polls the connection graph and patches every non-ignored input to
// every non-ignored output, remembering links it has already made so a
// device the user disconnected on purpose is not re-patched forever.
type Patcher struct {
	filter   Filter
	interval time.Duration
	log      *zap.Logger
	known    map[link]bool

	// aconnect runs the tool and returns its stdout. Swapped in tests.
	aconnect func(ctx context.Context, args ...string) (string, error)
}

// New creates a Patcher scanning on the given interval.
func New(filter Filter, interval time.Duration, log *zap.Logger) *Patcher {
	return &Patcher{
		filter:   filter,
		interval: interval,
		log:      log,
		known:    make(map[link]bool),
		aconnect: runAconnect,
	}
}

func runAconnect(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "aconnect", args...).Output()
	return string(out), err
}

// Run reconciles on a fixed interval until ctx is done. Per-iteration
// failures are logged and the next iteration attempted on schedule.
func (p *Patcher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.reconcile(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.reconcile(ctx)
		}
	}
}

func (p *Patcher) reconcile(ctx context.Context) {
	ins, outs, err := p.ports(ctx)
	if err != nil {
		p.log.Warn("port query failed", zap.Error(err))
		return
	}
	if len(ins) == 0 && len(outs) == 0 {
		return
	}

	current := p.connections(ctx)
	for l := range current {
		p.known[l] = true
	}

	made := 0
	for _, src := range sortedIDs(ins) {
		for _, dst := range sortedIDs(outs) {
			if src == dst {
				continue
			}
			l := link{src, dst}
			if p.known[l] || current[l] {
				continue
			}
			if p.connect(ctx, src, dst) {
				p.known[l] = true
				made++
			}
		}
	}
	if made > 0 {
		p.log.Info("patched new links",
			zap.Int("made", made),
			zap.Int("inputs", len(ins)),
			zap.Int("outputs", len(outs)),
			zap.Int("totalLinks", len(p.known)),
		)
	}
}

// ports returns the non-ignored input and output endpoints keyed by
// client:port id.
func (p *Patcher) ports(ctx context.Context) (ins, outs map[string]string, err error) {
	insTxt, err := p.aconnect(ctx, "-i")
	if err != nil {
		return nil, nil, err
	}
	outsTxt, err := p.aconnect(ctx, "-o")
	if err != nil {
		return nil, nil, err
	}

	ins = p.keep(parsePorts(insTxt))
	outs = p.keep(parsePorts(outsTxt))
	return ins, outs, nil
}

func (p *Patcher) keep(ports map[string]string) map[string]string {
	kept := make(map[string]string, len(ports))
	for id, label := range ports {
		if !p.filter.Ignored(label) {
			kept[id] = label
		}
	}
	return kept
}

// connections returns the currently established links. A query failure just
// yields an empty set; reconcile still works off its known-link memory.
func (p *Patcher) connections(ctx context.Context) map[link]bool {
	txt, err := p.aconnect(ctx, "-l")
	if err != nil {
		return map[link]bool{}
	}
	return parseConnections(txt)
}

// connect attempts one link. A non-zero exit usually means the link already
// exists or the client just vanished; both resolve themselves next scan.
func (p *Patcher) connect(ctx context.Context, src, dst string) bool {
	if _, err := p.aconnect(ctx, src, dst); err != nil {
		return false
	}
	p.log.Info("connected", zap.String("src", src), zap.String("dst", dst))
	return true
}

// parsePorts maps client:port ids to "client-name port-name" labels from
// aconnect -i / -o output.
func parsePorts(text string) map[string]string {
	ports := make(map[string]string)
	var clientID, clientName string
	for _, line := range strings.Split(text, "\n") {
		if m := clientRe.FindStringSubmatch(line); m != nil {
			clientID, clientName = m[1], m[2]
			continue
		}
		if m := portRe.FindStringSubmatch(line); m != nil && clientID != "" {
			ports[clientID+":"+m[1]] = clientName + " " + m[2]
		}
	}
	return ports
}

// parseConnections extracts established (src, dst) pairs from aconnect -l
// output.
func parseConnections(text string) map[link]bool {
	pairs := make(map[link]bool)
	var clientID, src string
	for _, line := range strings.Split(text, "\n") {
		if m := clientRe.FindStringSubmatch(line); m != nil {
			clientID = m[1]
			src = ""
			continue
		}
		if m := portRe.FindStringSubmatch(line); m != nil && clientID != "" {
			src = clientID + ":" + m[1]
			continue
		}
		if strings.Contains(line, "Connecting To:") && src != "" {
			for _, m := range destRe.FindAllStringSubmatch(line, -1) {
				pairs[link{src, m[1] + ":" + m[2]}] = true
			}
		}
	}
	return pairs
}

func sortedIDs(ports map[string]string) []string {
	ids := make([]string, 0, len(ports))
	for id := range ports {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
