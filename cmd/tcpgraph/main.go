package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metalgrid/tcpgraph/internal/capture"
	"github.com/metalgrid/tcpgraph/internal/config"
	"github.com/metalgrid/tcpgraph/internal/engine/pipeline"
	"github.com/metalgrid/tcpgraph/internal/export"
	"github.com/metalgrid/tcpgraph/pkg/format"
	replay "github.com/metalgrid/tcpgraph/pkg/pcap"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional).")
	iface := flag.String("iface", "", "Interface to monitor ('any' for all interfaces).")
	filter := flag.String("filter", "", "pcap filter expression.")
	interval := flag.Duration("interval", 0, "Graph update interval (e.g. 1s).")
	duration := flag.Duration("duration", 0, "Total monitoring duration; 0 runs until interrupted.")
	payloadOnly := flag.Bool("payload-only", false, "Count only payload data (excludes protocol headers).")
	smoothing := flag.Int("smoothing", 0, "Number of samples used to smooth bandwidth calculations.")
	replayFile := flag.String("r", "", "Replay a pcap file instead of capturing live.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}

	// Command-line flags override the config file.
	if *iface != "" {
		cfg.Capture.Interface = *iface
	}
	if *filter != "" {
		cfg.Capture.Filter = *filter
	}
	if *interval > 0 {
		cfg.Monitor.Interval = interval.String()
	}
	if *duration > 0 {
		cfg.Monitor.Duration = duration.String()
	}
	if *payloadOnly {
		cfg.Monitor.PayloadOnly = true
	}
	if *smoothing > 0 {
		cfg.Monitor.SmoothingWindow = *smoothing
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("Starting tcpgraph...")
	log.Printf("Interface: %s", cfg.Capture.Interface)
	log.Printf("Filter: %s", cfg.Capture.Filter)
	log.Printf("Update interval: %s", cfg.Monitor.Interval)
	if cfg.Monitor.Duration != "" {
		log.Printf("Duration: %s", cfg.Monitor.Duration)
	}

	p, err := startPipeline(cfg, *replayFile)
	if err != nil {
		if errors.Is(err, capture.ErrInterfaceNotFound) {
			printInterfaces()
		}
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	var publisher *export.Publisher
	if cfg.Export.NATS.Enabled {
		publisher, err = export.NewPublisher(cfg.Export.NATS)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer publisher.Close()
	}

	var apiServer *export.Server
	if cfg.Export.HTTP.Enabled {
		apiServer = export.NewServer(cfg.Export.HTTP, p)
		apiServer.Start()
	}

	// Stop is idempotent and non-blocking, safe from the signal path.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, cleaning up...")
		p.Stop()
	}()

	for sample := range p.Samples() {
		line := fmt.Sprintf("in: %-12s out: %-12s",
			format.BitsPerSecond(sample.InboundBps),
			format.BitsPerSecond(sample.OutboundBps))
		log.Print(line)

		if publisher != nil {
			if err := publisher.Publish(sample); err != nil {
				log.Printf("Failed to publish sample: %v", err)
			}
		}
	}
	p.Wait()

	if apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(ctx); err != nil {
			log.Printf("API server shutdown: %v", err)
		}
	}

	maxIn, maxOut := p.Maxima()
	stats := p.Stats()
	log.Printf("Session max: in %s, out %s",
		format.BitsPerSecond(maxIn), format.BitsPerSecond(maxOut))
	log.Printf("Frames seen: %d, dropped: %d, transit bytes: %d",
		stats.FramesSeen, stats.FramesDropped, stats.TransitBytes)
}

// startPipeline starts either the live capture pipeline or an offline replay.
func startPipeline(cfg *config.Config, replayFile string) (*pipeline.Pipeline, error) {
	if replayFile == "" {
		return pipeline.Start(cfg)
	}

	local, err := capture.ResolveLocalAddresses(cfg.Capture.Interface)
	if err != nil {
		return nil, err
	}
	reader, err := replay.NewReader(replayFile, cfg.Capture.Filter, cfg.Capture.QueueSize)
	if err != nil {
		return nil, err
	}
	log.Printf("Replaying capture file: %s", replayFile)
	return pipeline.StartWithSource(cfg, reader, local)
}

// printInterfaces lists the capture devices available to libpcap.
func printInterfaces() {
	devices, err := capture.ListInterfaces()
	if err != nil {
		log.Printf("Failed to list capture devices: %v", err)
		return
	}
	fmt.Fprintln(os.Stderr, "Available interfaces:")
	for _, dev := range devices {
		if dev.Description != "" {
			fmt.Fprintf(os.Stderr, "  %s (%s)\n", dev.Name, dev.Description)
		} else {
			fmt.Fprintf(os.Stderr, "  %s\n", dev.Name)
		}
	}
}
